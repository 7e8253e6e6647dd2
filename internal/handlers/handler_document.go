package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openbooks/openbooks_backend/internal/apperrors"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
	"github.com/openbooks/openbooks_backend/internal/core/services"
	"github.com/openbooks/openbooks_backend/internal/dto"
	"github.com/openbooks/openbooks_backend/internal/middleware"
)

// documentHandler handles HTTP requests related to business documents.
type documentHandler struct {
	documentService portssvc.DocumentSvcFacade
}

// newDocumentHandler creates a new documentHandler.
func newDocumentHandler(ds portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{
		documentService: ds,
	}
}

// registerDocumentRoutes registers routes related to documents.
func registerDocumentRoutes(rg *gin.RouterGroup, documentService portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(documentService)

	documents := rg.Group("/documents")
	{
		documents.POST("", h.createDocument)
		documents.GET("", h.listDocuments)
		documents.GET("/:id", h.getDocument)
		documents.PUT("/:id", h.updateDocument)
		documents.DELETE("/:id", h.deleteDocument)
		documents.POST("/:id/approve", h.approveDocument)
		documents.POST("/:id/unpost", h.unpostDocument)
	}
}

// mapDocumentError translates document service errors to an HTTP status.
func mapDocumentError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDocumentShape),
		errors.Is(err, services.ErrAmountMismatch),
		errors.Is(err, services.ErrSameAccountTransfer),
		errors.Is(err, services.ErrNotLeaf),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrUnbalancedEntry):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDocumentNotDraft),
		errors.Is(err, services.ErrDocumentNotPosted),
		errors.Is(err, services.ErrUnresolvedAccount),
		errors.Is(err, services.ErrAccountLocked),
		errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// createDocument godoc
// @Summary Create a business document
// @Description Creates a new draft document (invoice, receipt, payment or transfer)
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   document body dto.CreateDocumentRequest true "Document details"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input format or document shape"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create document"
// @Security BearerAuth
// @Router /documents [post]
func (h *documentHandler) createDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), req, userID)
	if err != nil {
		status := mapDocumentError(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to create document in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to create document"})
		} else {
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Document created successfully", slog.String("document_id", doc.DocumentID), slog.String("document_number", doc.DocumentNumber))
	c.JSON(http.StatusCreated, dto.ToDocumentResponse(doc))
}

// getDocument godoc
// @Summary Get a document by ID
// @Description Retrieves a document with its lines
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 500 {object} map[string]string "Failed to retrieve document"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *documentHandler) getDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	documentID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), documentID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		} else {
			logger.Error("Failed to get document from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve document"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// listDocuments godoc
// @Summary List documents
// @Description Retrieves a paginated list of documents, newest first, optionally filtered by type
// @Tags documents
// @Produce  json
// @Param   documentType query string false "Filter by type" Enums(SALES_INVOICE, PURCHASE_INVOICE, RECEIPT, PAYMENT, TRANSFER)
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Opaque pagination token from the previous page"
// @Success 200 {object} dto.ListDocumentsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list documents"
// @Security BearerAuth
// @Router /documents [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListDocumentsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListDocuments", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	resp, err := h.documentService.ListDocuments(c.Request.Context(), userID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list documents from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateDocument godoc
// @Summary Update a draft document
// @Description Updates a draft document's header, optionally replacing its lines
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   document body dto.UpdateDocumentRequest true "Fields to update"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Invalid input format or document shape"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document is not in draft"
// @Failure 500 {object} map[string]string "Failed to update document"
// @Security BearerAuth
// @Router /documents/{id} [put]
func (h *documentHandler) updateDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	documentID := c.Param("id")

	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDocument", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.UpdateDocument(c.Request.Context(), documentID, req, userID)
	if err != nil {
		status := mapDocumentError(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to update document in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to update document"})
		} else {
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// deleteDocument godoc
// @Summary Delete a draft document
// @Description Deletes a draft document, its lines and any stale draft entry it owns
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 204 "Document deleted"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document is posted"
// @Failure 500 {object} map[string]string "Failed to delete document"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *documentHandler) deleteDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	documentID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.documentService.DeleteDocument(c.Request.Context(), documentID, userID)
	if err != nil {
		status := mapDocumentError(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to delete document in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to delete document"})
		} else {
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// approveDocument godoc
// @Summary Approve a document
// @Description Derives the balanced journal entry for a draft document and posts it atomically
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 400 {object} map[string]string "Document shape invalid"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document not in draft, posting role unconfigured or account locked"
// @Failure 500 {object} map[string]string "Failed to approve document"
// @Security BearerAuth
// @Router /documents/{id}/approve [post]
func (h *documentHandler) approveDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	documentID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.ApproveDocument(c.Request.Context(), documentID, userID)
	if err != nil {
		status := mapDocumentError(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to approve document in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to approve document"})
		} else {
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Document approved successfully", slog.String("document_id", documentID))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}

// unpostDocument godoc
// @Summary Unpost a document
// @Description Reverts a posted document and its derived entry to draft
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Document not found"
// @Failure 409 {object} map[string]string "Document is not posted"
// @Failure 500 {object} map[string]string "Failed to unpost document"
// @Security BearerAuth
// @Router /documents/{id}/unpost [post]
func (h *documentHandler) unpostDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	documentID := c.Param("id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	doc, err := h.documentService.UnpostDocument(c.Request.Context(), documentID, userID)
	if err != nil {
		status := mapDocumentError(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to unpost document in service", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": "Failed to unpost document"})
		} else {
			c.JSON(status, gin.H{"error": err.Error()})
		}
		return
	}

	logger.Info("Document unposted successfully", slog.String("document_id", documentID))
	c.JSON(http.StatusOK, dto.ToDocumentResponse(doc))
}
