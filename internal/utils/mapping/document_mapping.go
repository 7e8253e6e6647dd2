package mapping

import (
	"github.com/openbooks/openbooks_backend/internal/core/domain"
	"github.com/openbooks/openbooks_backend/internal/models"
)

// ToModelDocument converts a domain.Document header for DB storage.
func ToModelDocument(d domain.Document) models.Document {
	return models.Document{
		DocumentID:     d.DocumentID,
		DocumentNumber: d.DocumentNumber,
		DocumentType:   models.DocumentType(d.DocumentType),
		DocumentDate:   d.DocumentDate,
		Counterparty:   d.Counterparty,
		Description:    d.Description,
		Status:         models.DocumentStatus(d.Status),
		Total:          d.Total,
		TaxTotal:       d.TaxTotal,
		BankAccountID:  d.BankAccountID,
		FromAccountID:  d.FromAccountID,
		ToAccountID:    d.ToAccountID,
		EntryID:        d.EntryID,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDocument converts a stored document header to its domain form.
func ToDomainDocument(m models.Document) domain.Document {
	return domain.Document{
		DocumentID:     m.DocumentID,
		DocumentNumber: m.DocumentNumber,
		DocumentType:   domain.DocumentType(m.DocumentType),
		DocumentDate:   m.DocumentDate,
		Counterparty:   m.Counterparty,
		Description:    m.Description,
		Status:         domain.DocumentStatus(m.Status),
		Total:          m.Total,
		TaxTotal:       m.TaxTotal,
		BankAccountID:  m.BankAccountID,
		FromAccountID:  m.FromAccountID,
		ToAccountID:    m.ToAccountID,
		EntryID:        m.EntryID,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelDocumentLine converts a domain.DocumentLine for DB storage.
func ToModelDocumentLine(d domain.DocumentLine) models.DocumentLine {
	return models.DocumentLine{
		LineID:      d.LineID,
		DocumentID:  d.DocumentID,
		AccountID:   d.AccountID,
		Description: d.Description,
		Amount:      d.Amount,
		Discount:    d.Discount,
	}
}

// ToDomainDocumentLine converts a stored document line to its domain form.
func ToDomainDocumentLine(m models.DocumentLine) domain.DocumentLine {
	return domain.DocumentLine{
		LineID:      m.LineID,
		DocumentID:  m.DocumentID,
		AccountID:   m.AccountID,
		Description: m.Description,
		Amount:      m.Amount,
		Discount:    m.Discount,
	}
}

// ToDomainDocumentLineSlice converts a slice of stored document lines.
func ToDomainDocumentLineSlice(ms []models.DocumentLine) []domain.DocumentLine {
	ds := make([]domain.DocumentLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDocumentLine(m)
	}
	return ds
}
