package services

import (
	portsrepo "github.com/openbooks/openbooks_backend/internal/core/ports/repositories"
	portssvc "github.com/openbooks/openbooks_backend/internal/core/ports/services"
	"github.com/openbooks/openbooks_backend/internal/platform/config"
)

// NewServiceContainer wires every service with its repositories and returns
// the container handed to the HTTP layer.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	accountService := NewAccountService(repos.AccountRepo)
	journalService := NewJournalService(repos.JournalRepo, repos.AccountRepo, repos.DocumentRepo)
	documentService := NewDocumentService(repos.DocumentRepo, repos.JournalRepo, repos.AccountRepo)
	reportingService := NewReportingService(repos.ReportingRepo, repos.AccountRepo, cfg.FiscalYearStartMonth)
	reconciliationService := NewReconciliationService(repos.ReportingRepo, repos.AccountRepo)

	return &portssvc.ServiceContainer{
		Account:        accountService,
		Journal:        journalService,
		Document:       documentService,
		Reporting:      reportingService,
		Reconciliation: reconciliationService,
	}
}
