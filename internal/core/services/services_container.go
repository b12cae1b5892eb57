package services

import (
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// notifier may be nil, in which case postings are not announced.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, notifier portssvc.PostingNotifier) *portssvc.ServiceContainer {
	base := BaseService{}
	container := &portssvc.ServiceContainer{}

	// The period guard is shared by the posting engine and the admin routes
	container.FiscalPeriod = NewFiscalPeriodService(repos.FiscalPeriodRepo, base)

	container.Account = NewAccountService(
		repos.AccountRepo,
		WithAccountAmountScale(cfg.AmountScale),
		WithAccountBase(base),
	)
	container.Journal = NewJournalService(
		repos.JournalRepo,
		repos.AccountRepo,
		WithJournalAmountScale(cfg.AmountScale),
		WithJournalBase(base),
	)
	container.Posting = NewPostingService(
		repos.PostingRunner,
		container.FiscalPeriod,
		WithPostingNotifier(notifier),
		WithPostingLockTimeout(cfg.PostingLockTimeout),
		WithPostingAmountScale(cfg.AmountScale),
		WithPostingBase(base),
	)
	container.Ledger = NewLedgerQueryService(
		repos.LedgerRepo,
		repos.AccountRepo,
		WithLedgerPageSize(cfg.LedgerPageSize),
		WithLedgerBase(base),
	)

	return container
}
