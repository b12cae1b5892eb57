package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	GetEntry(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error)
}

// JournalWriterSvc defines the draft lifecycle of journal entries
type JournalWriterSvc interface {
	// CreateDraft validates and stores a new DRAFT entry. Unbalanced drafts are allowed.
	CreateDraft(ctx context.Context, tenantID string, req dto.CreateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// UpdateDraft edits a DRAFT or PENDING entry. A PENDING entry goes back to DRAFT.
	UpdateDraft(ctx context.Context, tenantID string, entryID string, req dto.UpdateJournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// DeleteDraft removes a DRAFT or PENDING entry.
	DeleteDraft(ctx context.Context, tenantID string, entryID string, userID string) error

	// SubmitForReview moves a balanced DRAFT entry to PENDING.
	SubmitForReview(ctx context.Context, tenantID string, entryID string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}
