package services_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	ledgerSuite
	cash  *domain.Account
	sales *domain.Account
}

func (s *JournalServiceTestSuite) SetupTest() {
	s.setupLedger()
	s.cash = s.createAccount("1000", domain.Asset, "0")
	s.sales = s.createAccount("4000", domain.Revenue, "0")
}

func (s *JournalServiceTestSuite) TestCreateDraft_Success() {
	entry := s.draft(day(2025, 2, 10), debit(s.cash.AccountID, "12.34"), credit(s.sales.AccountID, "12.34"))

	s.NotEmpty(entry.EntryID)
	s.Equal(int64(1), entry.EntryNumber)
	s.Equal(domain.Draft, entry.Status)
	s.True(entry.IsBalanced)
	s.assertDecimal("12.34", entry.TotalDebit)
	s.Require().Len(entry.Lines, 2)
	s.Equal(1, entry.Lines[0].LineNumber)
	s.Equal(2, entry.Lines[1].LineNumber)
	s.Equal(entry.EntryID, entry.Lines[0].EntryID)

	second := s.draft(day(2025, 2, 11), debit(s.cash.AccountID, "1"), credit(s.sales.AccountID, "1"))
	s.Equal(int64(2), second.EntryNumber)
}

func (s *JournalServiceTestSuite) TestCreateDraft_UnbalancedIsAllowed() {
	entry := s.draft(day(2025, 2, 10), debit(s.cash.AccountID, "10"), credit(s.sales.AccountID, "9"))

	s.Equal(domain.Draft, entry.Status)
	s.False(entry.IsBalanced)
}

func (s *JournalServiceTestSuite) TestCreateDraft_TruncatesEntryDate() {
	entry := s.draft(day(2025, 2, 10).Add(15*time.Hour), debit(s.cash.AccountID, "1"), credit(s.sales.AccountID, "1"))

	s.Equal(day(2025, 2, 10), entry.EntryDate)
}

func (s *JournalServiceTestSuite) TestCreateDraft_ValidationErrors() {
	testCases := []struct {
		name    string
		lines   []dto.JournalLineRequest
		wantErr error
	}{
		{
			name:    "single line",
			lines:   []dto.JournalLineRequest{debit(s.cash.AccountID, "1")},
			wantErr: apperrors.ErrInvalidLines,
		},
		{
			name: "both sides on one line",
			lines: []dto.JournalLineRequest{
				{AccountID: s.cash.AccountID, DebitAmount: decimal.NewFromInt(1), CreditAmount: decimal.NewFromInt(1)},
				credit(s.sales.AccountID, "1"),
			},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "zero amount",
			lines:   []dto.JournalLineRequest{debit(s.cash.AccountID, "0"), credit(s.sales.AccountID, "1")},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name:    "too many decimals",
			lines:   []dto.JournalLineRequest{debit(s.cash.AccountID, "1.001"), credit(s.sales.AccountID, "1.001")},
			wantErr: apperrors.ErrInvalidAmount,
		},
		{
			name: "gap in line numbers",
			lines: []dto.JournalLineRequest{
				{LineNumber: 1, AccountID: s.cash.AccountID, DebitAmount: decimal.NewFromInt(1)},
				{LineNumber: 3, AccountID: s.sales.AccountID, CreditAmount: decimal.NewFromInt(1)},
			},
			wantErr: apperrors.ErrInvalidLines,
		},
		{
			name:    "unknown account",
			lines:   []dto.JournalLineRequest{debit("nope", "1"), credit(s.sales.AccountID, "1")},
			wantErr: apperrors.ErrAccountNotFound,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			entry, err := s.journal.CreateDraft(s.ctx, s.tenantID, dto.CreateJournalEntryRequest{
				EntryDate: day(2025, 2, 10),
				Lines:     tc.lines,
			}, s.userID)

			s.Nil(entry)
			s.ErrorIs(err, tc.wantErr)
		})
	}
}

func (s *JournalServiceTestSuite) TestCreateDraft_InactiveAccount() {
	idle := s.createAccount("1999", domain.Asset, "0")
	s.Require().NoError(s.accounts.DeactivateAccount(s.ctx, s.tenantID, idle.AccountID, s.userID))

	_, err := s.journal.CreateDraft(s.ctx, s.tenantID, dto.CreateJournalEntryRequest{
		EntryDate: day(2025, 2, 10),
		Lines:     []dto.JournalLineRequest{debit(idle.AccountID, "1"), credit(s.sales.AccountID, "1")},
	}, s.userID)

	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (s *JournalServiceTestSuite) TestCreateDraft_AccountOfOtherTenant() {
	_, err := s.journal.CreateDraft(s.ctx, "other-tenant", dto.CreateJournalEntryRequest{
		EntryDate: day(2025, 2, 10),
		Lines:     []dto.JournalLineRequest{debit(s.cash.AccountID, "1"), credit(s.sales.AccountID, "1")},
	}, s.userID)

	s.ErrorIs(err, apperrors.ErrAccountNotFound)
}

func (s *JournalServiceTestSuite) TestUpdateDraft_ReplacesLines() {
	entry := s.draft(day(2025, 2, 10), debit(s.cash.AccountID, "10"), credit(s.sales.AccountID, "9"))

	updated, err := s.journal.UpdateDraft(s.ctx, s.tenantID, entry.EntryID, dto.UpdateJournalEntryRequest{
		Description: ptr("fixed"),
		Lines:       []dto.JournalLineRequest{debit(s.cash.AccountID, "10"), credit(s.sales.AccountID, "10")},
	}, s.userID)

	s.Require().NoError(err)
	s.True(updated.IsBalanced)
	s.Equal("fixed", updated.Description)

	stored, err := s.journal.GetEntry(s.ctx, s.tenantID, entry.EntryID)
	s.Require().NoError(err)
	s.True(stored.IsBalanced)
	s.assertDecimal("10", stored.TotalCredit)
	s.Equal(entry.EntryNumber, stored.EntryNumber)
}

func (s *JournalServiceTestSuite) TestSubmitForReview() {
	unbalanced := s.draft(day(2025, 2, 10), debit(s.cash.AccountID, "10"), credit(s.sales.AccountID, "9"))
	_, err := s.journal.SubmitForReview(s.ctx, s.tenantID, unbalanced.EntryID, s.userID)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)

	entry := s.draft(day(2025, 2, 10), debit(s.cash.AccountID, "10"), credit(s.sales.AccountID, "10"))
	pending, err := s.journal.SubmitForReview(s.ctx, s.tenantID, entry.EntryID, s.userID)
	s.Require().NoError(err)
	s.Equal(domain.Pending, pending.Status)

	_, err = s.journal.SubmitForReview(s.ctx, s.tenantID, entry.EntryID, s.userID)
	s.ErrorIs(err, apperrors.ErrEntryNotEditable)

	// Editing a submitted entry sends it back to draft
	edited, err := s.journal.UpdateDraft(s.ctx, s.tenantID, entry.EntryID, dto.UpdateJournalEntryRequest{ReferenceNumber: ptr("INV-7")}, s.userID)
	s.Require().NoError(err)
	s.Equal(domain.Draft, edited.Status)
}

func (s *JournalServiceTestSuite) TestPendingEntryCanBePosted() {
	s.expectNotifications()
	entry := s.draft(day(2025, 2, 10), debit(s.cash.AccountID, "10"), credit(s.sales.AccountID, "10"))
	_, err := s.journal.SubmitForReview(s.ctx, s.tenantID, entry.EntryID, s.userID)
	s.Require().NoError(err)

	posted, err := s.posting.Post(s.ctx, s.tenantID, entry.EntryID, s.userID)

	s.Require().NoError(err)
	s.Equal(domain.Posted, posted.Status)
}

func (s *JournalServiceTestSuite) TestDeleteDraft() {
	entry := s.draft(day(2025, 2, 10), debit(s.cash.AccountID, "10"), credit(s.sales.AccountID, "10"))

	s.Require().NoError(s.journal.DeleteDraft(s.ctx, s.tenantID, entry.EntryID, s.userID))

	_, err := s.journal.GetEntry(s.ctx, s.tenantID, entry.EntryID)
	s.ErrorIs(err, apperrors.ErrEntryNotFound)
	err = s.journal.DeleteDraft(s.ctx, s.tenantID, entry.EntryID, s.userID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestGetEntry_OtherTenant() {
	entry := s.draft(day(2025, 2, 10), debit(s.cash.AccountID, "10"), credit(s.sales.AccountID, "10"))

	_, err := s.journal.GetEntry(s.ctx, "other-tenant", entry.EntryID)

	s.ErrorIs(err, apperrors.ErrEntryNotFound)
}

func TestJournalService(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
