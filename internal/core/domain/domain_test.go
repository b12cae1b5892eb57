package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAccountType_NormalBalance(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        domain.BalanceSide
	}{
		{domain.Asset, domain.Debit},
		{domain.Expense, domain.Debit},
		{domain.Liability, domain.Credit},
		{domain.Equity, domain.Credit},
		{domain.Revenue, domain.Credit},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.True(t, tt.accountType.IsValid())
			assert.Equal(t, tt.want, tt.accountType.NormalBalance())
		})
	}
	assert.False(t, domain.AccountType("INCOME").IsValid())
}

func TestJournalEntry_RecomputeTotals(t *testing.T) {
	entry := domain.JournalEntry{Lines: []domain.JournalLine{
		{LineNumber: 2, AccountID: "b", CreditAmount: decimal.RequireFromString("400.00")},
		{LineNumber: 1, AccountID: "a", DebitAmount: decimal.RequireFromString("500.00")},
	}}

	entry.RecomputeTotals()
	assert.True(t, entry.TotalDebit.Equal(decimal.RequireFromString("500")))
	assert.True(t, entry.TotalCredit.Equal(decimal.RequireFromString("400")))
	assert.False(t, entry.IsBalanced)

	entry.Lines[0].CreditAmount = decimal.RequireFromString("500.00")
	entry.RecomputeTotals()
	assert.True(t, entry.IsBalanced)

	lines := entry.SortedLines()
	assert.Equal(t, 1, lines[0].LineNumber)
	assert.Equal(t, 2, entry.Lines[0].LineNumber, "sorting must not reorder the entry itself")
}

func TestJournalEntry_AccountIDs(t *testing.T) {
	entry := domain.JournalEntry{Lines: []domain.JournalLine{
		{AccountID: "c"}, {AccountID: "a"}, {AccountID: "c"}, {AccountID: "b"},
	}}
	assert.Equal(t, []string{"a", "b", "c"}, entry.AccountIDs())
}

func TestJournalStatus_IsEditable(t *testing.T) {
	assert.True(t, domain.Draft.IsEditable())
	assert.True(t, domain.Pending.IsEditable())
	assert.False(t, domain.Posted.IsEditable())
	assert.False(t, domain.Reversed.IsEditable())
}

func TestFiscalPeriod_ContainsAndOverlaps(t *testing.T) {
	jan := domain.FiscalPeriod{StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 31)}
	feb := domain.FiscalPeriod{StartDate: date(2026, 2, 1), EndDate: date(2026, 2, 28)}
	midJan := domain.FiscalPeriod{StartDate: date(2026, 1, 15), EndDate: date(2026, 2, 15)}

	assert.True(t, jan.Contains(date(2026, 1, 1)))
	assert.True(t, jan.Contains(time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, jan.Contains(date(2026, 2, 1)))

	assert.False(t, jan.Overlaps(feb))
	assert.True(t, jan.Overlaps(midJan))
	assert.True(t, feb.Overlaps(midJan))
}

func TestLedgerCursor_After(t *testing.T) {
	cursor := domain.LedgerCursor{EntryDate: date(2026, 3, 1), EntryID: "e2", LineNumber: 2}

	assert.True(t, cursor.After(domain.LedgerRow{EntryDate: date(2026, 3, 2), EntryID: "e1", LineNumber: 1}))
	assert.True(t, cursor.After(domain.LedgerRow{EntryDate: date(2026, 3, 1), EntryID: "e3", LineNumber: 1}))
	assert.True(t, cursor.After(domain.LedgerRow{EntryDate: date(2026, 3, 1), EntryID: "e2", LineNumber: 3}))
	assert.False(t, cursor.After(domain.LedgerRow{EntryDate: date(2026, 3, 1), EntryID: "e2", LineNumber: 2}))
	assert.False(t, cursor.After(domain.LedgerRow{EntryDate: date(2026, 2, 28), EntryID: "e9", LineNumber: 9}))
}

func TestDateRange_Contains(t *testing.T) {
	from, to := date(2026, 1, 10), date(2026, 1, 20)
	assert.True(t, domain.DateRange{}.Contains(date(1999, 1, 1)))
	assert.True(t, domain.DateRange{From: &from, To: &to}.Contains(date(2026, 1, 20)))
	assert.False(t, domain.DateRange{From: &from}.Contains(date(2026, 1, 9)))
	assert.False(t, domain.DateRange{To: &to}.Contains(date(2026, 1, 21)))
}
