package accounting

import (
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DefaultScale is the number of fractional digits allowed on amounts unless configured otherwise.
const DefaultScale int32 = 2

// CalculateSignedAmount returns the change a line applies to an account balance kept on the normal side.
//
// DEBIT to a DEBIT-normal account  -> +amount
// CREDIT to a DEBIT-normal account -> -amount
// and the reverse for CREDIT-normal accounts.
func CalculateSignedAmount(line domain.JournalLine, normal domain.BalanceSide) (decimal.Decimal, error) {
	delta := line.DebitAmount.Sub(line.CreditAmount)
	switch normal {
	case domain.Debit:
		return delta, nil
	case domain.Credit:
		return delta.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown normal balance '%s' for account ID %s", normal, line.AccountID)
	}
}

// ToDebitPositive projects a normal-side balance onto the debit-positive axis.
func ToDebitPositive(balance decimal.Decimal, normal domain.BalanceSide) decimal.Decimal {
	if normal == domain.Credit {
		return balance.Neg()
	}
	return balance
}

// CheckScale fails when amount carries more fractional digits than scale allows.
func CheckScale(amount decimal.Decimal, scale int32) error {
	if !amount.Equal(amount.Truncate(scale)) {
		return fmt.Errorf("%w: %s has more than %d fractional digits", apperrors.ErrInvalidAmount, amount.String(), scale)
	}
	return nil
}

// NormalizeLineNumbers assigns 1..n in slice order when no line carries a number.
func NormalizeLineNumbers(lines []domain.JournalLine) {
	for _, l := range lines {
		if l.LineNumber != 0 {
			return
		}
	}
	for i := range lines {
		lines[i].LineNumber = i + 1
	}
}

// ValidateLines checks the structural rules every journal entry must satisfy, balanced or not.
func ValidateLines(lines []domain.JournalLine, scale int32) error {
	if len(lines) < 2 {
		return fmt.Errorf("%w: an entry needs at least two lines, got %d", apperrors.ErrInvalidLines, len(lines))
	}

	seen := make(map[int]bool, len(lines))
	for _, l := range lines {
		if l.AccountID == "" {
			return fmt.Errorf("%w: line %d has no account", apperrors.ErrInvalidLines, l.LineNumber)
		}
		if l.DebitAmount.IsNegative() || l.CreditAmount.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrInvalidAmount, l.LineNumber)
		}
		if l.DebitAmount.IsPositive() == l.CreditAmount.IsPositive() {
			return fmt.Errorf("%w: line %d must have exactly one of debit or credit set", apperrors.ErrInvalidAmount, l.LineNumber)
		}
		if err := CheckScale(l.Amount(), scale); err != nil {
			return fmt.Errorf("line %d: %w", l.LineNumber, err)
		}
		if l.LineNumber < 1 || l.LineNumber > len(lines) || seen[l.LineNumber] {
			return fmt.Errorf("%w: line numbers must be unique and contiguous from 1, got %d", apperrors.ErrInvalidLines, l.LineNumber)
		}
		seen[l.LineNumber] = true
	}
	return nil
}

// ValidateEntryBalance recomputes the entry totals and fails if debits and credits differ.
func ValidateEntryBalance(entry *domain.JournalEntry) error {
	entry.RecomputeTotals()
	if !entry.IsBalanced {
		return fmt.Errorf("%w: debit %s != credit %s", apperrors.ErrUnbalancedEntry, entry.TotalDebit.String(), entry.TotalCredit.String())
	}
	return nil
}
