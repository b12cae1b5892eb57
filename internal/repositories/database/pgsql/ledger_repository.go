package pgsql

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const ledgerRowColumns = `row_id, tenant_id, entry_id, entry_number, line_id, line_number, account_id, entry_date,
	debit_amount, credit_amount, running_balance_after, created_at`

// PgxLedgerRepository reads committed ledger rows outside any posting transaction.
type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerReader = (*PgxLedgerRepository)(nil)

// ListLedgerRows pages through an account's rows. entry_id is compared byte-wise so
// the order matches the cursor comparison done in Go.
func (r *PgxLedgerRepository) ListLedgerRows(ctx context.Context, tenantID, accountID string, rng domain.DateRange, after *domain.LedgerCursor, limit int) ([]domain.LedgerRow, error) {
	var (
		afterDate  *time.Time
		afterEntry string
		afterLine  int
	)
	if after != nil {
		d := domain.DateOnly(after.EntryDate)
		afterDate, afterEntry, afterLine = &d, after.EntryID, after.LineNumber
	}
	var limitArg *int
	if limit > 0 {
		limitArg = &limit
	}

	query := `SELECT ` + ledgerRowColumns + ` FROM ledger_rows
		WHERE tenant_id = $1 AND account_id = $2
			AND ($3::date IS NULL OR entry_date >= $3::date)
			AND ($4::date IS NULL OR entry_date <= $4::date)
			AND ($5::date IS NULL OR (entry_date, entry_id COLLATE "C", line_number) > ($5::date, $6::text COLLATE "C", $7::int))
		ORDER BY entry_date, entry_id COLLATE "C", line_number
		LIMIT $8;`

	rows, err := r.Pool.Query(ctx, query, tenantID, accountID, dateParam(rng.From), dateParam(rng.To), afterDate, afterEntry, afterLine, limitArg)
	if err != nil {
		return nil, mapPgError(err, "failed to query ledger rows of account "+accountID)
	}
	defer rows.Close()

	result := []domain.LedgerRow{}
	for rows.Next() {
		row, err := scanLedgerRow(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan ledger row")
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating ledger rows")
	}
	return result, nil
}

func scanLedgerRow(row pgx.Row) (domain.LedgerRow, error) {
	var m models.LedgerRow
	err := row.Scan(
		&m.RowID,
		&m.TenantID,
		&m.EntryID,
		&m.EntryNumber,
		&m.LineID,
		&m.LineNumber,
		&m.AccountID,
		&m.EntryDate,
		&m.DebitAmount,
		&m.CreditAmount,
		&m.RunningBalanceAfter,
		&m.CreatedAt,
	)
	if err != nil {
		return domain.LedgerRow{}, err
	}
	return mapping.ToDomainLedgerRow(m), nil
}

// SumLedgerByAccount sums debit and credit per account for rows dated on or before asOf.
func (r *PgxLedgerRepository) SumLedgerByAccount(ctx context.Context, tenantID string, asOf *time.Time) (map[string]domain.AccountActivity, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT account_id, COALESCE(SUM(debit_amount), 0), COALESCE(SUM(credit_amount), 0), COUNT(*)
		FROM ledger_rows
		WHERE tenant_id = $1 AND ($2::date IS NULL OR entry_date <= $2::date)
		GROUP BY account_id;`, tenantID, dateParam(asOf))
	if err != nil {
		return nil, mapPgError(err, "failed to sum ledger rows")
	}
	defer rows.Close()

	sums := make(map[string]domain.AccountActivity)
	for rows.Next() {
		var act domain.AccountActivity
		if err := rows.Scan(&act.AccountID, &act.TotalDebit, &act.TotalCredit, &act.RowCount); err != nil {
			return nil, mapPgError(err, "failed to scan ledger sum")
		}
		sums[act.AccountID] = act
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating ledger sums")
	}
	return sums, nil
}

// dateParam truncates an optional bound to its calendar day.
func dateParam(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := domain.DateOnly(*t)
	return &d
}
