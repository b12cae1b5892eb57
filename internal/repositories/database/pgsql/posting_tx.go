package pgsql

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxPostingRunner runs postings in READ COMMITTED transactions guarded by row locks.
type PgxPostingRunner struct {
	BaseRepository
}

func newPgxPostingRunner(pool *pgxpool.Pool) *PgxPostingRunner {
	return &PgxPostingRunner{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PostingTxRunner = (*PgxPostingRunner)(nil)

// pgxPostingTx is the PostingTx view over one pgx transaction.
type pgxPostingTx struct {
	tx pgx.Tx
}

var _ portsrepo.PostingTx = (*pgxPostingTx)(nil)

// WithinPostingTx bounds every lock wait of the transaction with SET LOCAL lock_timeout.
func (r *PgxPostingRunner) WithinPostingTx(ctx context.Context, lockTimeout time.Duration, fn func(ctx context.Context, tx portsrepo.PostingTx) error) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if lockTimeout > 0 {
			ms := fmt.Sprintf("%dms", lockTimeout.Milliseconds())
			if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true);`, ms); err != nil {
				return mapPgError(err, "failed to set lock timeout")
			}
		}
		return fn(ctx, &pgxPostingTx{tx: tx})
	})
}

func (t *pgxPostingTx) FindPeriodsCovering(ctx context.Context, tenantID string, date time.Time) ([]domain.FiscalPeriod, error) {
	return findPeriodsCovering(ctx, t.tx, tenantID, date, "FOR SHARE")
}

func (t *pgxPostingTx) LockEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	return loadEntry(ctx, t.tx, entryID, tenantID, "FOR UPDATE")
}

// LockAccounts locks rows in ascending ID order so concurrent postings cannot deadlock.
func (t *pgxPostingTx) LockAccounts(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	ids := slices.Clone(accountIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)
	if len(ids) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts
		WHERE tenant_id = $1 AND account_id = ANY($2)
		ORDER BY account_id COLLATE "C"
		FOR UPDATE;`
	return queryAccountMap(ctx, t.tx, query, tenantID, ids)
}

func (t *pgxPostingTx) NextEntryNumber(ctx context.Context, tenantID string) (int64, error) {
	return nextEntryNumber(ctx, t.tx, tenantID)
}

func (t *pgxPostingTx) InsertEntry(ctx context.Context, entry domain.JournalEntry) error {
	return insertEntry(ctx, t.tx, entry)
}

func (t *pgxPostingTx) AppendLedgerRows(ctx context.Context, rows []domain.LedgerRow) error {
	if len(rows) == 0 {
		return nil
	}
	query := `INSERT INTO ledger_rows (tenant_id, entry_id, entry_number, line_id, line_number, account_id, entry_date,
		debit_amount, credit_amount, running_balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`
	batch := &pgx.Batch{}
	for _, row := range rows {
		m := mapping.ToModelLedgerRow(row)
		batch.Queue(query, m.TenantID, m.EntryID, m.EntryNumber, m.LineID, m.LineNumber, m.AccountID, m.EntryDate,
			m.DebitAmount, m.CreditAmount, m.RunningBalanceAfter, m.CreatedAt)
	}
	return execBatch(ctx, t.tx, batch, "failed to append ledger row")
}

func (t *pgxPostingTx) UpdateAccountBalances(ctx context.Context, balances map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balances) == 0 {
		return nil
	}
	ids := make([]string, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	query := `UPDATE accounts SET current_balance = $2, last_updated_at = $3, last_updated_by = $4 WHERE account_id = $1;`
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(query, id, balances[id], now, userID)
	}

	br := t.tx.SendBatch(ctx, batch)
	var batchErr error
	for _, id := range ids {
		ct, err := br.Exec()
		switch {
		case err != nil && batchErr == nil:
			batchErr = mapPgError(err, "failed to update balance of account "+id)
		case err == nil && ct.RowsAffected() == 0 && batchErr == nil:
			batchErr = fmt.Errorf("%w: account %s vanished during balance update", apperrors.ErrInternal, id)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = mapPgError(err, "failed to close balance update batch")
	}
	return batchErr
}

func (t *pgxPostingTx) MarkEntryPosted(ctx context.Context, entry domain.JournalEntry) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = $2, total_debit = $3, total_credit = $4, posted_at = $5, posted_by = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE entry_id = $1;`,
		entry.EntryID, string(domain.Posted), entry.TotalDebit, entry.TotalCredit, entry.PostedAt, entry.PostedBy,
		entry.LastUpdatedAt, entry.LastUpdatedBy)
	if err != nil {
		return mapPgError(err, "failed to mark entry "+entry.EntryID+" posted")
	}
	return nil
}

func (t *pgxPostingTx) MarkEntryReversed(ctx context.Context, entryID, reversedByEntryID, reason, userID string, now time.Time) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = $2, reversed_by_entry_id = $3, reversal_reason = $4, last_updated_at = $5, last_updated_by = $6
		WHERE entry_id = $1;`,
		entryID, string(domain.Reversed), reversedByEntryID, reason, now, userID)
	if err != nil {
		return mapPgError(err, "failed to mark entry "+entryID+" reversed")
	}
	return nil
}
