package pgsql

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const entryColumns = `entry_id, tenant_id, entry_number, entry_date, description, reference_number, status,
	total_debit, total_credit, original_entry_id, reversed_by_entry_id, reversal_reason, posted_at, posted_by,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_number, account_id, debit_amount, credit_amount, cost_center_id, description`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepositoryFacade
var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntryHeader(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TenantID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Description,
		&m.ReferenceNumber,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.OriginalEntryID,
		&m.ReversedByEntryID,
		&m.ReversalReason,
		&m.PostedAt,
		&m.PostedBy,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func loadLines(ctx context.Context, q querier, entryID string) ([]models.JournalLine, error) {
	rows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = $1 ORDER BY line_number;`, entryID)
	if err != nil {
		return nil, mapPgError(err, "failed to query lines of entry "+entryID)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		var l models.JournalLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.LineNumber, &l.AccountID, &l.DebitAmount, &l.CreditAmount, &l.CostCenterID, &l.Description); err != nil {
			return nil, mapPgError(err, "failed to scan journal line")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating journal lines")
	}
	return lines, nil
}

// loadEntry reads an entry with its lines. A non-empty lockClause is appended to the header query.
func loadEntry(ctx context.Context, q querier, entryID, tenantID, lockClause string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1 AND ($2::text = '' OR tenant_id = $2::text) ` + lockClause + `;`
	header, err := scanEntryHeader(q.QueryRow(ctx, query, entryID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		return nil, mapPgError(err, "failed to find entry "+entryID)
	}
	lines, err := loadLines(ctx, q, entryID)
	if err != nil {
		return nil, err
	}
	entry := mapping.ToDomainJournalEntry(header, lines)
	return &entry, nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m := mapping.ToModelJournalEntry(entry)
	_, err := tx.Exec(ctx, `INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`,
		m.EntryID,
		m.TenantID,
		m.EntryNumber,
		m.EntryDate,
		m.Description,
		m.ReferenceNumber,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.OriginalEntryID,
		m.ReversedByEntryID,
		m.ReversalReason,
		m.PostedAt,
		m.PostedBy,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if constraintOf(err) == "journal_entries_pkey" {
			return fmt.Errorf("%w: entry ID %s", apperrors.ErrDuplicate, m.EntryID)
		}
		return mapPgError(err, "failed to insert entry "+m.EntryID)
	}
	return insertLines(ctx, tx, entry.Lines)
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `INSERT INTO journal_lines (` + lineColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	batch := &pgx.Batch{}
	for _, l := range lines {
		m := mapping.ToModelJournalLine(l)
		batch.Queue(query, m.LineID, m.EntryID, m.LineNumber, m.AccountID, m.DebitAmount, m.CreditAmount, m.CostCenterID, m.Description)
	}
	return execBatch(ctx, tx, batch, "failed to insert journal line")
}

// execBatch sends batch and reports the first failing statement.
func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch, op string) error {
	br := tx.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = mapPgError(err, fmt.Sprintf("%s (statement %d)", op, i+1))
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = mapPgError(err, op)
	}
	return batchErr
}

// nextEntryNumber bumps the tenant's sequence row, holding its lock until the transaction ends.
func nextEntryNumber(ctx context.Context, tx pgx.Tx, tenantID string) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		INSERT INTO entry_number_sequences (tenant_id, last_number) VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_number = entry_number_sequences.last_number + 1
		RETURNING last_number;`, tenantID).Scan(&n)
	if err != nil {
		return 0, mapPgError(err, "failed to allocate entry number")
	}
	return n, nil
}

// FindEntryByID retrieves an entry with its lines ordered by line number.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	return loadEntry(ctx, r.Pool, entryID, "", "")
}

// SaveDraft allocates the next entry number and persists the entry with its lines.
func (r *PgxJournalRepository) SaveDraft(ctx context.Context, entry *domain.JournalEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		n, err := nextEntryNumber(ctx, tx, entry.TenantID)
		if err != nil {
			return err
		}
		toSave := *entry
		toSave.EntryNumber = n
		if err := insertEntry(ctx, tx, toSave); err != nil {
			return err
		}
		entry.EntryNumber = n
		return nil
	})
}

// lockEditable locks an entry row and checks it may still be changed.
func lockEditable(ctx context.Context, tx pgx.Tx, entryID string) error {
	var status models.JournalStatus
	err := tx.QueryRow(ctx, `SELECT status FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`, entryID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		return mapPgError(err, "failed to lock entry "+entryID)
	}
	if !domain.JournalStatus(status).IsEditable() {
		return fmt.Errorf("%w: status is %s", apperrors.ErrEntryNotEditable, status)
	}
	return nil
}

// UpdateDraft replaces the header fields and lines of an editable entry.
func (r *PgxJournalRepository) UpdateDraft(ctx context.Context, entry domain.JournalEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, entry.EntryID); err != nil {
			return err
		}
		m := mapping.ToModelJournalEntry(entry)
		_, err := tx.Exec(ctx, `
			UPDATE journal_entries
			SET entry_date = $2, description = $3, reference_number = $4, status = $5,
				total_debit = $6, total_credit = $7, last_updated_at = $8, last_updated_by = $9
			WHERE entry_id = $1;`,
			m.EntryID, m.EntryDate, m.Description, m.ReferenceNumber, m.Status,
			m.TotalDebit, m.TotalCredit, m.LastUpdatedAt, m.LastUpdatedBy)
		if err != nil {
			return mapPgError(err, "failed to update entry "+m.EntryID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entry.EntryID); err != nil {
			return mapPgError(err, "failed to delete lines of entry "+entry.EntryID)
		}
		return insertLines(ctx, tx, entry.Lines)
	})
}

// DeleteDraft removes an editable entry; its lines go with it.
func (r *PgxJournalRepository) DeleteDraft(ctx context.Context, entryID string) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, entryID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID); err != nil {
			return mapPgError(err, "failed to delete entry "+entryID)
		}
		return nil
	})
}

// UpdateEntryStatus moves an entry from one of the expected statuses to the target one.
func (r *PgxJournalRepository) UpdateEntryStatus(ctx context.Context, entryID string, from []domain.JournalStatus, to domain.JournalStatus, userID string, now time.Time) error {
	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE journal_entries SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE entry_id = $1 AND status = ANY($5);`, entryID, string(to), now, userID, allowed)
	if err != nil {
		return mapPgError(err, "failed to update status of entry "+entryID)
	}
	if cmdTag.RowsAffected() > 0 {
		return nil
	}

	stored, err := r.FindEntryByID(ctx, entryID)
	if err != nil {
		return err
	}
	if !slices.Contains(from, stored.Status) {
		return fmt.Errorf("%w: status is %s", apperrors.ErrEntryNotEditable, stored.Status)
	}
	return apperrors.NewAppError(500, "status update of entry "+entryID+" affected no rows", nil)
}
