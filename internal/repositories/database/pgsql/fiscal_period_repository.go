package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const periodColumns = `period_id, tenant_id, name, start_date, end_date, status,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxFiscalPeriodRepository struct {
	BaseRepository
}

func newPgxFiscalPeriodRepository(pool *pgxpool.Pool) *PgxFiscalPeriodRepository {
	return &PgxFiscalPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.FiscalPeriodRepositoryFacade = (*PgxFiscalPeriodRepository)(nil)

func scanPeriod(row pgx.Row) (domain.FiscalPeriod, error) {
	var m models.FiscalPeriod
	err := row.Scan(&m.PeriodID, &m.TenantID, &m.Name, &m.StartDate, &m.EndDate, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	if err != nil {
		return domain.FiscalPeriod{}, err
	}
	return mapping.ToDomainFiscalPeriod(m), nil
}

func queryPeriods(ctx context.Context, q querier, query string, args ...any) ([]domain.FiscalPeriod, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError(err, "failed to query fiscal periods")
	}
	defer rows.Close()

	periods := []domain.FiscalPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, mapPgError(err, "failed to scan fiscal period")
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "error iterating fiscal periods")
	}
	return periods, nil
}

// findPeriodsCovering is shared with the posting transaction, which passes FOR SHARE as lockClause.
func findPeriodsCovering(ctx context.Context, q querier, tenantID string, date time.Time, lockClause string) ([]domain.FiscalPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM fiscal_periods
		WHERE tenant_id = $1 AND start_date <= $2::date AND end_date >= $2::date
		ORDER BY start_date ` + lockClause + `;`
	return queryPeriods(ctx, q, query, tenantID, domain.DateOnly(date))
}

func (r *PgxFiscalPeriodRepository) FindPeriodsCovering(ctx context.Context, tenantID string, date time.Time) ([]domain.FiscalPeriod, error) {
	return findPeriodsCovering(ctx, r.Pool, tenantID, date, "")
}

func (r *PgxFiscalPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FiscalPeriod, error) {
	p, err := scanPeriod(r.Pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods WHERE period_id = $1;`, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrFiscalPeriodNotFound, periodID)
		}
		return nil, mapPgError(err, "failed to find fiscal period "+periodID)
	}
	return &p, nil
}

func (r *PgxFiscalPeriodRepository) ListPeriods(ctx context.Context, tenantID string) ([]domain.FiscalPeriod, error) {
	return queryPeriods(ctx, r.Pool, `SELECT `+periodColumns+` FROM fiscal_periods WHERE tenant_id = $1 ORDER BY start_date;`, tenantID)
}

// SavePeriod serializes period creation per tenant with an advisory lock so the overlap check holds.
func (r *PgxFiscalPeriodRepository) SavePeriod(ctx context.Context, period domain.FiscalPeriod) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('fiscal_periods:' || $1));`, period.TenantID); err != nil {
			return mapPgError(err, "failed to lock fiscal periods")
		}
		var overlapping string
		err := tx.QueryRow(ctx, `
			SELECT name FROM fiscal_periods
			WHERE tenant_id = $1 AND start_date <= $3::date AND end_date >= $2::date
			LIMIT 1;`, period.TenantID, domain.DateOnly(period.StartDate), domain.DateOnly(period.EndDate)).Scan(&overlapping)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", apperrors.ErrFiscalPeriodOverlap, overlapping)
		case !errors.Is(err, pgx.ErrNoRows):
			return mapPgError(err, "failed to check fiscal period overlap")
		}

		m := mapping.ToModelFiscalPeriod(period)
		_, err = tx.Exec(ctx, `INSERT INTO fiscal_periods (`+periodColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
			m.PeriodID, m.TenantID, m.Name, m.StartDate, m.EndDate, m.Status,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
		if err != nil {
			return mapPgError(err, "failed to save fiscal period "+m.PeriodID)
		}
		return nil
	})
}

// UpdatePeriodStatus waits for postings holding the period row FOR SHARE.
func (r *PgxFiscalPeriodRepository) UpdatePeriodStatus(ctx context.Context, periodID string, status domain.PeriodStatus, userID string, now time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE fiscal_periods SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE period_id = $1;`, periodID, string(status), now, userID)
	if err != nil {
		return mapPgError(err, "failed to update fiscal period "+periodID)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrFiscalPeriodNotFound, periodID)
	}
	return nil
}
