package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CarWashBooking/internal/domain"
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-CarWashBooking/pkg/psqlbuilder"
)

const (
	businessHoursTable = "business_hours"
	overridesTable     = "date_overrides"
)

// Repository репозиторий рабочих часов и исключений по датам
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetBusinessHours получает правила для всех дней недели, отсортированные по дню
func (r *Repository) GetBusinessHours(ctx context.Context) ([]domain.BusinessHoursRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"day_of_week",
		"is_open",
		"open_time",
		"close_time",
		"updated_at",
	).
		From(businessHoursTable).
		OrderBy("day_of_week ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetBusinessHours - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbmetrics.WrapQueryError(ErrExecQuery, "GetBusinessHours - execute query", err)
	}
	defer rows.Close()

	rules := make([]domain.BusinessHoursRule, 0, 7)
	for rows.Next() {
		var rule domain.BusinessHoursRule
		var updatedAt sql.NullTime

		if err := rows.Scan(
			&rule.DayOfWeek,
			&rule.IsOpen,
			&rule.OpenTime,
			&rule.CloseTime,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: GetBusinessHours - scan row: %v", ErrScanRow, err)
		}

		rule.UpdatedAt = updatedAt.Time
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, dbmetrics.WrapQueryError(ErrScanRow, "GetBusinessHours - rows error", err)
	}

	return rules, nil
}

// UpsertBusinessHours создает или заменяет правило дня недели
func (r *Repository) UpsertBusinessHours(ctx context.Context, rule domain.BusinessHoursRule) (*domain.BusinessHoursRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(businessHoursTable).
		Columns("day_of_week", "is_open", "open_time", "close_time").
		Values(int(rule.DayOfWeek), rule.IsOpen, rule.OpenTime, rule.CloseTime).
		Suffix(`ON CONFLICT (day_of_week) DO UPDATE SET
			is_open = EXCLUDED.is_open,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			updated_at = NOW()
		RETURNING updated_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHours - build upsert query: %v", ErrBuildQuery, err)
	}

	var updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&updatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertBusinessHours - execute upsert: %v", ErrExecQuery, err)
	}

	rule.UpdatedAt = updatedAt.Time
	return &rule, nil
}

// GetOverride получает исключение на календарную дату
func (r *Repository) GetOverride(ctx context.Context, date time.Time) (*domain.DateOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := overrideSelect().
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetOverride - build select query: %v", ErrBuildQuery, err)
	}

	override, err := scanOverride(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOverrideNotFound
	}
	if err != nil {
		return nil, dbmetrics.WrapQueryError(ErrScanRow, "GetOverride - scan override", err)
	}

	return override, nil
}

// ListOverrides получает исключения в диапазоне дат (границы включительно, обе необязательны)
func (r *Repository) ListOverrides(ctx context.Context, from, to *time.Time) ([]*domain.DateOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := overrideSelect().OrderBy("date ASC")
	if from != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"date": from.Format(domain.DateFormat)})
	}
	if to != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"date": to.Format(domain.DateFormat)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverrides - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverrides - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	overrides := make([]*domain.DateOverride, 0)
	for rows.Next() {
		override, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListOverrides - scan row: %v", ErrScanRow, err)
		}
		overrides = append(overrides, override)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListOverrides - rows error: %v", ErrScanRow, err)
	}

	return overrides, nil
}

// UpsertOverride создает или заменяет исключение на дату
func (r *Repository) UpsertOverride(ctx context.Context, override domain.DateOverride) (*domain.DateOverride, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(overridesTable).
		Columns("date", "is_fully_blocked", "open_time", "close_time", "reason").
		Values(
			override.Date.Format(domain.DateFormat),
			override.IsFullyBlocked,
			override.OpenTime,
			override.CloseTime,
			override.Reason,
		).
		Suffix(`ON CONFLICT (date) DO UPDATE SET
			is_fully_blocked = EXCLUDED.is_fully_blocked,
			open_time = EXCLUDED.open_time,
			close_time = EXCLUDED.close_time,
			reason = EXCLUDED.reason
		RETURNING created_at`).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: UpsertOverride - build upsert query: %v", ErrBuildQuery, err)
	}

	var createdAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertOverride - execute upsert: %v", ErrExecQuery, err)
	}

	override.CreatedAt = createdAt.Time
	return &override, nil
}

// DeleteOverride удаляет исключение на дату
func (r *Repository) DeleteOverride(ctx context.Context, date time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(overridesTable).
		Where(squirrel.Eq{"date": date.Format(domain.DateFormat)}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: DeleteOverride - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrOverrideNotFound
	}

	return nil
}

func overrideSelect() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"date",
		"is_fully_blocked",
		"open_time",
		"close_time",
		"reason",
		"created_at",
	).From(overridesTable)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOverride(row rowScanner) (*domain.DateOverride, error) {
	var override domain.DateOverride
	var createdAt sql.NullTime

	err := row.Scan(
		&override.Date,
		&override.IsFullyBlocked,
		&override.OpenTime,
		&override.CloseTime,
		&override.Reason,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	override.CreatedAt = createdAt.Time
	return &override, nil
}
