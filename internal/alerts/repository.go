package alerts

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/database"
	"github.com/sentineldesk/signalhub/internal/domain"
)

// Repository persists Alert definitions to SQLite so they survive restart.
type Repository struct {
	db *database.DB
}

// NewRepository wraps db. Callers must have already run db.Migrate().
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// List returns every alert, optionally filtered by symbol (empty = all).
func (r *Repository) List(symbol string) ([]domain.Alert, error) {
	query := `SELECT id, symbol, kind, comparator, threshold, indicator, indicator_period,
		single_shot, rearm_after_seconds, enabled, triggered, triggered_at, description, created_at, updated_at
		FROM alerts`
	args := []any{}
	if symbol != "" {
		query += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list alerts", err)
	}
	defer rows.Close()

	var out []domain.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan alert", err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Get returns a single alert by id.
func (r *Repository) Get(id string) (domain.Alert, error) {
	row := r.db.QueryRow(`SELECT id, symbol, kind, comparator, threshold, indicator, indicator_period,
		single_shot, rearm_after_seconds, enabled, triggered, triggered_at, description, created_at, updated_at
		FROM alerts WHERE id = ?`, id)

	a, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return domain.Alert{}, apperr.New(apperr.KindNotFound, "alert not found")
	}
	if err != nil {
		return domain.Alert{}, apperr.Wrap(apperr.KindInternal, "get alert", err)
	}
	return a, nil
}

// Create validates and inserts a new alert, assigning it an ID and timestamps.
func (r *Repository) Create(a domain.Alert) (domain.Alert, error) {
	if err := a.Validate(); err != nil {
		return domain.Alert{}, err
	}
	a.ID = uuid.NewString()
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	if !a.Enabled {
		a.Enabled = true
	}

	kind, comparator, threshold, indicator, indicatorPeriod := encodeAlert(a)

	_, err := r.db.Exec(`INSERT INTO alerts
		(id, symbol, kind, comparator, threshold, indicator, indicator_period, single_shot, rearm_after_seconds, enabled, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Symbol, kind, comparator, threshold, indicator, indicatorPeriod,
		boolToInt(a.SingleShot), int64(a.RearmAfter.Seconds()), boolToInt(a.Enabled), a.Description,
		a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return domain.Alert{}, apperr.Wrap(apperr.KindInternal, "create alert", err)
	}
	return a, nil
}

// UpdateTriggerState persists a trigger (or re-arm) transition atomically.
func (r *Repository) UpdateTriggerState(id string, triggered bool, triggeredAt *time.Time) error {
	var tsArg any
	if triggeredAt != nil {
		tsArg = triggeredAt.Format(time.RFC3339)
	}
	_, err := r.db.Exec(`UPDATE alerts SET triggered = ?, triggered_at = ?, updated_at = ? WHERE id = ?`,
		boolToInt(triggered), tsArg, time.Now().Format(time.RFC3339), id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "update alert trigger state", err)
	}
	return nil
}

// SetEnabled enables or disables an alert.
func (r *Repository) SetEnabled(id string, enabled bool) error {
	_, err := r.db.Exec(`UPDATE alerts SET enabled = ?, updated_at = ? WHERE id = ?`, boolToInt(enabled), time.Now().Format(time.RFC3339), id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "update alert enabled flag", err)
	}
	return nil
}

// UpdateThreshold adjusts a price alert's threshold or an indicator
// alert's comparison value, whichever is non-nil, used by C10's
// PATCH /alerts/{id} "adjust thresholds" contract.
func (r *Repository) UpdateThreshold(id string, priceThreshold, indicatorValue *float64) error {
	if priceThreshold == nil && indicatorValue == nil {
		return nil
	}
	a, err := r.Get(id)
	if err != nil {
		return err
	}
	switch a.AlertType {
	case domain.AlertTypePrice:
		if priceThreshold == nil {
			return apperr.New(apperr.KindInvalidInput, "price_threshold required for a price alert")
		}
		_, err = r.db.Exec(`UPDATE alerts SET threshold = ?, updated_at = ? WHERE id = ?`,
			*priceThreshold, time.Now().Format(time.RFC3339), id)
	case domain.AlertTypeIndicator:
		if indicatorValue == nil {
			return apperr.New(apperr.KindInvalidInput, "indicator_value required for an indicator alert")
		}
		_, err = r.db.Exec(`UPDATE alerts SET threshold = ?, updated_at = ? WHERE id = ?`,
			*indicatorValue, time.Now().Format(time.RFC3339), id)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "update alert threshold", err)
	}
	return nil
}

// Delete removes an alert.
func (r *Repository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete alert", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "alert not found")
	}
	return nil
}

// RecordFire appends a fire-history row for observability/audit.
func (r *Repository) RecordFire(alertID string, value float64) error {
	_, err := r.db.Exec(`INSERT INTO alert_fires (id, alert_id, fired_at, value) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), alertID, time.Now().Format(time.RFC3339), value)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "record alert fire", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAlert(row rowScanner) (domain.Alert, error) {
	var a domain.Alert
	var kind, comparator, createdAt, updatedAt string
	var threshold sql.NullFloat64
	var indicator sql.NullString
	var indicatorPeriod sql.NullInt64
	var singleShot, enabled, triggered int
	var rearmSeconds int64
	var triggeredAt sql.NullString

	if err := row.Scan(&a.ID, &a.Symbol, &kind, &comparator, &threshold, &indicator, &indicatorPeriod,
		&singleShot, &rearmSeconds, &enabled, &triggered, &triggeredAt, &a.Description, &createdAt, &updatedAt); err != nil {
		return domain.Alert{}, err
	}

	decodeAlert(&a, kind, comparator, threshold, indicator)
	a.SingleShot = singleShot == 1
	a.RearmAfter = time.Duration(rearmSeconds) * time.Second
	a.Enabled = enabled == 1
	a.Triggered = triggered == 1
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if triggeredAt.Valid {
		t, _ := time.Parse(time.RFC3339, triggeredAt.String)
		a.TriggeredAt = &t
	}
	return a, nil
}

func encodeAlert(a domain.Alert) (kind, comparator string, threshold float64, indicator string, indicatorPeriod int) {
	kind = string(a.AlertType)
	switch a.AlertType {
	case domain.AlertTypePrice:
		comparator = string(*a.PriceCondition)
		threshold = *a.PriceThreshold
	case domain.AlertTypeIndicator:
		comparator = string(*a.IndicatorCondition)
		threshold = *a.IndicatorValue
		indicator = string(*a.IndicatorName)
		indicatorPeriod = 14
	}
	return
}

func decodeAlert(a *domain.Alert, kind, comparator string, threshold sql.NullFloat64, indicator sql.NullString) {
	a.AlertType = domain.AlertType(kind)
	switch a.AlertType {
	case domain.AlertTypePrice:
		pc := domain.PriceCondition(comparator)
		a.PriceCondition = &pc
		if threshold.Valid {
			v := threshold.Float64
			a.PriceThreshold = &v
		}
	case domain.AlertTypeIndicator:
		ic := domain.IndicatorCondition(comparator)
		a.IndicatorCondition = &ic
		if threshold.Valid {
			v := threshold.Float64
			a.IndicatorValue = &v
		}
		if indicator.Valid {
			in := domain.IndicatorName(indicator.String)
			a.IndicatorName = &in
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
