package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pondokrejo/desa-monitor/internal/types"
)

const alertColumns = `id, title, message, alert_type, sensor_type, is_read, created_at`

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.Title, &a.Message, &a.AlertType, &a.SensorType, &a.IsRead, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// InsertAlert persists one alert draft. New alerts always start unread.
func (p *PostgresClient) InsertAlert(ctx context.Context, draft types.AlertDraft) (*Alert, error) {
	alert, err := scanAlert(p.pool.QueryRow(ctx, `
		INSERT INTO alerts (title, message, alert_type, sensor_type, is_read)
		VALUES ($1, $2, $3, $4, false)
		RETURNING `+alertColumns,
		draft.Title, draft.Message, string(draft.AlertType), string(draft.SensorType)))
	if err != nil {
		return nil, fmt.Errorf("failed to insert alert: %w", err)
	}
	return alert, nil
}

func (p *PostgresClient) ListAlerts(ctx context.Context, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := p.pool.Query(ctx, `
		SELECT `+alertColumns+`
		FROM alerts
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := make([]*Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// SetAlertRead flips the read flag, the only mutation alerts support.
func (p *PostgresClient) SetAlertRead(ctx context.Context, id uuid.UUID, isRead bool) (*Alert, error) {
	alert, err := scanAlert(p.pool.QueryRow(ctx, `
		UPDATE alerts SET is_read = $2 WHERE id = $1
		RETURNING `+alertColumns,
		id, isRead))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update alert: %w", err)
	}
	return alert, nil
}
