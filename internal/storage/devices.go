package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDeviceExists is returned when registration hits the unique
// device_name constraint.
var ErrDeviceExists = errors.New("device already exists")

const deviceColumns = `id, device_name, device_type, location, key_hash, is_active, last_seen, created_at, updated_at`

func scanDevice(row pgx.Row) (*Device, error) {
	var d Device
	err := row.Scan(
		&d.ID, &d.DeviceName, &d.DeviceType, &d.Location, &d.KeyHash,
		&d.IsActive, &d.LastSeen, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDevice registers a new device. Registering the same name twice
// fails with ErrDeviceExists and leaves the existing row untouched.
func (p *PostgresClient) CreateDevice(ctx context.Context, name, deviceType, location, keyHash string) (*Device, error) {
	device, err := scanDevice(p.pool.QueryRow(ctx, `
		INSERT INTO devices (device_name, device_type, location, key_hash, is_active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING `+deviceColumns,
		name, deviceType, location, keyHash))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDeviceExists
		}
		return nil, fmt.Errorf("failed to insert device: %w", err)
	}

	return device, nil
}

func (p *PostgresClient) GetDeviceByName(ctx context.Context, name string) (*Device, error) {
	device, err := scanDevice(p.pool.QueryRow(ctx, `
		SELECT `+deviceColumns+` FROM devices WHERE device_name = $1
	`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return device, nil
}

func (p *PostgresClient) GetDeviceByID(ctx context.Context, id uuid.UUID) (*Device, error) {
	device, err := scanDevice(p.pool.QueryRow(ctx, `
		SELECT `+deviceColumns+` FROM devices WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return device, nil
}

func (p *PostgresClient) ListDevices(ctx context.Context) ([]*Device, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+deviceColumns+` FROM devices ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	devices := make([]*Device, 0)
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, device)
	}
	return devices, rows.Err()
}

// UpdateDevice patches the mutable operator-facing fields. Nil means
// leave unchanged.
func (p *PostgresClient) UpdateDevice(ctx context.Context, id uuid.UUID, isActive *bool, location, deviceType *string) (*Device, error) {
	device, err := scanDevice(p.pool.QueryRow(ctx, `
		UPDATE devices SET
			is_active   = COALESCE($2, is_active),
			location    = COALESCE($3, location),
			device_type = COALESCE($4, device_type),
			updated_at  = NOW()
		WHERE id = $1
		RETURNING `+deviceColumns,
		id, isActive, location, deviceType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to update device: %w", err)
	}
	return device, nil
}

// UpdateLastSeen bumps the liveness timestamp. Last writer wins; the
// pipeline treats failures here as non-fatal.
func (p *PostgresClient) UpdateLastSeen(ctx context.Context, name string, seenAt time.Time) error {
	_, err := p.pool.Exec(ctx, `
		UPDATE devices SET last_seen = $2, updated_at = NOW() WHERE device_name = $1
	`, name, seenAt)
	if err != nil {
		return fmt.Errorf("failed to update last_seen: %w", err)
	}
	return nil
}

// DeleteDevice removes a device and all of its readings.
func (p *PostgresClient) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var name string
	err = tx.QueryRow(ctx, `SELECT device_name FROM devices WHERE id = $1`, id).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("failed to load device: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM sensor_readings WHERE device_name = $1`, name); err != nil {
		return fmt.Errorf("failed to delete readings: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
