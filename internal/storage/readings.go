package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const readingColumns = `id, sensor_type, device_name,
	voltage, current, power, energy, frequency, power_factor, tariff, cost,
	water_level, detected, room, temperature, humidity, smoke_level,
	rainfall, rain_intensity, is_raining, timestamp, created_at`

func scanReading(row pgx.Row) (*SensorReading, error) {
	var r SensorReading
	err := row.Scan(
		&r.ID, &r.SensorType, &r.DeviceName,
		&r.Voltage, &r.Current, &r.Power, &r.Energy, &r.Frequency,
		&r.PowerFactor, &r.Tariff, &r.Cost,
		&r.WaterLevel, &r.Detected, &r.Room, &r.Temperature, &r.Humidity,
		&r.SmokeLevel, &r.Rainfall, &r.RainIntensity, &r.IsRaining,
		&r.Timestamp, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// InsertReading appends one reading. Readings are immutable; there is no
// update path.
func (p *PostgresClient) InsertReading(ctx context.Context, r *SensorReading) (*SensorReading, error) {
	stored, err := scanReading(p.pool.QueryRow(ctx, `
		INSERT INTO sensor_readings (
			sensor_type, device_name,
			voltage, current, power, energy, frequency, power_factor, tariff, cost,
			water_level, detected, room, temperature, humidity, smoke_level,
			rainfall, rain_intensity, is_raining, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING `+readingColumns,
		r.SensorType, r.DeviceName,
		r.Voltage, r.Current, r.Power, r.Energy, r.Frequency,
		r.PowerFactor, r.Tariff, r.Cost,
		r.WaterLevel, r.Detected, r.Room, r.Temperature, r.Humidity,
		r.SmokeLevel, r.Rainfall, r.RainIntensity, r.IsRaining, r.Timestamp))
	if err != nil {
		return nil, fmt.Errorf("failed to insert reading: %w", err)
	}
	return stored, nil
}

// ListReadings returns recent readings, newest first. deviceName == ""
// means all devices.
func (p *PostgresClient) ListReadings(ctx context.Context, limit int, deviceName string) ([]*SensorReading, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows pgx.Rows
	var err error
	if deviceName != "" {
		rows, err = p.pool.Query(ctx, `
			SELECT `+readingColumns+`
			FROM sensor_readings
			WHERE device_name = $1
			ORDER BY timestamp DESC
			LIMIT $2
		`, deviceName, limit)
	} else {
		rows, err = p.pool.Query(ctx, `
			SELECT `+readingColumns+`
			FROM sensor_readings
			ORDER BY timestamp DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	readings := make([]*SensorReading, 0)
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

// LatestReading returns the most recent reading for a device, or nil
// when the device has not reported yet.
func (p *PostgresClient) LatestReading(ctx context.Context, deviceName string) (*SensorReading, error) {
	reading, err := scanReading(p.pool.QueryRow(ctx, `
		SELECT `+readingColumns+`
		FROM sensor_readings
		WHERE device_name = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`, deviceName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}
	return reading, nil
}

func (p *PostgresClient) CountReadings(ctx context.Context, deviceName string) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM sensor_readings WHERE device_name = $1
	`, deviceName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return count, nil
}

func (p *PostgresClient) GetReading(ctx context.Context, id uuid.UUID) (*SensorReading, error) {
	reading, err := scanReading(p.pool.QueryRow(ctx, `
		SELECT `+readingColumns+` FROM sensor_readings WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}
	return reading, nil
}
