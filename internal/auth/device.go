package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pondokrejo/desa-monitor/internal/storage"
	"github.com/pondokrejo/desa-monitor/internal/types"
)

// DeviceRegistry is the slice of storage the authenticator needs.
type DeviceRegistry interface {
	GetDeviceByName(ctx context.Context, name string) (*storage.Device, error)
}

// DeviceAuthenticator validates the x-device-id / x-device-key pair a
// sensor presents. Keys are opaque values issued at registration; only
// their sha256 hash is stored on the device row.
type DeviceAuthenticator struct {
	registry DeviceRegistry
}

func NewDeviceAuthenticator(registry DeviceRegistry) *DeviceAuthenticator {
	return &DeviceAuthenticator{registry: registry}
}

// Authenticate returns the device row for a valid id/key pair.
// Read-only: liveness is updated later by the ingestion pipeline.
func (a *DeviceAuthenticator) Authenticate(ctx context.Context, deviceID, deviceKey string) (*storage.Device, error) {
	if deviceID == "" || deviceKey == "" {
		return nil, types.ErrMissingCredentials
	}

	device, err := a.registry.GetDeviceByName(ctx, deviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrDeviceUnknownOrInactive
		}
		return nil, fmt.Errorf("device lookup failed: %w", err)
	}

	if !device.IsActive {
		return nil, types.ErrDeviceUnknownOrInactive
	}

	presentedHash := HashDeviceKey(deviceKey)
	if subtle.ConstantTimeCompare([]byte(presentedHash), []byte(device.KeyHash)) != 1 {
		return nil, types.ErrInvalidDeviceKey
	}

	return device, nil
}

// GenerateDeviceKey creates the key handed to the firmware once at
// registration. Format: device_<name>_<timestamp36>_<random>
func GenerateDeviceKey(deviceName string) (key, keyHash string, err error) {
	random := make([]byte, 4)
	if _, err := rand.Read(random); err != nil {
		return "", "", fmt.Errorf("failed to generate key: %w", err)
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	key = fmt.Sprintf("device_%s_%s_%s", deviceName, ts, hex.EncodeToString(random))

	return key, HashDeviceKey(key), nil
}

// HashDeviceKey hashes a device key for storage.
func HashDeviceKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
