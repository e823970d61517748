package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const deviceIDKey = "device_id"

// DeviceID returns the id stored in store, creating and persisting a new
// random one on first use.
func DeviceID(ctx context.Context, store Store) (string, error) {
	v, err := store.Get(ctx, deviceIDKey)
	if err == nil && len(v) > 0 {
		return string(v), nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", fmt.Errorf("read device id: %w", err)
	}

	id := uuid.NewString()
	if err := store.Put(ctx, deviceIDKey, []byte(id)); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
