package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/goccy/go-json"
)

// LoadJSON decodes the document at key over dst. dst must be a non-nil
// pointer already holding the defaults: a missing key leaves it untouched,
// and a corrupt document is logged and also leaves the defaults in place.
// Only store failures are returned.
func LoadJSON(ctx context.Context, store Store, key string, dst any) error {
	data, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("load %s: destination must be a non-nil pointer", key)
	}

	// Decode into a copy of the defaults so a half-decoded document never
	// reaches dst.
	defaults, err := json.Marshal(dst)
	if err != nil {
		return fmt.Errorf("snapshot defaults for %s: %w", key, err)
	}
	scratch := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(defaults, scratch.Interface()); err != nil {
		return fmt.Errorf("copy defaults for %s: %w", key, err)
	}
	if err := json.Unmarshal(data, scratch.Interface()); err != nil {
		slog.Warn("discarding corrupt persisted state", "key", key, "error", err)
		return nil
	}

	rv.Elem().Set(scratch.Elem())
	return nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}
