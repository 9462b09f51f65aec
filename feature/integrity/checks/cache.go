package checks

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"roster-workbench/core/cachestore"

	"github.com/google/uuid"
)

// CacheReport is the result of a cache medium round trip.
type CacheReport struct {
	Medium string `json:"medium"`
	Status string `json:"status"` // "ok", "error"
	Error  string `json:"error,omitempty"`
}

// CheckCache writes, reads back and deletes a check entry directly on the persistent
// medium, bypassing the hot tier.
func CheckCache(ctx context.Context, medium cachestore.Medium, name string) *CacheReport {
	report := &CacheReport{Medium: name, Status: "ok"}
	if err := roundTrip(ctx, medium); err != nil {
		report.Status = "error"
		report.Error = err.Error()
	}
	return report
}

func roundTrip(ctx context.Context, medium cachestore.Medium) error {
	key := "integrity:check:" + uuid.NewString()
	payload := []byte(`{"value":true}`)

	if err := medium.Write(ctx, key, payload); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	got, err := medium.Read(ctx, key)
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}
	if !bytes.Equal(got, payload) {
		return fmt.Errorf("read back %d bytes, wrote %d", len(got), len(payload))
	}
	if err := medium.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if _, err := medium.Read(ctx, key); !errors.Is(err, cachestore.ErrNotFound) {
		return fmt.Errorf("check entry still readable after delete: %v", err)
	}
	return nil
}
