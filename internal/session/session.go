// Package session keeps in-progress calculator forms between requests or chat
// messages. Drafts live only until their TTL runs out.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"bmi-quickcalc/internal/form"
)

// Store persists form drafts keyed by a caller-chosen session key.
type Store interface {
	// Get returns nil, nil when the key is unknown or its draft expired.
	Get(ctx context.Context, key string) (*form.Form, error)
	// Put saves the draft and restarts its TTL.
	Put(ctx context.Context, key string, f *form.Form) error
	Delete(ctx context.Context, key string) error
	// CleanupExpired removes expired drafts and reports how many went.
	CleanupExpired(ctx context.Context) (int64, error)
}

// Load returns the stored draft for key, or a fresh form if there is none.
func Load(ctx context.Context, s Store, key string) (*form.Form, error) {
	f, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return form.New(), nil
	}
	return f, nil
}

func encode(f *form.Form) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal form: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*form.Form, error) {
	var f form.Form
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form: %w", err)
	}
	return &f, nil
}
