package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/i474232898/weather-outfit/internal/recommend"
	"github.com/i474232898/weather-outfit/internal/weather"
)

// PreferencesKey names the single persisted document.
const PreferencesKey = "weatherwear-storage"

var (
	// ErrNotFound is returned when nothing has been saved yet.
	ErrNotFound = errors.New("no stored preferences")
	// ErrCorrupt is returned when the stored document cannot be decoded.
	ErrCorrupt = errors.New("stored preferences are corrupt")
)

// Preferences is the subset of session state that survives restarts.
type Preferences struct {
	Options  recommend.UserOptions `json:"options"`
	Location *weather.Location     `json:"location"`
}

// PreferenceStore persists Preferences under PreferencesKey.
type PreferenceStore interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
	Close() error
}

func encode(p Preferences) ([]byte, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	return doc, nil
}

func decode(doc []byte) (Preferences, error) {
	var p Preferences
	if err := json.Unmarshal(doc, &p); err != nil {
		return Preferences{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return p, nil
}
