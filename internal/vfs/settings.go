package vfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fracta-app/fracta/internal/ferr"
)

const (
	systemDirName = ".fracta"
	settingsFile  = "settings.json"
)

// LocationSettings is the persisted content of config/settings.json: a
// Location's identity and human label. Both fields are optional on read;
// id is generated and written back the first time a Location is opened
// without one.
type LocationSettings struct {
	ID    *uuid.UUID `json:"id,omitempty"`
	Label *string    `json:"label,omitempty"`
}

func settingsPath(root string) string {
	return filepath.Join(root, systemDirName, "config", settingsFile)
}

// loadLocationSettings reads settings.json from a Location root, returning
// zero-value settings if the file does not exist.
func loadLocationSettings(root string) (LocationSettings, error) {
	path := settingsPath(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LocationSettings{}, nil
		}
		return LocationSettings{}, ferr.Wrap(ferr.KindIO, path, err)
	}

	var settings LocationSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return LocationSettings{}, ferr.Wrap(ferr.KindCorruptedData, path, fmt.Errorf("parse settings.json: %w", err))
	}
	return settings, nil
}

// save persists settings to root's settings.json, pretty-printed, via an
// atomic write, creating config/ if necessary.
func (s LocationSettings) save(root string) error {
	configDir := filepath.Join(root, systemDirName, "config")
	if err := ensureDir(configDir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return ferr.Wrap(ferr.KindIO, settingsPath(root), fmt.Errorf("marshal settings.json: %w", err))
	}

	return atomicWrite(settingsPath(root), data)
}

// getOrCreateID returns the settings' persistent ID, generating and storing
// a UUIDv7 (time-ordered, monotonic by creation time) if absent.
func (s *LocationSettings) getOrCreateID() uuid.UUID {
	if s.ID != nil {
		return *s.ID
	}
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the system clock/RNG is unavailable;
		// fall back to a random v4 rather than leave the Location unidentified.
		id = uuid.New()
	}
	s.ID = &id
	return id
}
