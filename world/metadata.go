package world

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// MetadataVersion is incremented when the metadata format changes.
const MetadataVersion = 1

// Metadata is world-wide persisted data. The encoding is YAML: unknown
// fields are ignored, missing fields default.
type Metadata struct {
	Version         int       `yaml:"version"`
	Seed            int64     `yaml:"seed"`
	SpawnPoint      [2]float64 `yaml:"spawn_point"`
	CreatedAt       string    `yaml:"created_at"`
	LastPlayed      string    `yaml:"last_played"`
	PlayTimeSeconds uint64    `yaml:"play_time_seconds"`

	// Player is an opaque payload owned by the caller.
	Player map[string]any `yaml:"player,omitempty"`
}

// NewMetadata creates metadata for a fresh world. The seed stays zero until
// the world facade assigns one.
func NewMetadata() *Metadata {
	now := time.Now().Format(time.RFC3339)
	return &Metadata{
		Version:    MetadataVersion,
		SpawnPoint: [2]float64{0, 100},
		CreatedAt:  now,
		LastPlayed: now,
	}
}

func (s *FileStore) metadataPath() string {
	return filepath.Join(s.dir, "world.yaml")
}

// SaveMetadata atomically writes world metadata.
func (s *FileStore) SaveMetadata(meta *Metadata) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	path := s.metadataPath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing metadata temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming metadata file: %w", err)
	}
	return nil
}

// LoadMetadata reads world metadata, falling back to fresh defaults on any
// failure.
func (s *FileStore) LoadMetadata() *Metadata {
	data, err := os.ReadFile(s.metadataPath())
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Msg("failed to read world metadata, using defaults")
		}
		return NewMetadata()
	}

	meta := NewMetadata()
	if err := yaml.Unmarshal(data, meta); err != nil {
		log.Warn().Err(err).Msg("failed to parse world metadata, using defaults")
		return NewMetadata()
	}
	return meta
}
