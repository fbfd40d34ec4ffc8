package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Bridge  bridgeSchema `toml:"bridge"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported status schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type bridgeSchema struct {
	State     string `toml:"state"`
	Text      string `toml:"text"`
	Tentative bool   `toml:"tentative,omitempty"`
	UpdatedAt string `toml:"updated_at"`
}
