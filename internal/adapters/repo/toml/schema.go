package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version int           `toml:"version"`
	Entries []entrySchema `toml:"entries"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported history schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type entrySchema struct {
	ID         string  `toml:"id"`
	Filename   string  `toml:"filename"`
	MediaType  string  `toml:"media_type"`
	Verdict    string  `toml:"verdict"`
	Confidence float64 `toml:"confidence"`
	Timestamp  string  `toml:"timestamp"`
}
