package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	historyFileMode = 0o600
	historyDirMode  = 0o700
	tempFilePattern = ".history-*.toml.tmp"
)

// HistoryRepository keeps the capped local scan history in a single TOML
// file. Instances pointing at the same path share one lock.
type HistoryRepository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.HistoryRepository = (*HistoryRepository)(nil)

func NewHistoryRepository(path string) (*HistoryRepository, error) {
	if path == "" {
		return nil, errors.New("history path is empty")
	}

	normalized, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &HistoryRepository{path: normalized, mu: lockForPath(normalized)}, nil
}

func (r *HistoryRepository) Path() string {
	return r.path
}

// List returns the stored entries, newest first. A missing file is an empty
// history; an unreadable one is reported as domain.ErrCorruptStore.
func (r *HistoryRepository) List(ctx context.Context) ([]domain.ScanHistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	return fromSchema(file.Entries)
}

// Prepend stores entry ahead of the existing history and truncates it to
// limit. A corrupt file is replaced.
func (r *HistoryRepository) Prepend(ctx context.Context, entry domain.ScanHistoryEntry, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var existing []domain.ScanHistoryEntry
	file, err := r.readSchema()
	switch {
	case err == nil:
		existing, err = fromSchema(file.Entries)
		if err != nil && !errors.Is(err, domain.ErrCorruptStore) {
			return err
		}
	case errors.Is(err, domain.ErrCorruptStore):
	default:
		return err
	}

	updated := domain.PrependHistory(existing, entry, limit)

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(fileSchema{Entries: toSchema(updated)})
}

func (r *HistoryRepository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read history file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode history file: %w: %w", domain.ErrCorruptStore, err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *HistoryRepository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), historyDirMode); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode history file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp history file: %w", err)
	}

	if err := tempFile.Chmod(historyFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp history file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp history file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}

	cleanup = false
	return nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(entries []domain.ScanHistoryEntry) []entrySchema {
	encoded := make([]entrySchema, 0, len(entries))
	for _, entry := range entries {
		encoded = append(encoded, entrySchema{
			ID:         entry.ID,
			Filename:   entry.Filename,
			MediaType:  string(entry.MediaType),
			Verdict:    string(entry.Verdict),
			Confidence: entry.Confidence,
			Timestamp:  entry.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}
	return encoded
}

func fromSchema(entries []entrySchema) ([]domain.ScanHistoryEntry, error) {
	decoded := make([]domain.ScanHistoryEntry, 0, len(entries))
	for i, entry := range entries {
		timestamp, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("history entry %d timestamp: %w: %w", i, domain.ErrCorruptStore, err)
		}
		mediaType, err := domain.ParseFileType(entry.MediaType)
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w: %w", i, domain.ErrCorruptStore, err)
		}
		verdict := domain.Verdict(entry.Verdict)
		if verdict != domain.VerdictAuthentic && verdict != domain.VerdictDeepfake {
			return nil, fmt.Errorf("history entry %d verdict %q: %w", i, entry.Verdict, domain.ErrCorruptStore)
		}

		decoded = append(decoded, domain.ScanHistoryEntry{
			ID:         entry.ID,
			Filename:   entry.Filename,
			MediaType:  mediaType,
			Verdict:    verdict,
			Confidence: entry.Confidence,
			Timestamp:  timestamp,
		})
	}
	return decoded, nil
}
