package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/bnema/ff1c/internal/domain"
	"github.com/bnema/ff1c/internal/ports"
)

const (
	statusFileMode  = 0o600
	statusDirMode   = 0o700
	tempFilePattern = ".status-*.toml.tmp"
)

// StatusRepository keeps the latest bridge status in a small TOML file so
// other processes can report it.
type StatusRepository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.StatusRepository = (*StatusRepository)(nil)

func NewStatusRepository(path string) (*StatusRepository, error) {
	if path == "" {
		return nil, errors.New("status path is empty")
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &StatusRepository{path: path, mu: lockForPath(path)}, nil
}

func (r *StatusRepository) Path() string {
	return r.path
}

func (r *StatusRepository) SaveStatus(ctx context.Context, status domain.BridgeStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file := fileSchema{Bridge: toSchema(status)}
	return r.writeSchema(file)
}

func (r *StatusRepository) LoadStatus(ctx context.Context) (domain.BridgeStatus, error) {
	if err := ctx.Err(); err != nil {
		return domain.BridgeStatus{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.BridgeStatus{}, err
	}

	return fromSchema(file.Bridge)
}

func (r *StatusRepository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, domain.ErrStatusNotFound
		}
		return fileSchema{}, fmt.Errorf("read status file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode status file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve status path: %w", err)
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

// writeSchema replaces the file through a rename so readers never observe a
// partial write.
func (r *StatusRepository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, statusDirMode); err != nil {
		return fmt.Errorf("create status directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode status file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp status file: %w", err)
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
		return fmt.Errorf("write temp status file: %w", err)
	}

	if err := tempFile.Chmod(statusFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp status file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp status file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace status file: %w", err)
	}

	cleanup = false
	return nil
}

func toSchema(status domain.BridgeStatus) bridgeSchema {
	return bridgeSchema{
		State:     string(status.State),
		Text:      status.Text,
		Tentative: status.Tentative,
		UpdatedAt: formatTime(status.UpdatedAt),
	}
}

func fromSchema(entry bridgeSchema) (domain.BridgeStatus, error) {
	state := domain.ConnectionState(entry.State)
	if !state.Valid() {
		return domain.BridgeStatus{}, fmt.Errorf("decode status file: unknown state %q", entry.State)
	}

	text := entry.Text
	if text == "" {
		text = state.Text()
	}

	return domain.BridgeStatus{
		State:     state,
		Text:      text,
		Tentative: entry.Tentative,
		UpdatedAt: parseTime(entry.UpdatedAt),
	}, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
