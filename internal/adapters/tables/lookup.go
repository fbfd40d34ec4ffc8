// Package tables resolves item and location ids to display names. Tables
// are JSON objects mapping name to id, the format the game data ships in.
package tables

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bnema/ff1c/internal/ports"
)

// Lookup is immutable after construction and safe for concurrent use.
type Lookup struct {
	items     map[int64]string
	locations map[int64]string
}

var _ ports.NameTable = (*Lookup)(nil)

// New builds a Lookup from name-to-id maps.
func New(items, locations map[string]int64) *Lookup {
	return &Lookup{
		items:     invert(items),
		locations: invert(locations),
	}
}

// Load reads both tables from disk. An empty path or a missing file yields
// an empty table; names then fall back to their ids.
func Load(itemsPath, locationsPath string) (*Lookup, error) {
	items, err := readTable(itemsPath)
	if err != nil {
		return nil, fmt.Errorf("load item table: %w", err)
	}

	locations, err := readTable(locationsPath)
	if err != nil {
		return nil, fmt.Errorf("load location table: %w", err)
	}

	return New(items, locations), nil
}

func readTable(path string) (map[string]int64, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var table map[string]int64
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return table, nil
}

func invert(table map[string]int64) map[int64]string {
	out := make(map[int64]string, len(table))
	for name, id := range table {
		out[id] = name
	}
	return out
}

func (l *Lookup) ItemName(id int64) string {
	if name, ok := l.items[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown item (ID:%d)", id)
}

func (l *Lookup) LocationName(id int64) string {
	if name, ok := l.locations[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown location (ID:%d)", id)
}

func (l *Lookup) Len() (items, locations int) {
	return len(l.items), len(l.locations)
}
