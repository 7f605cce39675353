// Package status provides persistence for celebration dispatch outcomes.
package status

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

//go:generate mockgen -destination=mocks/mock_ledger.go -package=mocks -source=persistence.go Ledger

const (
	// EntryFileName is the name of the per-identity ledger file
	EntryFileName = "dispatch.json"
)

// Ledger defines the interface for dispatch outcome persistence
type Ledger interface {
	// SaveEntry saves the entry for entry.Identity, replacing any previous one
	SaveEntry(ctx context.Context, entry *DispatchEntry) error

	// LoadEntry loads the entry for an identity.
	// Returns nil without error if nothing was recorded for it.
	LoadEntry(ctx context.Context, identity string) (*DispatchEntry, error)

	// LoadAllEntries loads every entry keyed by identity
	LoadAllEntries(ctx context.Context) (map[string]*DispatchEntry, error)
}

// fileLedger implements Ledger using the local filesystem
type fileLedger struct {
	basePath string
}

// NewFileLedger creates a new file-based ledger.
// basePath is the base directory where per-identity entries are stored.
func NewFileLedger(basePath string) Ledger {
	return &fileLedger{
		basePath: basePath,
	}
}

// entryDir maps an identity to a directory name. Identities are opaque and may contain
// path separators, so they are hashed rather than used verbatim.
func (f *fileLedger) entryDir(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return filepath.Join(f.basePath, hex.EncodeToString(sum[:]))
}

// SaveEntry saves the entry to a JSON file in an identity-specific directory
func (f *fileLedger) SaveEntry(_ context.Context, entry *DispatchEntry) error {
	if entry == nil || entry.Identity == "" {
		return fmt.Errorf("entry identity is required")
	}

	dir := f.entryDir(entry.Identity)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	filePath := filepath.Join(dir, EntryFileName)

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	// Write to temporary file first for atomic operation
	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary ledger file: %w", err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename ledger file: %w", err)
	}

	return nil
}

// LoadEntry loads the entry for a specific identity
func (f *fileLedger) LoadEntry(_ context.Context, identity string) (*DispatchEntry, error) {
	return readEntry(filepath.Join(f.entryDir(identity), EntryFileName))
}

// LoadAllEntries loads every readable entry; unreadable ones are logged and skipped
func (f *fileLedger) LoadAllEntries(_ context.Context) (map[string]*DispatchEntry, error) {
	result := make(map[string]*DispatchEntry)

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read ledger directory: %w", err)
	}

	for _, dirEntry := range entries {
		if !dirEntry.IsDir() {
			continue
		}

		path := filepath.Join(f.basePath, dirEntry.Name(), EntryFileName)
		entry, err := readEntry(path)
		if err != nil {
			slog.Warn("Skipping unreadable ledger entry", "path", path, "error", err)
			continue
		}
		if entry == nil || entry.Identity == "" {
			continue
		}

		result[entry.Identity] = entry
	}

	return result, nil
}

func readEntry(path string) (*DispatchEntry, error) {
	// #nosec G304 -- path is built from the configured base path and a hex digest
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read ledger file: %w", err)
	}

	var entry DispatchEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ledger entry: %w", err)
	}

	return &entry, nil
}
