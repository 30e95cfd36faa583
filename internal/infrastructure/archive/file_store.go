package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

// FileStore writes each callback as a pretty-printed JSON file in a directory.
type FileStore struct {
	dir string
}

var _ ports.CallbackStore = (*FileStore)(nil)

// NewFileStore creates dir when it does not exist yet.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("logs directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save persists the record and returns its filename.
func (s *FileStore) Save(_ context.Context, record domain.CallbackRecord) (string, error) {
	payload, err := encodeRecord(record)
	if err != nil {
		return "", err
	}

	name := record.Filename()
	if err := os.WriteFile(filepath.Join(s.dir, name), payload, 0o644); err != nil {
		return "", fmt.Errorf("write callback: %w", err)
	}
	return name, nil
}

// List returns stored JSON files, newest first.
func (s *FileStore) List(_ context.Context) ([]domain.CallbackFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read logs dir: %w", err)
	}

	files := make([]domain.CallbackFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		files = append(files, domain.CallbackFile{
			Filename: entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sortNewestFirst(files)
	return files, nil
}

// Location is the directory callbacks are written to.
func (s *FileStore) Location() string {
	return s.dir
}

func encodeRecord(record domain.CallbackRecord) ([]byte, error) {
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode callback: %w", err)
	}
	return payload, nil
}

func sortNewestFirst(files []domain.CallbackFile) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Modified.Equal(files[j].Modified) {
			return files[i].Filename > files[j].Filename
		}
		return files[i].Modified.After(files[j].Modified)
	})
}
