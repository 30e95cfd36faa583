package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"StockResearch/internal/config"
	"StockResearch/internal/corpus"
	"StockResearch/internal/domain"
)

// FileLoader reads a JSON array of paper records from disk.
type FileLoader struct{}

var _ corpus.Loader = FileLoader{}

// Name identifies the strategy inside the registry.
func (FileLoader) Name() string {
	return config.LoaderFile
}

// Load decodes src.Path into papers.
func (FileLoader) Load(ctx context.Context, src corpus.Source) ([]domain.Paper, error) {
	if src.Path == "" {
		return nil, fmt.Errorf("source %s has no path", src.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("read papers: %w", err)
	}

	var papers []domain.Paper
	if err := json.Unmarshal(raw, &papers); err != nil {
		return nil, fmt.Errorf("decode papers %s: %w", src.Path, err)
	}
	return papers, nil
}
