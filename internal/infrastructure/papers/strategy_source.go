package papers

import (
	"context"
	"fmt"
	"log/slog"

	"StockResearch/internal/config"
	"StockResearch/internal/corpus"
	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

// StrategySource implements CorpusSource via registered loader strategies.
type StrategySource struct {
	registry *corpus.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.CorpusSource = (*StrategySource)(nil)

// NewStrategySource wires the loader registry with config-defined sources.
func NewStrategySource(reg *corpus.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// LoadPapers runs every configured source in order. A paper whose id was
// already produced by an earlier source is skipped.
func (s *StrategySource) LoadPapers(ctx context.Context) ([]domain.Paper, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("corpus registry is not configured")
	}
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("no corpus sources configured")
	}

	s.debug("load corpus", "sources", len(s.sources))

	var aggregated []domain.Paper
	seen := map[string]struct{}{}
	for _, src := range s.sources {
		s.debug("process source", "source", src.Name, "loader", src.Loader)
		loader, err := s.registry.Resolve(src.Loader)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}

		papers, err := loader.Load(ctx, corpus.Source{
			Name:    src.Name,
			Path:    src.Path,
			Options: src.Options,
		})
		if err != nil {
			return nil, fmt.Errorf("load source %s: %w", src.Name, err)
		}

		fresh := make(map[string]struct{}, len(papers))
		kept := 0
		for _, paper := range papers {
			if _, dup := seen[paper.ID]; dup {
				continue
			}
			fresh[paper.ID] = struct{}{}
			aggregated = append(aggregated, paper)
			kept++
		}
		for id := range fresh {
			seen[id] = struct{}{}
		}
		s.debug("source produced papers", "source", src.Name, "count", len(papers), "kept", kept)
	}

	s.debug("corpus loaded", "total_papers", len(aggregated))
	return aggregated, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
