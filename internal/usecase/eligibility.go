package usecase

import (
	"context"
	"fmt"
	"sort"

	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
	"StockResearch/internal/selection"
)

// Eligibility lists the tickers research can be run for.
type Eligibility struct {
	source ports.CorpusSource
}

// NewEligibility wires the corpus source.
func NewEligibility(source ports.CorpusSource) *Eligibility {
	return &Eligibility{source: source}
}

// List returns every eligible ticker, sorted by ticker.
func (e *Eligibility) List(ctx context.Context) ([]domain.TickerSummary, error) {
	if e.source == nil {
		return nil, fmt.Errorf("corpus source not configured")
	}

	papers, err := e.source.LoadPapers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	idx := selection.BuildIndex(papers)
	tickers := selection.EligibleTickers(idx)

	summaries := make([]domain.TickerSummary, 0, len(tickers))
	for _, ticker := range tickers {
		bucket, _ := idx.Papers(ticker)
		summaries = append(summaries, domain.TickerSummary{
			Ticker:     ticker,
			Papers:     len(bucket),
			Categories: selection.Categories(bucket),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Ticker < summaries[j].Ticker
	})
	return summaries, nil
}
