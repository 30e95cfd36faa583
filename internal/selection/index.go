// Package selection picks eligible tickers and cross-category paper pairs
// from an in-memory paper corpus.
package selection

import "StockResearch/internal/domain"

// Index maps tickers to the papers that list them. It is built once per
// corpus load and never mutated afterwards.
type Index struct {
	byTicker map[string][]domain.Paper
	tickers  []string
}

// BuildIndex appends every paper to the bucket of each ticker it lists.
// Buckets and tickers keep first-seen order.
func BuildIndex(papers []domain.Paper) *Index {
	idx := &Index{byTicker: map[string][]domain.Paper{}}
	for _, paper := range papers {
		for _, ticker := range paper.Tickers {
			if _, ok := idx.byTicker[ticker]; !ok {
				idx.tickers = append(idx.tickers, ticker)
			}
			idx.byTicker[ticker] = append(idx.byTicker[ticker], paper)
		}
	}
	return idx
}

// Tickers returns the indexed tickers in first-seen order.
func (i *Index) Tickers() []string {
	out := make([]string, len(i.tickers))
	copy(out, i.tickers)
	return out
}

// Papers returns a copy of the ticker's bucket and whether it exists.
func (i *Index) Papers(ticker string) ([]domain.Paper, bool) {
	bucket, ok := i.byTicker[ticker]
	if !ok {
		return nil, false
	}
	out := make([]domain.Paper, len(bucket))
	copy(out, bucket)
	return out, true
}

// Len reports the number of ticker buckets.
func (i *Index) Len() int {
	return len(i.tickers)
}

// categoryGroups groups papers by category; a paper lands in every group it
// carries. keys keeps first-seen order so pinned randomness is reproducible.
type categoryGroups struct {
	keys   []string
	papers map[string][]domain.Paper
}

func groupByCategory(papers []domain.Paper) categoryGroups {
	groups := categoryGroups{papers: map[string][]domain.Paper{}}
	for _, paper := range papers {
		for _, category := range paper.Categories {
			if _, ok := groups.papers[category]; !ok {
				groups.keys = append(groups.keys, category)
			}
			groups.papers[category] = append(groups.papers[category], paper)
		}
	}
	return groups
}

func distinctIDs(papers []domain.Paper) int {
	seen := make(map[string]struct{}, len(papers))
	for _, paper := range papers {
		seen[paper.ID] = struct{}{}
	}
	return len(seen)
}

// Categories lists the distinct categories carried by papers, first-seen order.
func Categories(papers []domain.Paper) []string {
	return groupByCategory(papers).keys
}
