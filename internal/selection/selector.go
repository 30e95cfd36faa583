package selection

import (
	"errors"
	"fmt"
	"strings"

	"StockResearch/internal/domain"
)

var (
	// ErrInsufficientPapers reports fewer than two papers handed to the pair selector.
	ErrInsufficientPapers = errors.New("insufficient papers")
	// ErrInsufficientCategories reports fewer than two distinct categories.
	ErrInsufficientCategories = errors.New("insufficient categories")
	// ErrNoValidPair reports that the drawn category pair has no two distinct papers.
	ErrNoValidPair = errors.New("no valid paper pair")
)

// Candidate is an eligible ticker together with its full paper bucket.
type Candidate struct {
	Ticker string
	Papers []domain.Paper
}

// Selector performs the random draws over an index.
type Selector struct {
	rnd RandomSource
}

// NewSelector wires a random source; nil falls back to DefaultRandomSource.
func NewSelector(rnd RandomSource) *Selector {
	if rnd == nil {
		rnd = DefaultRandomSource()
	}
	return &Selector{rnd: rnd}
}

// IsEligible reports whether two papers with different ids can be drawn
// from two different categories. Every category pair is searched before
// giving up; a single paper carrying both categories is not a witness.
func IsEligible(papers []domain.Paper) bool {
	if distinctIDs(papers) < 2 {
		return false
	}

	groups := groupByCategory(papers)
	if len(groups.keys) < 2 {
		return false
	}

	for i := 0; i < len(groups.keys); i++ {
		for j := i + 1; j < len(groups.keys); j++ {
			first := groups.papers[groups.keys[i]]
			second := groups.papers[groups.keys[j]]
			for _, p1 := range first {
				for _, p2 := range second {
					if p1.ID != p2.ID {
						return true
					}
				}
			}
		}
	}

	return false
}

// EligibleTickers returns the tickers of idx that pass IsEligible, in index order.
func EligibleTickers(idx *Index) []string {
	var eligible []string
	for _, ticker := range idx.tickers {
		if IsEligible(idx.byTicker[ticker]) {
			eligible = append(eligible, ticker)
		}
	}
	return eligible
}

// PickRandomEligibleTicker draws uniformly among eligible tickers. ok is
// false when the corpus has none, which is a normal outcome.
func (s *Selector) PickRandomEligibleTicker(idx *Index) (Candidate, bool) {
	eligible := EligibleTickers(idx)
	if len(eligible) == 0 {
		return Candidate{}, false
	}

	ticker := eligible[s.rnd.IntN(len(eligible))]
	papers, _ := idx.Papers(ticker)
	return Candidate{Ticker: ticker, Papers: papers}, true
}

// SelectPapersFromDifferentCategories shuffles the category keys, commits to
// the first two and draws one of their distinct-paper combinations. It does
// not redraw categories when that pair has no combination.
func (s *Selector) SelectPapersFromDifferentCategories(papers []domain.Paper) (domain.PaperPair, error) {
	if len(papers) < 2 {
		return domain.PaperPair{}, fmt.Errorf("%w: need at least 2, found %d", ErrInsufficientPapers, len(papers))
	}

	groups := groupByCategory(papers)
	if len(groups.keys) < 2 {
		return domain.PaperPair{}, fmt.Errorf("%w: need at least 2, found %q",
			ErrInsufficientCategories, strings.Join(groups.keys, ", "))
	}

	keys := make([]string, len(groups.keys))
	copy(keys, groups.keys)
	shuffle(s.rnd, keys)
	first, second := keys[0], keys[1]

	var pairs []domain.PaperPair
	for _, p1 := range groups.papers[first] {
		for _, p2 := range groups.papers[second] {
			if p1.ID != p2.ID {
				pairs = append(pairs, domain.PaperPair{First: p1, Second: p2})
			}
		}
	}

	if len(pairs) == 0 {
		return domain.PaperPair{}, fmt.Errorf("%w: categories %s, %s", ErrNoValidPair, first, second)
	}

	return pairs[s.rnd.IntN(len(pairs))], nil
}
