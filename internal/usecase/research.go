package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
	"StockResearch/internal/prompt"
	"StockResearch/internal/selection"
)

var (
	// ErrNoEligibleTicker reports a corpus where no ticker can yield a cross-category pair.
	ErrNoEligibleTicker = errors.New("no eligible ticker in corpus")
	// ErrTickerNotEligible reports a requested ticker that is unknown or not eligible.
	ErrTickerNotEligible = errors.New("ticker not eligible")
)

// ResearchDeps wires adapters into the research use case. Repository and
// Notifier are optional; Dispatcher is only needed outside dry runs.
type ResearchDeps struct {
	Source       ports.CorpusSource
	Dispatcher   ports.ResearchDispatcher
	Repository   ports.RequestRepository
	Notifier     ports.Notifier
	Selector     *selection.Selector
	Template     prompt.Template
	PairAttempts int
	Logger       *slog.Logger
	NewID        func() string
	Now          func() time.Time
}

// RunOptions narrows a single research run.
type RunOptions struct {
	Ticker string
	DryRun bool
}

// Research picks a ticker and two papers, renders the prompt and dispatches it.
type Research struct {
	source       ports.CorpusSource
	dispatcher   ports.ResearchDispatcher
	repository   ports.RequestRepository
	notifier     ports.Notifier
	selector     *selection.Selector
	template     prompt.Template
	pairAttempts int
	log          *slog.Logger
	newID        func() string
	now          func() time.Time
}

// NewResearch constructs the research use case.
func NewResearch(deps ResearchDeps) *Research {
	if deps.Selector == nil {
		deps.Selector = selection.NewSelector(nil)
	}
	if deps.PairAttempts < 1 {
		deps.PairAttempts = 1
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Research{
		source:       deps.Source,
		dispatcher:   deps.Dispatcher,
		repository:   deps.Repository,
		notifier:     deps.Notifier,
		selector:     deps.Selector,
		template:     deps.Template,
		pairAttempts: deps.PairAttempts,
		log:          deps.Logger,
		newID:        deps.NewID,
		now:          deps.Now,
	}
}

// Run performs one research request. With DryRun the rendered prompt is
// returned without contacting the research service.
func (r *Research) Run(ctx context.Context, opts RunOptions) (domain.ResearchRequest, error) {
	if r.source == nil {
		return domain.ResearchRequest{}, fmt.Errorf("corpus source not configured")
	}
	if !opts.DryRun && r.dispatcher == nil {
		return domain.ResearchRequest{}, fmt.Errorf("research dispatcher not configured")
	}

	papers, err := r.source.LoadPapers(ctx)
	if err != nil {
		return domain.ResearchRequest{}, fmt.Errorf("load corpus: %w", err)
	}

	idx := selection.BuildIndex(papers)
	r.log.Info("corpus loaded", "papers", len(papers), "tickers", idx.Len())

	candidate, err := r.candidate(idx, strings.TrimSpace(opts.Ticker))
	if err != nil {
		return domain.ResearchRequest{}, err
	}
	r.log.Info("ticker selected",
		"ticker", candidate.Ticker,
		"papers", len(candidate.Papers),
		"categories", strings.Join(selection.Categories(candidate.Papers), ", "))

	pair, err := r.selectPair(candidate.Papers)
	if err != nil {
		return domain.ResearchRequest{}, fmt.Errorf("ticker %s: %w", candidate.Ticker, err)
	}
	r.log.Info("papers selected",
		"first", pair.First.Title, "first_published", pair.First.PublishedDate,
		"second", pair.Second.Title, "second_published", pair.Second.PublishedDate)

	req := domain.ResearchRequest{
		ID:        r.newID(),
		Ticker:    candidate.Ticker,
		Pair:      pair,
		Prompt:    r.template.Render(candidate.Ticker, pair),
		Status:    domain.StatusDrafted,
		CreatedAt: r.now().UTC(),
	}
	if opts.DryRun {
		return req, nil
	}

	dispatch, err := r.dispatcher.Dispatch(ctx, req.Prompt)
	if err != nil {
		return req, fmt.Errorf("dispatch research for %s: %w", req.Ticker, err)
	}
	req.ResponseID = dispatch.ResponseID
	req.Status = domain.StatusDispatched
	r.log.Info("research dispatched", "ticker", req.Ticker, "response_id", req.ResponseID, "status", dispatch.Status)

	if r.repository != nil {
		if err := r.repository.SaveRequest(ctx, req); err != nil {
			return req, fmt.Errorf("persist request %s: %w", req.ID, err)
		}
	}

	if r.notifier != nil {
		text := fmt.Sprintf("Research dispatched for %s\n1. %s\n2. %s\nresponse: %s",
			req.Ticker, pair.First.Title, pair.Second.Title, req.ResponseID)
		if err := r.notifier.Notify(ctx, text); err != nil {
			r.log.Warn("notify research", "error", err)
		}
	}

	return req, nil
}

func (r *Research) candidate(idx *selection.Index, ticker string) (selection.Candidate, error) {
	if ticker == "" {
		candidate, ok := r.selector.PickRandomEligibleTicker(idx)
		if !ok {
			return selection.Candidate{}, ErrNoEligibleTicker
		}
		return candidate, nil
	}

	papers, ok := idx.Papers(ticker)
	if !ok {
		return selection.Candidate{}, fmt.Errorf("%w: %s has no papers", ErrTickerNotEligible, ticker)
	}
	if !selection.IsEligible(papers) {
		return selection.Candidate{}, fmt.Errorf("%w: %s has no cross-category pair", ErrTickerNotEligible, ticker)
	}
	return selection.Candidate{Ticker: ticker, Papers: papers}, nil
}

// selectPair redraws only when the drawn category pair had no valid combination.
func (r *Research) selectPair(papers []domain.Paper) (domain.PaperPair, error) {
	var lastErr error
	for attempt := 1; attempt <= r.pairAttempts; attempt++ {
		pair, err := r.selector.SelectPapersFromDifferentCategories(papers)
		if err == nil {
			return pair, nil
		}
		if !errors.Is(err, selection.ErrNoValidPair) {
			return domain.PaperPair{}, fmt.Errorf("select papers: %w", err)
		}
		r.log.Debug("category pair without valid papers, redrawing", "attempt", attempt, "error", err)
		lastErr = err
	}
	return domain.PaperPair{}, fmt.Errorf("select papers after %d attempts: %w", r.pairAttempts, lastErr)
}
