package usecase

import (
	"context"
	"sync"
	"time"

	"StockResearch/internal/domain"
)

type fakeSource struct {
	papers []domain.Paper
	err    error
}

func (f fakeSource) LoadPapers(context.Context) ([]domain.Paper, error) {
	return f.papers, f.err
}

type fakeDispatcher struct {
	mu       sync.Mutex
	prompts  []string
	dispatch domain.Dispatch
	result   domain.ResearchResult
	err      error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, prompt string) (domain.Dispatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.dispatch, f.err
}

func (f *fakeDispatcher) Retrieve(_ context.Context, responseID string) (domain.ResearchResult, error) {
	return f.result, f.err
}

type fakeRepository struct {
	saved  []domain.ResearchRequest
	recent []domain.ResearchRequest
	err    error
}

func (f *fakeRepository) SaveRequest(_ context.Context, req domain.ResearchRequest) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, req)
	return nil
}

func (f *fakeRepository) RecentRequests(_ context.Context, limit int) ([]domain.ResearchRequest, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], f.err
	}
	return f.recent, f.err
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Notify(_ context.Context, text string) error {
	f.messages = append(f.messages, text)
	return f.err
}

type fakePublisher struct {
	posts []domain.Post
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, post domain.Post) (domain.PublishedPost, error) {
	if f.err != nil {
		return domain.PublishedPost{}, f.err
	}
	f.posts = append(f.posts, post)
	return domain.PublishedPost{ID: int64(len(f.posts)), Status: post.Status}, nil
}

// scriptedSource replays draws in order and falls back to n-1, which leaves
// a shuffle untouched.
type scriptedSource struct {
	draws []int
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.draws) == 0 {
		return n - 1
	}
	v := s.draws[0]
	s.draws = s.draws[1:]
	if v >= n {
		return n - 1
	}
	return v
}

// fakeDriver runs the job once, synchronously, on Start.
type fakeDriver struct {
	started bool
	stopped bool
}

func (f *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	f.started = true
	job(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC))
	return nil
}

func (f *fakeDriver) Stop(context.Context) error {
	f.stopped = true
	return nil
}
