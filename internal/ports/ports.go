package ports

import (
	"context"
	"time"

	"StockResearch/internal/domain"
)

// CorpusSource loads the full paper corpus for one invocation.
type CorpusSource interface {
	LoadPapers(ctx context.Context) ([]domain.Paper, error)
}

// ResearchDispatcher hands prompts to the long-running research service.
type ResearchDispatcher interface {
	Dispatch(ctx context.Context, prompt string) (domain.Dispatch, error)
	Retrieve(ctx context.Context, responseID string) (domain.ResearchResult, error)
}

// RequestRepository persists dispatched research requests for audit.
type RequestRepository interface {
	SaveRequest(ctx context.Context, req domain.ResearchRequest) error
	RecentRequests(ctx context.Context, limit int) ([]domain.ResearchRequest, error)
}

// Publisher posts articles to the blog.
type Publisher interface {
	Publish(ctx context.Context, post domain.Post) (domain.PublishedPost, error)
}

// Notifier streams short status messages to Telegram or other channels.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// CallbackStore persists inbound webhook callbacks.
type CallbackStore interface {
	Save(ctx context.Context, record domain.CallbackRecord) (string, error)
	List(ctx context.Context) ([]domain.CallbackFile, error)
	Location() string
}

// Scheduler controls when jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
