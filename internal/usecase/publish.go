package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

const defaultPostTitle = "Research report"

// ErrResearchNotReady reports a research response that has not completed yet.
var ErrResearchNotReady = errors.New("research response not completed")

// PublishDeps wires the blog adapter and report formatting.
type PublishDeps struct {
	Publisher ports.Publisher
	Retriever ports.ResearchDispatcher
	// Draft turns report HTML into a post, using fallbackTitle when the report has none.
	Draft func(html, fallbackTitle string) (domain.Post, error)
	// Render converts research text output to HTML.
	Render func(text string) string
	Logger *slog.Logger
}

// PublishOptions selects the report source. Exactly one of File and ResponseID is set.
type PublishOptions struct {
	File       string
	ResponseID string
	Title      string
	Status     string
}

// Publish posts a finished report to the blog.
type Publish struct {
	publisher ports.Publisher
	retriever ports.ResearchDispatcher
	draft     func(string, string) (domain.Post, error)
	render    func(string) string
	log       *slog.Logger
}

// NewPublish constructs the publishing use case.
func NewPublish(deps PublishDeps) *Publish {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Publish{
		publisher: deps.Publisher,
		retriever: deps.Retriever,
		draft:     deps.Draft,
		render:    deps.Render,
		log:       deps.Logger,
	}
}

// Run builds the post from the selected source and publishes it (as a draft by default).
func (p *Publish) Run(ctx context.Context, opts PublishOptions) (domain.PublishedPost, error) {
	if p.publisher == nil || p.draft == nil || p.render == nil {
		return domain.PublishedPost{}, fmt.Errorf("publisher not configured")
	}
	if (opts.File == "") == (opts.ResponseID == "") {
		return domain.PublishedPost{}, fmt.Errorf("exactly one of file or response id is required")
	}

	var (
		html string
		err  error
	)
	if opts.File != "" {
		html, err = p.fromFile(opts.File)
	} else {
		html, err = p.fromResponse(ctx, opts.ResponseID)
	}
	if err != nil {
		return domain.PublishedPost{}, err
	}

	post, err := p.draft(html, defaultPostTitle)
	if err != nil {
		return domain.PublishedPost{}, fmt.Errorf("draft post: %w", err)
	}
	if opts.Title != "" {
		post.Title = opts.Title
	}
	post.Status = opts.Status
	if post.Status == "" {
		post.Status = "draft"
	}

	published, err := p.publisher.Publish(ctx, post)
	if err != nil {
		return domain.PublishedPost{}, fmt.Errorf("publish post: %w", err)
	}
	p.log.Info("post published", "id", published.ID, "status", published.Status, "link", published.Link)
	return published, nil
}

func (p *Publish) fromFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return string(raw), nil
	default:
		return p.render(string(raw)), nil
	}
}

func (p *Publish) fromResponse(ctx context.Context, responseID string) (string, error) {
	if p.retriever == nil {
		return "", fmt.Errorf("research retriever not configured")
	}

	result, err := p.retriever.Retrieve(ctx, responseID)
	if err != nil {
		return "", fmt.Errorf("retrieve research: %w", err)
	}
	if result.Status != "completed" {
		return "", fmt.Errorf("%w: %s is %s", ErrResearchNotReady, responseID, result.Status)
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("research %s has no output text", responseID)
	}
	return p.render(result.Text), nil
}
