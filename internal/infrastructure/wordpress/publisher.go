package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"StockResearch/internal/config"
	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

const postsPath = "/wp-json/wp/v2/posts"

// Publisher creates posts through the WordPress REST API using an application password.
type Publisher struct {
	site        string
	username    string
	appPassword string
	client      *http.Client
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher wires credentials; client defaults to a 30s timeout.
func NewPublisher(cfg config.WordPressConfig, client *http.Client) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Publisher{
		site:        strings.TrimRight(cfg.Site, "/"),
		username:    cfg.Username,
		appPassword: cfg.AppPassword,
		client:      client,
	}
}

type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Status  string `json:"status"`
	Excerpt string `json:"excerpt,omitempty"`
}

type postResponse struct {
	ID     int64  `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

// Publish posts the article and returns the id and link WordPress assigned.
func (p *Publisher) Publish(ctx context.Context, post domain.Post) (domain.PublishedPost, error) {
	if p.site == "" || p.username == "" || p.appPassword == "" {
		return domain.PublishedPost{}, fmt.Errorf("wordpress publisher misconfigured")
	}
	if strings.TrimSpace(post.Title) == "" {
		return domain.PublishedPost{}, fmt.Errorf("post title is empty")
	}

	status := post.Status
	if status == "" {
		status = "draft"
	}

	body, err := json.Marshal(postRequest{
		Title:   post.Title,
		Content: post.Content,
		Status:  status,
		Excerpt: post.Excerpt,
	})
	if err != nil {
		return domain.PublishedPost{}, fmt.Errorf("marshal post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.site+postsPath, bytes.NewReader(body))
	if err != nil {
		return domain.PublishedPost{}, fmt.Errorf("new request: %w", err)
	}
	req.SetBasicAuth(p.username, p.appPassword)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.PublishedPost{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.PublishedPost{}, fmt.Errorf("wordpress error: %s: %s", resp.Status, strings.TrimSpace(string(excerpt)))
	}

	var created postResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return domain.PublishedPost{}, fmt.Errorf("decode response: %w", err)
	}

	return domain.PublishedPost{ID: created.ID, Link: created.Link, Status: created.Status}, nil
}
