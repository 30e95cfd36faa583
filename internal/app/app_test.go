package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"StockResearch/internal/config"
	"StockResearch/internal/logging"
	"StockResearch/internal/usecase"
)

const corpusJSON = `[
  {"id":"p1","title":"Momentum","url":"u1","categories":["q-fin.PM"],"stocks":["UNH"],"published_date":"2025-06-01"},
  {"id":"p2","title":"Graphs","url":"u2","categories":["cs.LG"],"stocks":["UNH"],"published_date":"2025-06-02"}
]`

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "papers.json")
	if err := os.WriteFile(path, []byte(corpusJSON), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	return config.Config{
		Corpus: config.CorpusConfig{Sources: []config.SourceConfig{
			{Name: "papers", Loader: config.LoaderFile, Path: path},
		}},
		Research: config.ResearchConfig{PairAttempts: 3},
		Webhook:  config.WebhookConfig{LogsDir: filepath.Join(dir, "logs")},
	}
}

func TestApplicationDryRunAndEligibility(t *testing.T) {
	t.Parallel()

	application, err := New(context.Background(), testConfig(t), logging.Discard())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer application.Close()

	req, err := application.Research().Run(context.Background(), usecase.RunOptions{DryRun: true})
	if err != nil {
		t.Fatalf("dry run returned error: %v", err)
	}
	if req.Ticker != "UNH" || req.Prompt == "" {
		t.Fatalf("unexpected request %+v", req)
	}

	summaries, err := application.Eligibility().List(context.Background())
	if err != nil || len(summaries) != 1 {
		t.Fatalf("unexpected eligibility %+v, %v", summaries, err)
	}

	if _, err := application.Research().Run(context.Background(), usecase.RunOptions{}); err == nil {
		t.Fatalf("expected error without openai key")
	}
	if _, err := application.CheckOpenAI(context.Background()); err == nil {
		t.Fatalf("expected error without openai key")
	}
	if _, err := application.History().Recent(context.Background(), 5); err == nil {
		t.Fatalf("expected error without database")
	}
}

func TestApplicationWebhookRouter(t *testing.T) {
	t.Parallel()

	application, err := New(context.Background(), testConfig(t), logging.Discard())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	router, err := application.WebhookRouter()
	if err != nil {
		t.Fatalf("WebhookRouter returned error: %v", err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected health status %d", w.Code)
	}
}

func TestApplicationRunEveryStopsWithContext(t *testing.T) {
	t.Parallel()

	application, err := New(context.Background(), testConfig(t), logging.Discard())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = application.RunEvery(ctx, 0, usecase.RunOptions{DryRun: true})
	if err == nil {
		t.Fatalf("expected error for zero interval")
	}

	if err := application.RunEvery(ctx, 1000, usecase.RunOptions{DryRun: true}); err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("RunEvery returned error: %v", err)
	}
}

func TestNewFailsOnMissingTemplate(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Research.PromptTemplate = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := New(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatalf("expected error for unreadable template")
	}
}
