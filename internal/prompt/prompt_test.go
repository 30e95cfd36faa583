package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"StockResearch/internal/domain"
)

func samplePair() domain.PaperPair {
	return domain.PaperPair{
		First: domain.Paper{
			ID:            "A",
			Title:         "Claims Processing at Scale",
			URL:           "https://arxiv.org/abs/1",
			Categories:    []string{"cs.DB", "econ.GN"},
			PublishedDate: "2024-03-01",
		},
		Second: domain.Paper{
			ID:         "B",
			Title:      "Hospital Pricing",
			URL:        "https://arxiv.org/abs/2",
			Categories: []string{"q-fin.GN"},
		},
	}
}

func TestRenderReplacesEveryOccurrence(t *testing.T) {
	t.Parallel()

	tpl := New("{{STOCK_SYMBOL}}/{{STOCK_SYMBOL}} | {{PAPER1_TITLE}} [{{PAPER1_CATEGORIES}}] {{PAPER1_URL}} {{PAPER1_PUBLISHED_DATE}} | {{PAPER2_TITLE}} [{{PAPER2_CATEGORIES}}] {{PAPER2_URL}}")
	got := tpl.Render("UNH", samplePair())

	want := "UNH/UNH | Claims Processing at Scale [cs.DB, econ.GN] https://arxiv.org/abs/1 2024-03-01 | Hospital Pricing [q-fin.GN] https://arxiv.org/abs/2"
	if got != want {
		t.Fatalf("unexpected render:\n got: %s\nwant: %s", got, want)
	}
}

func TestDefaultTemplateHasNoLeftoverTokens(t *testing.T) {
	t.Parallel()

	tpl := Default()
	if !tpl.HasSymbol() {
		t.Fatalf("default template must mention the stock symbol")
	}
	out := tpl.Render("UNH", samplePair())
	if strings.Contains(out, "{{") {
		t.Fatalf("unreplaced tokens left in default template: %s", out)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "prompt-template.txt")
	if err := os.WriteFile(path, []byte("Research {{STOCK_SYMBOL}}"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}

	tpl, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := tpl.Render("MSFT", samplePair()); got != "Research MSFT" {
		t.Fatalf("unexpected render: %s", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing template")
	}

	if tpl, err := Load(""); err != nil || !tpl.HasSymbol() {
		t.Fatalf("empty path should yield default template, err=%v", err)
	}
}
