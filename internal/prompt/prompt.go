// Package prompt renders research prompts from token templates.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"StockResearch/internal/domain"
)

// Token names recognised in templates.
const (
	TokenStockSymbol = "{{STOCK_SYMBOL}}"
)

//go:embed default_template.txt
var defaultTemplate string

// Template is a prompt body with {{TOKEN}} placeholders.
type Template struct {
	body string
}

// New wraps a template body.
func New(body string) Template {
	return Template{body: body}
}

// Default returns the built-in research template.
func Default() Template {
	return Template{body: defaultTemplate}
}

// Load reads a template from path; an empty path yields Default.
func Load(path string) (Template, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read prompt template: %w", err)
	}
	return Template{body: string(raw)}, nil
}

// HasSymbol reports whether the template mentions the stock symbol at all.
func (t Template) HasSymbol() bool {
	return strings.Contains(t.body, TokenStockSymbol)
}

// Render replaces every token occurrence with the ticker and paper fields.
func (t Template) Render(ticker string, pair domain.PaperPair) string {
	replacer := strings.NewReplacer(
		TokenStockSymbol, ticker,
		"{{PAPER1_TITLE}}", pair.First.Title,
		"{{PAPER1_CATEGORIES}}", strings.Join(pair.First.Categories, ", "),
		"{{PAPER1_URL}}", pair.First.URL,
		"{{PAPER1_PUBLISHED_DATE}}", pair.First.PublishedDate,
		"{{PAPER2_TITLE}}", pair.Second.Title,
		"{{PAPER2_CATEGORIES}}", strings.Join(pair.Second.Categories, ", "),
		"{{PAPER2_URL}}", pair.Second.URL,
		"{{PAPER2_PUBLISHED_DATE}}", pair.Second.PublishedDate,
	)
	return replacer.Replace(t.body)
}
