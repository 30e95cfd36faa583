package wordpress

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"StockResearch/internal/domain"
)

const excerptWords = 55

// DraftFromHTML turns a rendered report into a post. The first h1 becomes the
// title and is dropped from the content; the first paragraph feeds the excerpt.
func DraftFromHTML(raw, fallbackTitle string) (domain.Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return domain.Post{}, fmt.Errorf("parse report: %w", err)
	}

	title := fallbackTitle
	if heading := doc.Find("h1").First(); heading.Length() > 0 {
		if text := collapseSpace(heading.Text()); text != "" {
			title = text
		}
		heading.Remove()
	}

	excerpt := clipWords(collapseSpace(doc.Find("p").First().Text()), excerptWords)

	content, err := doc.Find("body").Html()
	if err != nil {
		return domain.Post{}, fmt.Errorf("render content: %w", err)
	}

	return domain.Post{
		Title:   title,
		Content: strings.TrimSpace(content),
		Excerpt: excerpt,
	}, nil
}

// TextToHTML converts research output into simple HTML. Lines starting with
// one to three '#' become headings, blank lines separate paragraphs.
func TextToHTML(text string) string {
	var (
		out       strings.Builder
		paragraph []string
	)

	flush := func() {
		if len(paragraph) == 0 {
			return
		}
		out.WriteString("<p>")
		out.WriteString(html.EscapeString(strings.Join(paragraph, " ")))
		out.WriteString("</p>\n")
		paragraph = paragraph[:0]
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		if level, heading := headingLevel(line); level > 0 {
			flush()
			fmt.Fprintf(&out, "<h%d>%s</h%d>\n", level, html.EscapeString(heading), level)
			continue
		}
		paragraph = append(paragraph, line)
	}
	flush()

	return out.String()
}

func headingLevel(line string) (int, string) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 3 || level >= len(line) || line[level] != ' ' {
		return 0, ""
	}
	return level, strings.TrimSpace(line[level:])
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clipWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ") + "..."
}
