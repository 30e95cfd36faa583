package domain

// Paper is a research paper tagged with subject categories and stock tickers.
type Paper struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Categories    []string `json:"categories"`
	Tickers       []string `json:"stocks"`
	PublishedDate string   `json:"published_date"`
}

// PaperPair holds two distinct papers drawn from two different categories.
type PaperPair struct {
	First  Paper
	Second Paper
}

// TickerSummary describes an eligible ticker for listings.
type TickerSummary struct {
	Ticker     string
	Papers     int
	Categories []string
}
