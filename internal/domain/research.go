package domain

import "time"

// RequestStatus enumerates research request milestones.
type RequestStatus string

const (
	StatusDrafted    RequestStatus = "drafted"
	StatusDispatched RequestStatus = "dispatched"
)

// ResearchRequest captures one prompt built for a ticker and its dispatch outcome.
type ResearchRequest struct {
	ID         string
	Ticker     string
	Pair       PaperPair
	Prompt     string
	ResponseID string
	Status     RequestStatus
	CreatedAt  time.Time
}

// Dispatch is the acknowledgement returned by the research service.
type Dispatch struct {
	ResponseID string
	Status     string
}

// ResearchResult is the text produced by a finished research response.
type ResearchResult struct {
	ResponseID string
	Status     string
	Text       string
}
