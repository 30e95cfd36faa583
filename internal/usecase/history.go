package usecase

import (
	"context"
	"fmt"

	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

// History reads back dispatched research requests.
type History struct {
	repository ports.RequestRepository
}

// NewHistory wires the request repository.
func NewHistory(repository ports.RequestRepository) *History {
	return &History{repository: repository}
}

// Recent returns up to limit requests, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]domain.ResearchRequest, error) {
	if h.repository == nil {
		return nil, fmt.Errorf("request repository not configured (set database.dsn)")
	}

	requests, err := h.repository.RecentRequests(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return requests, nil
}
