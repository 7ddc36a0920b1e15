package service

import (
	"context"
	"fmt"

	"github.com/konutdata/hpi-processor/internal/core"
	"github.com/konutdata/hpi-processor/internal/domain/model"
)

// HousingServiceOptions groups dependencies for HousingService.
type HousingServiceOptions struct {
	Repo core.HousingRepository
}

// HousingService serves the read side of the housing price index dataset.
type HousingService struct {
	repo core.HousingRepository
}

// NewHousingService constructs a new HousingService.
func NewHousingService(opts HousingServiceOptions) *HousingService {
	return &HousingService{repo: opts.Repo}
}

// List returns housing records matching the filter, newest first.
func (s *HousingService) List(ctx context.Context, filter model.HousingFilter) ([]*model.HousingRecord, error) {
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list housing records: %w", err)
	}
	return records, nil
}

// Stats returns the KPI block for one (location, category) series. A series
// with no records surfaces data-layer ErrNoHousingData through the wrap.
func (s *HousingService) Stats(ctx context.Context, location, category string) (*model.HousingStats, error) {
	stats, err := s.repo.Stats(ctx, location, category)
	if err != nil {
		return nil, fmt.Errorf("housing stats for %s/%s: %w", location, category, err)
	}
	return stats, nil
}
