package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GigaStonks/internal/domain/models"
	domrepo "GigaStonks/internal/domain/repository"
)

// DefaultNewsWindow is the company-news range used when the caller gives none.
const DefaultNewsWindow = 7 * 24 * time.Hour

// ErrMarketStatusUnavailable is returned when no status source is configured.
var ErrMarketStatusUnavailable = errors.New("market status source not configured")

// MarketService fronts the providers' news, profile, social and market-hours endpoints.
type MarketService struct {
	data   domrepo.MarketData
	status domrepo.MarketStatusSource
	now    func() time.Time
}

// NewMarketService builds the service; a nil status source disables MarketStatus.
func NewMarketService(data domrepo.MarketData, status domrepo.MarketStatusSource) *MarketService {
	return &MarketService{data: data, status: status, now: time.Now}
}

func (s *MarketService) MarketNews(ctx context.Context, category string) ([]models.NewsArticle, error) {
	if category == "" {
		category = "general"
	}
	return s.data.MarketNews(ctx, category)
}

// CompanyNews defaults a zero to to now and a zero from to DefaultNewsWindow before to.
func (s *MarketService) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsArticle, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if to.IsZero() {
		to = s.now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultNewsWindow)
	}
	if from.After(to) {
		return nil, fmt.Errorf("time_from %s is after time_to %s", from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	return s.data.CompanyNews(ctx, symbol, from, to)
}

func (s *MarketService) CompanyProfile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	return s.data.CompanyProfile(ctx, symbol)
}

// SocialSentiment defaults a zero from to DefaultNewsWindow before now.
func (s *MarketService) SocialSentiment(ctx context.Context, symbol string, from time.Time) (*models.SocialSentiment, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if from.IsZero() {
		from = s.now().Add(-DefaultNewsWindow)
	}
	return s.data.SocialSentiment(ctx, symbol, from)
}

func (s *MarketService) MarketStatus(ctx context.Context) ([]models.MarketStatus, error) {
	if s.status == nil {
		return nil, ErrMarketStatusUnavailable
	}
	return s.status.MarketStatus(ctx)
}
