package service

import (
	"strings"
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/geo"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
)

// DefaultRadiusKm is used when a located request does not specify a radius.
const DefaultRadiusKm = 50.0

type DiscoveryOptions struct {
	Origin      *geo.Point // nil when the requester has no location
	RadiusKm    float64    // defaults to DefaultRadiusKm
	ExploreMode bool       // bypasses region gating and radius filtering
	Query       string     // case-insensitive substring search
}

type DiscoveryService interface {
	// FindVisibleDeals returns the live deals visible to a requester.
	// Ordering is stable within a query; callers sort client-side.
	FindVisibleDeals(opts DiscoveryOptions) ([]model.Deal, error)
}

type discoveryService struct {
	dealRepo   repository.DealRepository
	regionGate RegionGateService
	now        func() time.Time
}

func NewDiscoveryService(dealRepo repository.DealRepository, regionGate RegionGateService, clock ...func() time.Time) DiscoveryService {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	return &discoveryService{
		dealRepo:   dealRepo,
		regionGate: regionGate,
		now:        now,
	}
}

func (s *discoveryService) FindVisibleDeals(opts DiscoveryOptions) ([]model.Deal, error) {
	logger.Debug("Finding visible deals", map[string]interface{}{
		"has_origin":   opts.Origin != nil,
		"radius_km":    opts.RadiusKm,
		"explore_mode": opts.ExploreMode,
		"query":        opts.Query,
	})

	deals, err := s.dealRepo.FindLive(s.now())
	if err != nil {
		logger.Error("Failed to fetch live deals for discovery", err)
		return nil, err
	}

	// Text search is independent of and applied before geo filtering.
	if opts.Query != "" {
		deals = filterByQuery(deals, opts.Query)
	}

	// Explore mode skips geo filtering entirely; no location means there is
	// nothing to geo-filter with.
	if opts.ExploreMode || opts.Origin == nil {
		logger.Info("Visible deals resolved without geo filter", map[string]interface{}{
			"count":        len(deals),
			"explore_mode": opts.ExploreMode,
		})
		return deals, nil
	}

	origin := *opts.Origin

	if region, known := geo.RegionOf(origin); known {
		enabled, err := s.regionGate.IsEnabled(string(region))
		if err != nil {
			// Gate lookup failures only delay visibility changes; fall through
			// to radius filtering rather than failing the page.
			logger.Error("Region gate lookup failed, continuing with radius filter", err, map[string]interface{}{
				"region": region,
			})
		} else if !enabled {
			logger.Info("Discovery blocked by region gate", map[string]interface{}{
				"region": region,
			})
			return []model.Deal{}, nil
		}
	}
	// Unknown regions carry no regional restriction.

	radius := opts.RadiusKm
	if radius <= 0 {
		radius = DefaultRadiusKm
	}

	visible := make([]model.Deal, 0, len(deals))
	for _, deal := range deals {
		merchantPoint := geo.Point{
			Latitude:  deal.Merchant.Latitude,
			Longitude: deal.Merchant.Longitude,
		}
		if geo.IsWithinRadius(origin, merchantPoint, radius) {
			visible = append(visible, deal)
		}
	}

	logger.Info("Visible deals resolved", map[string]interface{}{
		"count":     len(visible),
		"radius_km": radius,
	})
	return visible, nil
}

// filterByQuery keeps deals whose title, description, category, merchant name
// or merchant address contains the query, case-insensitively.
func filterByQuery(deals []model.Deal, query string) []model.Deal {
	needle := strings.ToLower(query)

	matched := make([]model.Deal, 0, len(deals))
	for _, deal := range deals {
		haystacks := []string{
			deal.Title,
			deal.Description,
			deal.Category,
			deal.Merchant.Name,
			deal.Merchant.Category,
			deal.Merchant.Address,
		}
		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), needle) {
				matched = append(matched, deal)
				break
			}
		}
	}
	return matched
}
