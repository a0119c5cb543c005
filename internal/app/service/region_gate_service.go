package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	appRedis "github.com/nearbuy/nearbuy-backend/pkg/redis"
	"gorm.io/gorm"
)

type RegionGateService interface {
	ListGates() ([]model.RegionGate, error)
	// SetGate flips a region's gate and invalidates cached reads.
	SetGate(region string, enabled bool) (*model.RegionGate, error)
	// IsEnabled reports whether discovery is open for the region. Reads go
	// through a cache with a short TTL; a missing gate row means enabled.
	IsEnabled(region string) (bool, error)
}

type cachedGate struct {
	enabled   bool
	expiresAt time.Time
}

type regionGateService struct {
	gateRepo repository.RegionGateRepository
	cacheTTL time.Duration
	useRedis bool
	now      func() time.Time

	mu    sync.RWMutex
	local map[string]cachedGate
}

// NewRegionGateService builds the gate service. With useRedis the cache lives
// in Redis; otherwise a per-process map is used. Either way staleness is
// bounded by cacheTTL and writes invalidate eagerly.
func NewRegionGateService(gateRepo repository.RegionGateRepository, cacheTTL time.Duration, useRedis bool, clock ...func() time.Time) RegionGateService {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	return &regionGateService{
		gateRepo: gateRepo,
		cacheTTL: cacheTTL,
		useRedis: useRedis,
		now:      now,
		local:    make(map[string]cachedGate),
	}
}

func (s *regionGateService) ListGates() ([]model.RegionGate, error) {
	gates, err := s.gateRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list region gates", err)
		return nil, err
	}
	return gates, nil
}

func (s *regionGateService) SetGate(region string, enabled bool) (*model.RegionGate, error) {
	logger.Info("Setting region gate", map[string]interface{}{
		"region":  region,
		"enabled": enabled,
	})

	gate, err := s.gateRepo.Upsert(region, enabled)
	if err != nil {
		logger.Error("Failed to set region gate", err, map[string]interface{}{
			"region": region,
		})
		return nil, err
	}

	s.invalidate(region)

	logger.Info("Region gate updated", map[string]interface{}{
		"region":  gate.Region,
		"enabled": gate.Enabled,
	})
	return gate, nil
}

func (s *regionGateService) IsEnabled(region string) (bool, error) {
	if enabled, found := s.cachedRead(region); found {
		return enabled, nil
	}

	gate, err := s.gateRepo.FindByRegion(region)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No gate row: the region is not restricted.
			s.cacheWrite(region, true)
			return true, nil
		}
		return false, err
	}

	s.cacheWrite(region, gate.Enabled)
	return gate.Enabled, nil
}

func (s *regionGateService) cachedRead(region string) (enabled, found bool) {
	if s.useRedis {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		enabled, found, err := appRedis.GetRegionGate(ctx, region)
		if err != nil {
			return false, false
		}
		return enabled, found
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.local[region]
	if !ok || s.now().After(entry.expiresAt) {
		return false, false
	}
	return entry.enabled, true
}

func (s *regionGateService) cacheWrite(region string, enabled bool) {
	if s.useRedis {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := appRedis.SetRegionGate(ctx, region, enabled, s.cacheTTL); err != nil {
			logger.Warn("Region gate cache write failed", map[string]interface{}{
				"region": region,
			})
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[region] = cachedGate{
		enabled:   enabled,
		expiresAt: s.now().Add(s.cacheTTL),
	}
}

func (s *regionGateService) invalidate(region string) {
	if s.useRedis {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := appRedis.InvalidateRegionGate(ctx, region); err != nil {
			logger.Warn("Region gate cache invalidation failed", map[string]interface{}{
				"region": region,
			})
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.local, region)
}
