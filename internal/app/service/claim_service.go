package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrAlreadyClaimed = errors.New("deal already claimed by this user")
	ErrDealExhausted  = errors.New("deal redemption limit reached")
	ErrDealInactive   = errors.New("deal is not live")
)

type ClaimService interface {
	// Claim redeems a deal for a user. It fails with ErrDealNotFound,
	// ErrDealInactive, ErrAlreadyClaimed or ErrDealExhausted; on success the
	// returned claim is permanent.
	Claim(userID, dealID uint) (*model.Claim, error)
	GetUserClaims(userID uint) ([]model.Claim, error)
}

type claimService struct {
	dealRepo  repository.DealRepository
	claimRepo repository.ClaimRepository
	db        *gorm.DB
	now       func() time.Time
}

func NewClaimService(dealRepo repository.DealRepository, claimRepo repository.ClaimRepository, db *gorm.DB, clock ...func() time.Time) ClaimService {
	now := time.Now
	if len(clock) > 0 && clock[0] != nil {
		now = clock[0]
	}
	return &claimService{
		dealRepo:  dealRepo,
		claimRepo: claimRepo,
		db:        db,
		now:       now,
	}
}

// Claim ordering: insert the claim row first, then take a redemption slot with
// a conditional increment, all inside one transaction. The unique
// (user_id, deal_id) index is the authority for duplicate claims under races,
// and a zero-row increment means the pool was exhausted; either failure rolls
// the whole transaction back, so the counter never needs compensating.
func (s *claimService) Claim(userID, dealID uint) (*model.Claim, error) {
	now := s.now()

	logger.Info("Processing claim", map[string]interface{}{
		"user_id": userID,
		"deal_id": dealID,
	})

	// Fast-fail checks, no side effects.
	deal, err := s.dealRepo.FindByID(dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Claim rejected: deal not found", map[string]interface{}{
				"deal_id": dealID,
			})
			return nil, ErrDealNotFound
		}
		logger.Error("Failed to fetch deal for claim", err, map[string]interface{}{
			"deal_id": dealID,
		})
		return nil, err
	}

	if !deal.IsLive(now) {
		if deal.CurrentRedemptions >= deal.MaxRedemptions {
			logger.Warn("Claim rejected: deal exhausted", map[string]interface{}{
				"deal_id":             dealID,
				"current_redemptions": deal.CurrentRedemptions,
				"max_redemptions":     deal.MaxRedemptions,
			})
			return nil, ErrDealExhausted
		}
		logger.Warn("Claim rejected: deal not live", map[string]interface{}{
			"deal_id":   dealID,
			"is_active": deal.IsActive,
			"end_time":  deal.EndTime,
		})
		return nil, ErrDealInactive
	}

	if _, err := s.claimRepo.FindByUserAndDeal(userID, dealID); err == nil {
		logger.Warn("Claim rejected: already claimed", map[string]interface{}{
			"user_id": userID,
			"deal_id": dealID,
		})
		return nil, ErrAlreadyClaimed
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	claim := &model.Claim{
		UserID:    userID,
		DealID:    dealID,
		Status:    model.ClaimStatusRedeemed,
		ClaimedAt: now,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during claim, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
				"deal_id": dealID,
			})
		}
	}()

	if err := tx.Create(claim).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			// Lost a race against another claim from the same user.
			logger.Warn("Claim rejected by uniqueness constraint", map[string]interface{}{
				"user_id": userID,
				"deal_id": dealID,
			})
			return nil, ErrAlreadyClaimed
		}
		logger.Error("Failed to insert claim", err, map[string]interface{}{
			"user_id": userID,
			"deal_id": dealID,
		})
		return nil, err
	}

	// The one atomic write that enforces the redemption ceiling. Two
	// concurrent claims against the last slot cannot both match the WHERE.
	result := tx.Model(&model.Deal{}).
		Where("id = ? AND current_redemptions < max_redemptions", dealID).
		UpdateColumn("current_redemptions", gorm.Expr("current_redemptions + ?", 1))
	if result.Error != nil {
		tx.Rollback()
		logger.Error("Failed to increment redemptions", result.Error, map[string]interface{}{
			"deal_id": dealID,
		})
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		logger.Warn("Claim rejected: redemption pool exhausted under race", map[string]interface{}{
			"user_id": userID,
			"deal_id": dealID,
		})
		return nil, ErrDealExhausted
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit claim transaction", err, map[string]interface{}{
			"user_id": userID,
			"deal_id": dealID,
		})
		return nil, err
	}

	logger.Info("Claim succeeded", map[string]interface{}{
		"claim_id": claim.ID,
		"user_id":  userID,
		"deal_id":  dealID,
	})
	return claim, nil
}

func (s *claimService) GetUserClaims(userID uint) ([]model.Claim, error) {
	claims, err := s.claimRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user claims", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return claims, nil
}

// isUniqueViolation detects a unique-constraint rejection from postgres
// (23505) or from the sqlite test database.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
