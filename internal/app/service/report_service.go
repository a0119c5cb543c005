package service

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ReportService interface {
	// RedemptionReportXLSX renders every redemption against the merchant's
	// deals as a spreadsheet. Only the merchant's owner may export it.
	RedemptionReportXLSX(userID, merchantID uint) ([]byte, error)
}

type reportService struct {
	claimRepo    repository.ClaimRepository
	merchantRepo repository.MerchantRepository
}

func NewReportService(claimRepo repository.ClaimRepository, merchantRepo repository.MerchantRepository) ReportService {
	return &reportService{
		claimRepo:    claimRepo,
		merchantRepo: merchantRepo,
	}
}

func (s *reportService) RedemptionReportXLSX(userID, merchantID uint) ([]byte, error) {
	merchant, err := s.merchantRepo.FindByID(merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	if merchant.UserID != userID {
		logger.Warn("Redemption report export forbidden", map[string]interface{}{
			"merchant_id": merchantID,
			"user_id":     userID,
		})
		return nil, ErrMerchantAccessDenied
	}

	claims, err := s.claimRepo.FindByMerchantID(merchantID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Redemptions"
	f.SetSheetName(f.GetSheetName(0), sheetName)

	headers := []string{"Claim ID", "Deal ID", "Deal Title", "User ID", "Status", "Claimed At"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, claim := range claims {
		row := i + 2
		values := []interface{}{
			claim.ID,
			claim.DealID,
			claim.Deal.Title,
			claim.UserID,
			claim.Status,
			claim.ClaimedAt.Format(time.RFC3339),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell for row %d: %w", row, err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render spreadsheet: %w", err)
	}

	logger.Info("Redemption report generated", map[string]interface{}{
		"merchant_id": merchantID,
		"rows":        strconv.Itoa(len(claims)),
	})
	return buf.Bytes(), nil
}
