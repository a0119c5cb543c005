package service

import (
	"testing"
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type dealServiceFixture struct {
	testDB   *gorm.DB
	svc      DealService
	owner    *model.User
	stranger *model.User
	merchant *model.Merchant
	now      time.Time
}

func setupDealServiceTest(t *testing.T) *dealServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "x", Name: "Owner", Role: model.RoleMerchant}
	require.NoError(t, testDB.Create(owner).Error)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "x", Name: "Stranger", Role: model.RoleMerchant}
	require.NoError(t, testDB.Create(stranger).Error)

	merchant := &model.Merchant{UserID: owner.ID, Name: "Deal Test Shop", Latitude: 33.45, Longitude: -112.07, IsActive: true}
	require.NoError(t, testDB.Create(merchant).Error)

	now := time.Now()
	dealRepo := repository.NewDealRepository(testDB)
	merchantRepo := repository.NewMerchantRepository(testDB)
	svc := NewDealService(dealRepo, merchantRepo, func() time.Time { return now })

	return &dealServiceFixture{
		testDB:   testDB,
		svc:      svc,
		owner:    owner,
		stranger: stranger,
		merchant: merchant,
		now:      now,
	}
}

func (f *dealServiceFixture) validDeal() *model.Deal {
	return &model.Deal{
		MerchantID:      f.merchant.ID,
		Title:           "Two-for-one burritos",
		OriginalPrice:   16,
		DiscountedPrice: 8,
		Category:        "food",
		StartTime:       f.now,
		EndTime:         f.now.Add(4 * time.Hour),
		MaxRedemptions:  20,
	}
}

func TestDealService_CreateDeal(t *testing.T) {
	f := setupDealServiceTest(t)
	defer db.CleanupTestDB(f.testDB)

	deal := f.validDeal()
	err := f.svc.CreateDeal(f.owner.ID, deal)
	require.NoError(t, err)
	assert.NotZero(t, deal.ID)
	assert.True(t, deal.IsActive)
	assert.Equal(t, 0, deal.CurrentRedemptions)
	assert.InDelta(t, 50.0, deal.DiscountPercentage, 0.01)
}

func TestDealService_CreateDeal_Validation(t *testing.T) {
	f := setupDealServiceTest(t)
	defer db.CleanupTestDB(f.testDB)

	tests := []struct {
		name    string
		mutate  func(*model.Deal)
		wantErr error
	}{
		{
			name:    "Discounted price above original",
			mutate:  func(d *model.Deal) { d.DiscountedPrice = 20 },
			wantErr: ErrInvalidPricing,
		},
		{
			name:    "Discounted price equal to original",
			mutate:  func(d *model.Deal) { d.DiscountedPrice = d.OriginalPrice },
			wantErr: ErrInvalidPricing,
		},
		{
			name:    "End before start",
			mutate:  func(d *model.Deal) { d.EndTime = d.StartTime.Add(-time.Hour) },
			wantErr: ErrInvalidTimeWindow,
		},
		{
			name:    "Zero redemptions",
			mutate:  func(d *model.Deal) { d.MaxRedemptions = 0 },
			wantErr: ErrInvalidRedemptions,
		},
		{
			name: "Recurring without interval",
			mutate: func(d *model.Deal) {
				d.IsRecurring = true
				d.RecurringInterval = ""
			},
			wantErr: ErrInvalidInterval,
		},
		{
			name: "Recurring with bogus interval",
			mutate: func(d *model.Deal) {
				d.IsRecurring = true
				d.RecurringInterval = "fortnightly"
			},
			wantErr: ErrInvalidInterval,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deal := f.validDeal()
			tt.mutate(deal)

			err := f.svc.CreateDeal(f.owner.ID, deal)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDealService_CreateDeal_Ownership(t *testing.T) {
	f := setupDealServiceTest(t)
	defer db.CleanupTestDB(f.testDB)

	deal := f.validDeal()
	err := f.svc.CreateDeal(f.stranger.ID, deal)
	assert.ErrorIs(t, err, ErrDealAccessDenied)

	deal = f.validDeal()
	deal.MerchantID = 9999
	err = f.svc.CreateDeal(f.owner.ID, deal)
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}

func TestDealService_UpdateDeal_PreservesAccounting(t *testing.T) {
	f := setupDealServiceTest(t)
	defer db.CleanupTestDB(f.testDB)

	deal := f.validDeal()
	require.NoError(t, f.svc.CreateDeal(f.owner.ID, deal))

	// Simulate redemptions accrued through claims
	require.NoError(t, f.testDB.Model(&model.Deal{}).
		Where("id = ?", deal.ID).
		Update("current_redemptions", 5).Error)

	update := f.validDeal()
	update.ID = deal.ID
	update.Title = "Renamed deal"
	update.CurrentRedemptions = 0 // must be ignored
	update.IsActive = true

	require.NoError(t, f.svc.UpdateDeal(f.owner.ID, update))

	var stored model.Deal
	require.NoError(t, f.testDB.First(&stored, deal.ID).Error)
	assert.Equal(t, "Renamed deal", stored.Title)
	assert.Equal(t, 5, stored.CurrentRedemptions)
}

func TestDealService_UpdateDeal_Forbidden(t *testing.T) {
	f := setupDealServiceTest(t)
	defer db.CleanupTestDB(f.testDB)

	deal := f.validDeal()
	require.NoError(t, f.svc.CreateDeal(f.owner.ID, deal))

	update := f.validDeal()
	update.ID = deal.ID
	err := f.svc.UpdateDeal(f.stranger.ID, update)
	assert.ErrorIs(t, err, ErrDealAccessDenied)
}

func TestDealService_DeleteDeal(t *testing.T) {
	f := setupDealServiceTest(t)
	defer db.CleanupTestDB(f.testDB)

	deal := f.validDeal()
	require.NoError(t, f.svc.CreateDeal(f.owner.ID, deal))

	err := f.svc.DeleteDeal(f.stranger.ID, deal.ID)
	assert.ErrorIs(t, err, ErrDealAccessDenied)

	require.NoError(t, f.svc.DeleteDeal(f.owner.ID, deal.ID))

	_, err = f.svc.GetDealByID(deal.ID)
	assert.ErrorIs(t, err, ErrDealNotFound)
}

func TestDealService_RepostDeal(t *testing.T) {
	f := setupDealServiceTest(t)
	defer db.CleanupTestDB(f.testDB)

	deal := f.validDeal()
	require.NoError(t, f.svc.CreateDeal(f.owner.ID, deal))
	require.NoError(t, f.testDB.Model(&model.Deal{}).
		Where("id = ?", deal.ID).
		Update("current_redemptions", 20).Error)

	start := f.now.Add(time.Hour)
	end := start.Add(6 * time.Hour)

	successor, err := f.svc.RepostDeal(f.owner.ID, deal.ID, start, end)
	require.NoError(t, err)
	assert.NotEqual(t, deal.ID, successor.ID)
	assert.Equal(t, deal.Title, successor.Title)
	assert.Equal(t, 0, successor.CurrentRedemptions)
	assert.WithinDuration(t, start, successor.StartTime, time.Second)
	assert.WithinDuration(t, end, successor.EndTime, time.Second)

	// Original is stamped
	var original model.Deal
	require.NoError(t, f.testDB.First(&original, deal.ID).Error)
	assert.NotNil(t, original.LastRecurredAt)
}

func TestDealService_RepostDeal_InvalidWindow(t *testing.T) {
	f := setupDealServiceTest(t)
	defer db.CleanupTestDB(f.testDB)

	deal := f.validDeal()
	require.NoError(t, f.svc.CreateDeal(f.owner.ID, deal))

	_, err := f.svc.RepostDeal(f.owner.ID, deal.ID, f.now.Add(time.Hour), f.now)
	assert.ErrorIs(t, err, ErrInvalidTimeWindow)
}
