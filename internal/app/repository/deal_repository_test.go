package repository

import (
	"testing"
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDealTest(t *testing.T) (*gorm.DB, DealRepository, *model.Merchant) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	user := &model.User{Email: "owner@example.com", PasswordHash: "x", Name: "Owner", Role: model.RoleMerchant}
	require.NoError(t, testDB.Create(user).Error)

	merchant := &model.Merchant{
		UserID:    user.ID,
		Name:      "Desert Tacos",
		Category:  "food",
		Latitude:  33.4484,
		Longitude: -112.0740,
		Address:   "100 N Central Ave, Phoenix, AZ",
		IsActive:  true,
	}
	require.NoError(t, testDB.Create(merchant).Error)

	return testDB, NewDealRepository(testDB), merchant
}

func makeDeal(merchantID uint, start, end time.Time) *model.Deal {
	return &model.Deal{
		MerchantID:      merchantID,
		Title:           "Half-price lunch",
		OriginalPrice:   20,
		DiscountedPrice: 10,
		Category:        "food",
		StartTime:       start,
		EndTime:         end,
		MaxRedemptions:  5,
		IsActive:        true,
	}
}

func TestDealRepository_Create(t *testing.T) {
	testDB, repo, merchant := setupDealTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	deal := makeDeal(merchant.ID, now, now.Add(2*time.Hour))

	err := repo.Create(deal)
	assert.NoError(t, err)
	assert.NotZero(t, deal.ID)
}

func TestDealRepository_FindLive(t *testing.T) {
	testDB, repo, merchant := setupDealTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()

	live := makeDeal(merchant.ID, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, repo.Create(live))

	expired := makeDeal(merchant.ID, now.Add(-3*time.Hour), now.Add(-time.Hour))
	require.NoError(t, repo.Create(expired))

	inactive := makeDeal(merchant.ID, now.Add(-time.Hour), now.Add(time.Hour))
	inactive.IsActive = false
	require.NoError(t, repo.Create(inactive))

	exhausted := makeDeal(merchant.ID, now.Add(-time.Hour), now.Add(time.Hour))
	exhausted.MaxRedemptions = 2
	exhausted.CurrentRedemptions = 2
	require.NoError(t, repo.Create(exhausted))

	found, err := repo.FindLive(now)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, live.ID, found[0].ID)
	// Merchant comes preloaded for geo filtering
	assert.Equal(t, merchant.Name, found[0].Merchant.Name)
}

func TestDealRepository_FindLive_ExcludesInactiveMerchant(t *testing.T) {
	testDB, repo, merchant := setupDealTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	deal := makeDeal(merchant.ID, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, repo.Create(deal))

	found, err := repo.FindLive(now)
	require.NoError(t, err)
	require.Len(t, found, 1)

	// Deactivate the merchant; its deals disappear from discovery
	require.NoError(t, testDB.Model(&model.Merchant{}).
		Where("id = ?", merchant.ID).
		Update("is_active", false).Error)

	found, err = repo.FindLive(now)
	require.NoError(t, err)
	assert.Len(t, found, 0)
}

func TestDealRepository_FindExpired(t *testing.T) {
	testDB, repo, merchant := setupDealTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()

	expired := makeDeal(merchant.ID, now.Add(-3*time.Hour), now.Add(-time.Hour))
	require.NoError(t, repo.Create(expired))

	live := makeDeal(merchant.ID, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, repo.Create(live))

	deactivated := makeDeal(merchant.ID, now.Add(-3*time.Hour), now.Add(-time.Hour))
	deactivated.IsActive = false
	require.NoError(t, repo.Create(deactivated))

	found, err := repo.FindExpired(now)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, expired.ID, found[0].ID)
}

func TestDealRepository_MarkRecurred(t *testing.T) {
	testDB, repo, merchant := setupDealTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	deal := makeDeal(merchant.ID, now.Add(-3*time.Hour), now.Add(-time.Hour))
	deal.IsRecurring = true
	deal.RecurringInterval = model.IntervalDaily
	require.NoError(t, repo.Create(deal))
	require.Nil(t, deal.LastRecurredAt)

	stamp := now.Truncate(time.Second)
	require.NoError(t, repo.MarkRecurred(deal.ID, stamp))

	found, err := repo.FindByID(deal.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastRecurredAt)
	assert.WithinDuration(t, stamp, *found.LastRecurredAt, time.Second)
}

func TestDealRepository_FindByMerchantID(t *testing.T) {
	testDB, repo, merchant := setupDealTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	require.NoError(t, repo.Create(makeDeal(merchant.ID, now, now.Add(time.Hour))))
	require.NoError(t, repo.Create(makeDeal(merchant.ID, now, now.Add(2*time.Hour))))

	found, err := repo.FindByMerchantID(merchant.ID)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = repo.FindByMerchantID(9999)
	require.NoError(t, err)
	assert.Len(t, found, 0)
}

func TestDealRepository_Delete(t *testing.T) {
	testDB, repo, merchant := setupDealTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	deal := makeDeal(merchant.ID, now, now.Add(time.Hour))
	require.NoError(t, repo.Create(deal))

	require.NoError(t, repo.Delete(deal.ID))

	_, err := repo.FindByID(deal.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
