package service

import (
	"testing"

	"github.com/nearbuy/nearbuy-backend/internal/app/model"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupMerchantServiceTest(t *testing.T) (*gorm.DB, MerchantService, *model.User, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "x", Name: "Owner", Role: model.RoleMerchant}
	require.NoError(t, testDB.Create(owner).Error)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "x", Name: "Stranger", Role: model.RoleMerchant}
	require.NoError(t, testDB.Create(stranger).Error)

	merchantRepo := repository.NewMerchantRepository(testDB)
	return testDB, NewMerchantService(merchantRepo), owner, stranger
}

func validMerchant(userID uint) *model.Merchant {
	return &model.Merchant{
		UserID:    userID,
		Name:      "Sunset Smoothies",
		Category:  "drinks",
		Latitude:  33.45,
		Longitude: -112.07,
		Address:   "200 E Washington St, Phoenix, AZ",
	}
}

func TestMerchantService_CreateMerchant(t *testing.T) {
	testDB, svc, owner, _ := setupMerchantServiceTest(t)
	defer db.CleanupTestDB(testDB)

	merchant := validMerchant(owner.ID)
	require.NoError(t, svc.CreateMerchant(merchant))
	assert.NotZero(t, merchant.ID)
	assert.True(t, merchant.IsActive)
}

func TestMerchantService_CreateMerchant_InvalidCoordinates(t *testing.T) {
	testDB, svc, owner, _ := setupMerchantServiceTest(t)
	defer db.CleanupTestDB(testDB)

	tests := []struct {
		name     string
		lat, lng float64
	}{
		{name: "Latitude too high", lat: 91, lng: 0},
		{name: "Latitude too low", lat: -91, lng: 0},
		{name: "Longitude too high", lat: 0, lng: 181},
		{name: "Longitude too low", lat: 0, lng: -181},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merchant := validMerchant(owner.ID)
			merchant.Latitude = tt.lat
			merchant.Longitude = tt.lng

			err := svc.CreateMerchant(merchant)
			assert.ErrorIs(t, err, ErrInvalidCoordinates)
		})
	}
}

func TestMerchantService_GetMerchantByID(t *testing.T) {
	testDB, svc, owner, _ := setupMerchantServiceTest(t)
	defer db.CleanupTestDB(testDB)

	merchant := validMerchant(owner.ID)
	require.NoError(t, svc.CreateMerchant(merchant))

	found, err := svc.GetMerchantByID(merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, merchant.Name, found.Name)

	_, err = svc.GetMerchantByID(9999)
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}

func TestMerchantService_UpdateMerchant_Ownership(t *testing.T) {
	testDB, svc, owner, stranger := setupMerchantServiceTest(t)
	defer db.CleanupTestDB(testDB)

	merchant := validMerchant(owner.ID)
	require.NoError(t, svc.CreateMerchant(merchant))

	update := validMerchant(owner.ID)
	update.ID = merchant.ID
	update.Name = "Renamed Smoothies"

	err := svc.UpdateMerchant(stranger.ID, update)
	assert.ErrorIs(t, err, ErrMerchantAccessDenied)

	require.NoError(t, svc.UpdateMerchant(owner.ID, update))

	found, err := svc.GetMerchantByID(merchant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Smoothies", found.Name)
}

func TestMerchantService_DeactivateMerchant(t *testing.T) {
	testDB, svc, owner, stranger := setupMerchantServiceTest(t)
	defer db.CleanupTestDB(testDB)

	merchant := validMerchant(owner.ID)
	require.NoError(t, svc.CreateMerchant(merchant))

	err := svc.DeactivateMerchant(stranger.ID, merchant.ID)
	assert.ErrorIs(t, err, ErrMerchantAccessDenied)

	require.NoError(t, svc.DeactivateMerchant(owner.ID, merchant.ID))

	// Row survives deactivation so deals and claims keep their references
	found, err := svc.GetMerchantByID(merchant.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)

	active, err := svc.ListMerchants(true)
	require.NoError(t, err)
	assert.Len(t, active, 0)

	all, err := svc.ListMerchants(false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
