package service

import (
	"testing"
	"time"

	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRegionGateServiceTest(t *testing.T, ttl time.Duration, clock func() time.Time) (*gorm.DB, RegionGateService, repository.RegionGateRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	gateRepo := repository.NewRegionGateRepository(testDB)
	svc := NewRegionGateService(gateRepo, ttl, false, clock)
	return testDB, svc, gateRepo
}

func TestRegionGateService_MissingRowMeansEnabled(t *testing.T) {
	testDB, svc, _ := setupRegionGateServiceTest(t, 30*time.Second, nil)
	defer db.CleanupTestDB(testDB)

	enabled, err := svc.IsEnabled("AZ")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestRegionGateService_SetAndRead(t *testing.T) {
	testDB, svc, _ := setupRegionGateServiceTest(t, 30*time.Second, nil)
	defer db.CleanupTestDB(testDB)

	gate, err := svc.SetGate("NV", false)
	require.NoError(t, err)
	assert.Equal(t, "NV", gate.Region)
	assert.False(t, gate.Enabled)

	enabled, err := svc.IsEnabled("NV")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestRegionGateService_WriteInvalidatesCache(t *testing.T) {
	testDB, svc, _ := setupRegionGateServiceTest(t, time.Hour, nil)
	defer db.CleanupTestDB(testDB)

	_, err := svc.SetGate("CA", false)
	require.NoError(t, err)

	enabled, err := svc.IsEnabled("CA")
	require.NoError(t, err)
	require.False(t, enabled)

	// Even with a long TTL, an explicit write must be visible immediately
	_, err = svc.SetGate("CA", true)
	require.NoError(t, err)

	enabled, err = svc.IsEnabled("CA")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestRegionGateService_CacheExpiresAfterTTL(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	testDB, svc, gateRepo := setupRegionGateServiceTest(t, 30*time.Second, clock)
	defer db.CleanupTestDB(testDB)

	_, err := svc.SetGate("TX", true)
	require.NoError(t, err)

	enabled, err := svc.IsEnabled("TX")
	require.NoError(t, err)
	require.True(t, enabled)

	// Out-of-band write (not through the service) is masked by the cache...
	_, err = gateRepo.Upsert("TX", false)
	require.NoError(t, err)

	enabled, err = svc.IsEnabled("TX")
	require.NoError(t, err)
	assert.True(t, enabled)

	// ...until the TTL elapses
	now = now.Add(31 * time.Second)

	enabled, err = svc.IsEnabled("TX")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestRegionGateService_ListGates(t *testing.T) {
	testDB, svc, _ := setupRegionGateServiceTest(t, 30*time.Second, nil)
	defer db.CleanupTestDB(testDB)

	gates, err := svc.ListGates()
	require.NoError(t, err)
	assert.Len(t, gates, 0)

	_, err = svc.SetGate("AZ", true)
	require.NoError(t, err)
	_, err = svc.SetGate("NV", false)
	require.NoError(t, err)

	gates, err = svc.ListGates()
	require.NoError(t, err)
	assert.Len(t, gates, 2)
}
