package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisclient "github.com/rsalgueiro/truck-booking/pkg/redis"
)

type cachedVehicle struct {
	PlateNumber string `json:"plate_number"`
	CurrentKM   int    `json:"current_km"`
}

func newTestManager(t *testing.T) (*Manager, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	return NewManager(redisclient.NewFromClient(db)), mock
}

func TestGet_CacheHitUnmarshals(t *testing.T) {
	manager, mock := newTestManager(t)
	key := Keys.Vehicle("abc")
	mock.ExpectGet(key).SetVal(`{"plate_number":"AB 12 CD","current_km":120500}`)

	var v cachedVehicle
	err := manager.Get(context.Background(), key, &v)

	require.NoError(t, err)
	assert.Equal(t, "AB 12 CD", v.PlateNumber)
	assert.Equal(t, 120500, v.CurrentKM)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_CacheMissReturnsError(t *testing.T) {
	manager, mock := newTestManager(t)
	key := Keys.Vehicle("abc")
	mock.ExpectGet(key).RedisNil()

	var v cachedVehicle
	err := manager.Get(context.Background(), key, &v)

	assert.Error(t, err)
}

func TestSet_MarshalsValue(t *testing.T) {
	manager, mock := newTestManager(t)
	key := Keys.Vehicle("abc")
	value := cachedVehicle{PlateNumber: "AB 12 CD", CurrentKM: 120500}
	mock.ExpectSet(key, `{"plate_number":"AB 12 CD","current_km":120500}`, TTL.Short()).SetVal("OK")

	err := manager.Set(context.Background(), key, value, TTL.Short())

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSet_CacheHitSkipsLoader(t *testing.T) {
	manager, mock := newTestManager(t)
	key := Keys.Vehicle("abc")
	mock.ExpectGet(key).SetVal(`{"plate_number":"AB 12 CD","current_km":100}`)

	loaderCalled := false
	var v cachedVehicle
	err := manager.GetOrSet(context.Background(), key, TTL.Short(), &v, func() (interface{}, error) {
		loaderCalled = true
		return nil, nil
	})

	require.NoError(t, err)
	assert.False(t, loaderCalled)
	assert.Equal(t, "AB 12 CD", v.PlateNumber)
}

func TestGetOrSet_CacheMissRunsLoader(t *testing.T) {
	manager, mock := newTestManager(t)
	key := Keys.Vehicle("abc")
	mock.ExpectGet(key).RedisNil()

	var v cachedVehicle
	err := manager.GetOrSet(context.Background(), key, TTL.Short(), &v, func() (interface{}, error) {
		return cachedVehicle{PlateNumber: "XY 98 ZW", CurrentKM: 45000}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "XY 98 ZW", v.PlateNumber)
	assert.Equal(t, 45000, v.CurrentKM)
}

func TestGetOrSet_LoaderErrorPropagates(t *testing.T) {
	manager, mock := newTestManager(t)
	key := Keys.Vehicle("abc")
	mock.ExpectGet(key).RedisNil()

	var v cachedVehicle
	err := manager.GetOrSet(context.Background(), key, TTL.Short(), &v, func() (interface{}, error) {
		return nil, assert.AnError
	})

	assert.ErrorIs(t, err, assert.AnError)
}

func TestInvalidate_ScansAndDeletesMatches(t *testing.T) {
	manager, mock := newTestManager(t)
	keys := []string{"vehicle:slots:a", "vehicle:slots:b"}
	mock.ExpectScan(0, "vehicle:slots:*", 100).SetVal(keys, 0)
	mock.ExpectDel(keys...).SetVal(int64(len(keys)))

	err := manager.Invalidate(context.Background(), "vehicle:slots:*")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidate_EmptyScanIsNoOp(t *testing.T) {
	manager, mock := newTestManager(t)
	mock.ExpectScan(0, "calendar:*", 100).SetVal(nil, 0)

	err := manager.Invalidate(context.Background(), "calendar:*")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "vehicle:abc", Keys.Vehicle("abc"))
	assert.Equal(t, "vehicle:slots:abc", Keys.VehicleSlots("abc"))
	assert.Equal(t, "vehicles:type:HEAVY", Keys.VehicleList("HEAVY"))
	assert.Equal(t, "booking:abc", Keys.Booking("abc"))
	assert.Equal(t, "calendar:2026-03", Keys.Calendar("2026-03"))
	assert.Equal(t, "settings:automation", Keys.AutomationSettings())
}

func TestCacheTTL(t *testing.T) {
	assert.Equal(t, 5*time.Minute, TTL.Short())
	assert.Equal(t, 15*time.Minute, TTL.Medium())
	assert.Equal(t, time.Hour, TTL.Long())
}
