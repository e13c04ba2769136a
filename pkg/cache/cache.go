package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisclient "github.com/rsalgueiro/truck-booking/pkg/redis"
)

// Manager handles caching operations with JSON serialization
type Manager struct {
	redis *redisclient.Client
}

// NewManager creates a new cache manager
func NewManager(redis *redisclient.Client) *Manager {
	return &Manager{redis: redis}
}

// Get retrieves a cached value and unmarshals it into result
func (m *Manager) Get(ctx context.Context, key string, result interface{}) error {
	data, err := m.redis.GetString(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(data), result)
}

// Set marshals and caches a value with expiration
func (m *Manager) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return m.redis.SetWithExpiration(ctx, key, string(data), ttl)
}

// GetOrSet retrieves from cache or executes fn and caches the result
func (m *Manager) GetOrSet(ctx context.Context, key string, ttl time.Duration, result interface{}, fn func() (interface{}, error)) error {
	// Try cache first
	err := m.Get(ctx, key, result)
	if err == nil {
		return nil // Cache hit
	}

	// Cache miss - execute function
	data, err := fn()
	if err != nil {
		return err
	}

	// Cache the result (non-blocking)
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.Set(cacheCtx, key, data, ttl)
	}()

	// Marshal the result into the result pointer
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return json.Unmarshal(jsonData, result)
}

// Delete removes a key from cache
func (m *Manager) Delete(ctx context.Context, keys ...string) error {
	return m.redis.Delete(ctx, keys...)
}

// Invalidate removes keys matching a pattern
func (m *Manager) Invalidate(ctx context.Context, pattern string) error {
	// Uses SCAN which is safe for production
	var cursor uint64

	for {
		keys, next, err := m.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := m.redis.Delete(ctx, keys...); err != nil {
				return fmt.Errorf("failed to delete keys: %w", err)
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return nil
}

// CacheKeys defines common cache key patterns
type CacheKeys struct{}

var Keys = CacheKeys{}

// Vehicle returns cache key for a single vehicle
func (k CacheKeys) Vehicle(vehicleID string) string {
	return fmt.Sprintf("vehicle:%s", vehicleID)
}

// VehicleSlots returns cache key for a vehicle's availability slots
func (k CacheKeys) VehicleSlots(vehicleID string) string {
	return fmt.Sprintf("vehicle:slots:%s", vehicleID)
}

// VehicleList returns cache key for the vehicle listing
func (k CacheKeys) VehicleList(vehicleType string) string {
	return fmt.Sprintf("vehicles:type:%s", vehicleType)
}

// Booking returns cache key for booking data
func (k CacheKeys) Booking(bookingID string) string {
	return fmt.Sprintf("booking:%s", bookingID)
}

// Calendar returns cache key for the booking calendar feed
func (k CacheKeys) Calendar(month string) string {
	return fmt.Sprintf("calendar:%s", month)
}

// Location returns cache key for location data
func (k CacheKeys) Location(locationID string) string {
	return fmt.Sprintf("location:%s", locationID)
}

// User returns cache key for user data
func (k CacheKeys) User(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

// AutomationSettings returns cache key for the automation settings singleton
func (k CacheKeys) AutomationSettings() string {
	return "settings:automation"
}

// TTL defines common cache TTL durations
type CacheTTL struct{}

var TTL = CacheTTL{}

func (t CacheTTL) Short() time.Duration  { return 5 * time.Minute }
func (t CacheTTL) Medium() time.Duration { return 15 * time.Minute }
func (t CacheTTL) Long() time.Duration   { return 1 * time.Hour }
