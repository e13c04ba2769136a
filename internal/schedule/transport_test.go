package schedule

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/rsalgueiro/truck-booking/pkg/models"
)

func TestPredecessorStatuses(t *testing.T) {
	for _, vt := range []models.VehicleType{
		models.VehicleTypeHeavy, models.VehicleTypeLight, models.VehicleTypeAPV,
	} {
		got := PredecessorStatuses(vt)
		assert.Contains(t, got, models.StatusCompleted, "%s must look at finished rentals too", vt)
		for _, s := range BlockingStatuses(vt) {
			assert.Contains(t, got, s)
		}
	}

	// Appending completed must not leak into the blocking set.
	before := len(BlockingStatuses(models.VehicleTypeHeavy))
	_ = PredecessorStatuses(models.VehicleTypeHeavy)
	assert.Len(t, BlockingStatuses(models.VehicleTypeHeavy), before)
	assert.NotContains(t, BlockingStatuses(models.VehicleTypeHeavy), models.StatusCompleted)
}

func TestResolveExpectedLocation(t *testing.T) {
	lisbon := uuid.New()
	porto := uuid.New()

	assert.Nil(t, ResolveExpectedLocation(nil, nil), "no baseline at all")
	assert.Equal(t, &lisbon, ResolveExpectedLocation(nil, &lisbon), "falls back to the vehicle's location")
	assert.Equal(t, &porto, ResolveExpectedLocation(&porto, &lisbon), "a prior booking's end location wins")
}

func TestNeedsTransport(t *testing.T) {
	lisbon := uuid.New()
	porto := uuid.New()

	assert.False(t, NeedsTransport(nil, lisbon), "unknown baseline never requires transport")
	assert.False(t, NeedsTransport(&lisbon, lisbon), "vehicle already where the booking starts")
	assert.True(t, NeedsTransport(&porto, lisbon), "vehicle elsewhere")
}

// The prior booking's end location takes precedence over the vehicle's
// static location: a vehicle "at" Lisbon whose previous booking ends in
// Porto needs transport for a Lisbon start.
func TestNeedsTransport_PriorBookingOverridesStaticLocation(t *testing.T) {
	lisbon := uuid.New()
	porto := uuid.New()

	expected := ResolveExpectedLocation(&porto, &lisbon)
	assert.True(t, NeedsTransport(expected, lisbon))

	// Recomputing against unchanged inputs yields the same answer.
	expected = ResolveExpectedLocation(&porto, &lisbon)
	assert.True(t, NeedsTransport(expected, lisbon))
}
