package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMeters_IdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMeters(0, 0, 0, 0))
	assert.Equal(t, 0.0, DistanceMeters(40.0, -75.0, 40.0, -75.0))
	assert.Equal(t, 0.0, DistanceMeters(-90, 180, -90, 180))
}

func TestDistanceMeters_QuarterCircle(t *testing.T) {
	// Equator to 90 degrees east is a quarter of the great circle.
	d := DistanceMeters(0, 0, 0, 90)
	assert.InDelta(t, 10007543, d, 1000)
}

func TestDistanceMeters_Antipodal(t *testing.T) {
	d := DistanceMeters(0, 0, 0, 180)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, math.Pi*6371000.0, d, 2000)
}

func TestDistanceMeters_ShortHop(t *testing.T) {
	// Roughly 140m between these two points near Philadelphia.
	d := DistanceMeters(40.0, -75.0, 40.001, -75.001)
	assert.Greater(t, d, 100.0)
	assert.Less(t, d, 200.0)
}

func TestDistanceMeters_Symmetric(t *testing.T) {
	a := DistanceMeters(51.5, -0.12, 48.85, 2.35)
	b := DistanceMeters(48.85, 2.35, 51.5, -0.12)
	assert.InDelta(t, a, b, 1e-6)
	// London to Paris is around 334 km.
	assert.InDelta(t, 334000, a, 10000)
}

func TestDistanceMeters_NaNPropagates(t *testing.T) {
	assert.True(t, math.IsNaN(DistanceMeters(math.NaN(), 0, 0, 1)))
}
