package maproom

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/forecast-trigger-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	calls   int
	regions []domain.AdminRegion
	err     error
}

func (r *countingResolver) Regions(_ context.Context, _ domain.RegionsParams) ([]domain.AdminRegion, error) {
	r.calls++
	return r.regions, r.err
}

func TestCachedResolver_CachesRepeatLookups(t *testing.T) {
	inner := &countingResolver{regions: []domain.AdminRegion{{Key: "ET05", Label: "Afar"}}}
	cached := NewCachedResolver(inner, 10, testMetrics())

	p := domain.RegionsParams{Maproom: "ethiopia", Level: 1}

	first, err := cached.Regions(context.Background(), p)
	require.NoError(t, err)
	second, err := cached.Regions(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedResolver_DistinctParamsMiss(t *testing.T) {
	inner := &countingResolver{regions: []domain.AdminRegion{{Key: "ET05"}}}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, err := cached.Regions(context.Background(), domain.RegionsParams{Maproom: "ethiopia", Level: 0})
	require.NoError(t, err)
	_, err = cached.Regions(context.Background(), domain.RegionsParams{Maproom: "ethiopia", Level: 1})
	require.NoError(t, err)
	_, err = cached.Regions(context.Background(), domain.RegionsParams{
		Maproom: "ethiopia", Level: 1, NeedValidKeys: true, ValidKeys: []string{"ET05"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, inner.calls)
}

func TestCachedResolver_DoesNotCacheEmptyResults(t *testing.T) {
	inner := &countingResolver{}
	cached := NewCachedResolver(inner, 10, testMetrics())

	p := domain.RegionsParams{Maproom: "ethiopia"}
	_, err := cached.Regions(context.Background(), p)
	require.NoError(t, err)
	_, err = cached.Regions(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedResolver_PropagatesErrors(t *testing.T) {
	inner := &countingResolver{err: errors.New("boom")}
	cached := NewCachedResolver(inner, 10, testMetrics())

	_, err := cached.Regions(context.Background(), domain.RegionsParams{Maproom: "ethiopia"})
	require.Error(t, err)
	_, err = cached.Regions(context.Background(), domain.RegionsParams{Maproom: "ethiopia"})
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls, "errors are never cached")
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)
	a := []domain.AdminRegion{{Key: "a"}}
	b := []domain.AdminRegion{{Key: "b"}}
	d := []domain.AdminRegion{{Key: "d"}}

	c.put("a", a)
	c.put("b", b)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := c.get("a")
	require.True(t, ok)

	c.put("d", d)

	_, ok = c.get("b")
	assert.False(t, ok)
	got, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, a, got)
	got, ok = c.get("d")
	assert.True(t, ok)
	assert.Equal(t, d, got)
}
