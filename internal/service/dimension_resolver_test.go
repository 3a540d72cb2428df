package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bookstore_api/internal/cache"
	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/models"
)

func TestResolve_LineFieldsWin(t *testing.T) {
	lookup := &fakeLookup{}
	r := NewDimensionResolver(nil)

	line := models.CartLine{ID: 1, Quantity: 3, Weight: models.MeasureOf(200), Length: models.MeasureOf(24)}
	got := r.Resolve(context.Background(), lookup, line)

	assert.Equal(t, SourceLine, got.Source)
	require.NotNil(t, got.Weight)
	assert.Equal(t, 600.0, *got.Weight, "weight is multiplied by quantity")
	require.NotNil(t, got.Length)
	assert.Equal(t, 24.0, *got.Length, "linear dimensions are not multiplied")
	assert.Nil(t, got.Width)
	assert.Nil(t, got.Height)
	assert.Empty(t, lookup.bookCalls, "no catalog lookup when the line carries data")
}

func TestResolve_AliasFields(t *testing.T) {
	line := models.CartLine{ID: 1, Quantity: 1, WeightGrams: models.MeasureOf(150), HeightCM: models.MeasureOf(3)}
	got := NewDimensionResolver(nil).Resolve(context.Background(), nil, line)

	assert.Equal(t, SourceLine, got.Source)
	assert.Equal(t, 150.0, *got.Weight)
	assert.Equal(t, 3.0, *got.Height)
}

func TestResolve_BookThenStationery(t *testing.T) {
	lookup := &fakeLookup{
		books:      map[int]*catalog.Product{1: product(400, 20, 14, 2)},
		stationery: map[int]*catalog.Product{2: product(50, 15, 1, 1)},
	}
	r := NewDimensionResolver(nil)
	ctx := context.Background()

	book := r.Resolve(ctx, lookup, models.CartLine{ID: 1, Quantity: 2})
	assert.Equal(t, SourceBook, book.Source)
	assert.Equal(t, 800.0, *book.Weight)

	pen := r.Resolve(ctx, lookup, models.CartLine{ID: 2, Quantity: 1})
	assert.Equal(t, SourceStationery, pen.Source)
	assert.Equal(t, 50.0, *pen.Weight)

	assert.Equal(t, []int{1, 2}, lookup.bookCalls)
	assert.Equal(t, []int{2}, lookup.statCalls)
}

func TestResolve_LookupFailuresSwallowed(t *testing.T) {
	lookup := &fakeLookup{}
	got := NewDimensionResolver(nil).Resolve(context.Background(), lookup, models.CartLine{ID: 9, Quantity: 2})

	assert.Equal(t, SourceUnresolved, got.Source)
	assert.Equal(t, 2, got.Qty)
	assert.Nil(t, got.Weight)
	assert.Nil(t, got.Length)
	assert.Nil(t, got.Width)
	assert.Nil(t, got.Height)
}

func TestResolve_NoDedup(t *testing.T) {
	lookup := &fakeLookup{books: map[int]*catalog.Product{5: product(100, 10, 10, 1)}}
	r := NewDimensionResolver(nil)
	for i := 0; i < 3; i++ {
		r.Resolve(context.Background(), lookup, models.CartLine{ID: 5, Quantity: 1})
	}
	assert.Len(t, lookup.bookCalls, 3)
}

func TestResolve_UsesCache(t *testing.T) {
	lookup := &fakeLookup{books: map[int]*catalog.Product{1: product(400, 20, 14, 2)}}
	c := &fakeDimensionCache{}
	r := NewDimensionResolver(c)
	ctx := context.Background()

	first := r.Resolve(ctx, lookup, models.CartLine{ID: 1, Quantity: 1})
	assert.Equal(t, SourceBook, first.Source)
	assert.Equal(t, 1, c.sets)

	second := r.Resolve(ctx, lookup, models.CartLine{ID: 1, Quantity: 3})
	assert.Equal(t, SourceCache, second.Source)
	assert.Equal(t, 1200.0, *second.Weight)
	assert.Len(t, lookup.bookCalls, 1)
}

func TestResolve_CacheErrorFallsThrough(t *testing.T) {
	lookup := &fakeLookup{books: map[int]*catalog.Product{1: product(400, 20, 14, 2)}}
	c := &fakeDimensionCache{getErr: errors.New("redis down")}

	got := NewDimensionResolver(c).Resolve(context.Background(), lookup, models.CartLine{ID: 1, Quantity: 1})
	assert.Equal(t, SourceBook, got.Source)
	assert.Equal(t, cache.KindBook, c.data[1].Kind)
}

func TestResolve_EmptyRecordNotCached(t *testing.T) {
	lookup := &fakeLookup{books: map[int]*catalog.Product{7: {ID: 7, Title: "No measurements"}}}
	c := &fakeDimensionCache{}
	r := NewDimensionResolver(c)

	got := r.Resolve(context.Background(), lookup, models.CartLine{ID: 7, Quantity: 1})
	assert.Equal(t, SourceBook, got.Source, "an empty record still counts as found")
	assert.Nil(t, got.Weight)
	assert.Empty(t, lookup.statCalls)
	assert.Equal(t, 0, c.sets)

	lookup.books[7] = product(250, 18, 12, 1)
	fixed := r.Resolve(context.Background(), lookup, models.CartLine{ID: 7, Quantity: 1})
	assert.Equal(t, SourceBook, fixed.Source)
	assert.Equal(t, 250.0, *fixed.Weight)
	assert.Equal(t, 1, c.sets)
}
