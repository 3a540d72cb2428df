package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/cache"
	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/models"
)

// ProductLookup fetches catalog records. *catalog.Client implements it.
type ProductLookup interface {
	GetBook(ctx context.Context, id int) (*catalog.Product, error)
	GetStationery(ctx context.Context, id int) (*catalog.Product, error)
}

// DimensionCacher is the optional cache in front of catalog lookups.
type DimensionCacher interface {
	Get(ctx context.Context, productID int) (*cache.CachedDimensions, error)
	Set(ctx context.Context, productID int, kind cache.ProductKind, dims models.Dimensions) error
}

// Where a line's dimensions came from.
const (
	SourceLine       = "line"
	SourceBook       = "book"
	SourceStationery = "stationery"
	SourceCache      = "cache"
	SourceUnresolved = "unresolved"
)

// ResolvedDimensions are one cart line's shipping attributes. Weight is
// already multiplied by Qty; nil means unresolved.
type ResolvedDimensions struct {
	Name   string
	Qty    int
	Weight *float64
	Length *float64
	Width  *float64
	Height *float64
	Source string
}

// DimensionResolver determines shipping attributes per cart line.
type DimensionResolver struct {
	cache DimensionCacher
}

// NewDimensionResolver creates a resolver. cache may be nil.
func NewDimensionResolver(cache DimensionCacher) *DimensionResolver {
	return &DimensionResolver{cache: cache}
}

// Resolve uses the line's own fields when any is present, otherwise the
// catalog record (book first, then stationery). Lookup failures are logged
// at debug level and leave the attributes unresolved.
func (r *DimensionResolver) Resolve(ctx context.Context, lookup ProductLookup, line models.CartLine) ResolvedDimensions {
	if dims := line.Dimensions(); dims.HasAny() {
		return toResolved(line, dims, SourceLine)
	}

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, line.ID)
		if err != nil {
			log.Debug().Err(err).Int("product_id", line.ID).Msg("Dimension cache read failed")
		} else if cached != nil {
			return toResolved(line, cached.Dimensions, SourceCache)
		}
	}

	if lookup == nil {
		return toResolved(line, models.Dimensions{}, SourceUnresolved)
	}

	product, kind := r.fetch(ctx, lookup, line.ID)
	if product == nil {
		return toResolved(line, models.Dimensions{}, SourceUnresolved)
	}

	// A record with no dimensions is not cached so a later catalog fix
	// shows up on the next lookup.
	dims := product.Dimensions()
	if r.cache != nil && dims.HasAny() {
		if err := r.cache.Set(ctx, line.ID, kind, dims); err != nil {
			log.Debug().Err(err).Int("product_id", line.ID).Msg("Dimension cache write failed")
		}
	}
	return toResolved(line, dims, string(kind))
}

// fetch tries the book collection, then stationery.
func (r *DimensionResolver) fetch(ctx context.Context, lookup ProductLookup, id int) (*catalog.Product, cache.ProductKind) {
	book, err := lookup.GetBook(ctx, id)
	if err == nil && book != nil {
		return book, cache.KindBook
	}
	if err != nil {
		log.Debug().Err(err).Int("product_id", id).Msg("Book lookup failed")
	}

	item, err := lookup.GetStationery(ctx, id)
	if err == nil && item != nil {
		return item, cache.KindStationery
	}
	if err != nil {
		log.Debug().Err(err).Int("product_id", id).Msg("Stationery lookup failed")
	}
	return nil, ""
}

func toResolved(line models.CartLine, dims models.Dimensions, source string) ResolvedDimensions {
	qty := line.Qty()
	res := ResolvedDimensions{
		Name:   line.Title,
		Qty:    qty,
		Length: dims.Length.Ptr(),
		Width:  dims.Width.Ptr(),
		Height: dims.Height.Ptr(),
		Source: source,
	}
	if w, ok := dims.Weight.Get(); ok {
		total := w * float64(qty)
		res.Weight = &total
	}
	return res
}
