package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/utils"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

type fakeDirectory struct {
	mu        sync.Mutex
	configErr error
	provinces []ghn.Province
	districts map[int][]ghn.District
	wards     map[int][]ghn.Ward
	distErr   error
	gates     map[int]chan struct{}
	entered   chan int
	calls     int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		provinces: []ghn.Province{{ID: 201, Name: "Hà Nội"}, {ID: 202, Name: "Hồ Chí Minh"}},
		districts: map[int][]ghn.District{
			201: {{ID: 1482, Name: "Quận Đống Đa", ProvinceID: 201}, {ID: 1484, Name: "Quận Ba Đình", ProvinceID: 201}},
			202: {{ID: 1442, Name: "Quận 1", ProvinceID: 202}},
		},
		wards: map[int][]ghn.Ward{
			1482: {{Code: "11006", Name: "Phường Láng Hạ", DistrictID: 1482}, {Code: "11007", Name: "Phường Láng Thượng", DistrictID: 1482}},
			1442: {{Code: "20101", Name: "Phường Bến Nghé", DistrictID: 1442}},
		},
		gates:   map[int]chan struct{}{},
		entered: make(chan int, 4),
	}
}

func (f *fakeDirectory) ValidateConfig() error { return f.configErr }

func (f *fakeDirectory) GetProvinces(context.Context) ([]ghn.Province, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.provinces, nil
}

func (f *fakeDirectory) GetDistricts(_ context.Context, provinceID int) ([]ghn.District, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gates[provinceID]
	err := f.distErr
	f.mu.Unlock()

	if gate != nil {
		f.entered <- provinceID
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return f.districts[provinceID], nil
}

func (f *fakeDirectory) GetWards(_ context.Context, districtID int) ([]ghn.Ward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.wards[districtID], nil
}

type gatedQuoter struct {
	gate    chan struct{}
	entered chan struct{}
	err     error
	inputs  []QuoteInput
	mu      sync.Mutex
}

func (q *gatedQuoter) QuoteCart(_ context.Context, in QuoteInput) (*QuoteResult, error) {
	q.mu.Lock()
	q.inputs = append(q.inputs, in)
	q.mu.Unlock()
	if q.gate != nil {
		q.entered <- struct{}{}
		<-q.gate
	}
	if q.err != nil {
		return nil, q.err
	}
	return &QuoteResult{Quote: &ghn.ShippingQuote{Total: 30000}, FormattedTotal: "30.000₫"}, nil
}

var oneBook = []models.CartLine{{ID: 1, Quantity: 1, Price: 120000}}

func selectAll(t *testing.T, sel *LocationSelection) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, sel.Start(ctx))
	require.NoError(t, sel.SelectRegion(ctx, 201))
	require.NoError(t, sel.SelectSubregion(ctx, 1482))
	require.NoError(t, sel.SelectLocality("11006"))
}

func TestLocationSelection_ConfigError(t *testing.T) {
	dir := newFakeDirectory()
	dir.configErr = &ghn.Error{Kind: ghn.KindConfig, Op: "config", Message: "missing token"}
	sel := NewLocationSelection("s1", dir, &gatedQuoter{})

	err := sel.Start(context.Background())
	assert.True(t, ghn.IsKind(err, ghn.KindConfig))

	snap := sel.Snapshot()
	assert.Equal(t, StateConfigError, snap.State)
	assert.False(t, snap.ConfigValid)
	assert.Equal(t, string(ghn.KindConfig), snap.ErrorKind)
	assert.Contains(t, snap.Error, "missing token")

	assert.True(t, ghn.IsKind(sel.SelectRegion(context.Background(), 201), ghn.KindConfig))
	assert.True(t, ghn.IsKind(sel.LoadRegions(context.Background()), ghn.KindConfig))
	assert.Zero(t, dir.calls, "no directory call once configuration is invalid")

	sel.Reset()
	assert.Equal(t, StateConfigError, sel.State())
}

func TestLocationSelection_HappyPath(t *testing.T) {
	quoter := &gatedQuoter{}
	sel := NewLocationSelection("s1", newFakeDirectory(), quoter)
	ctx := context.Background()

	assert.Equal(t, StateIdle, sel.State())
	require.NoError(t, sel.Start(ctx))
	assert.Equal(t, StateRegionsLoaded, sel.State())

	require.NoError(t, sel.SelectRegion(ctx, 201))
	assert.Equal(t, StateSubregionsLoaded, sel.State())
	assert.Len(t, sel.Snapshot().Districts, 2)

	require.NoError(t, sel.SelectSubregion(ctx, 1482))
	assert.Equal(t, StateLocalitiesLoaded, sel.State())

	require.NoError(t, sel.SelectLocality("11006"))
	assert.Equal(t, StateLocalitiesLoaded, sel.State(), "selecting a ward does not calculate")
	assert.Empty(t, quoter.inputs)
	assert.True(t, sel.IsComplete())
	assert.Equal(t, "Phường Láng Hạ, Quận Đống Đa, Hà Nội", sel.CompleteAddress())

	res, err := sel.CalculateQuote(ctx, oneBook, nil)
	require.NoError(t, err)
	assert.Equal(t, 30000, res.Quote.Total)
	assert.Equal(t, StateQuoteReady, sel.State())

	require.Len(t, quoter.inputs, 1)
	assert.Equal(t, models.Destination{DistrictID: 1482, WardCode: "11006"}, quoter.inputs[0].Destination)
	assert.Equal(t, "s1", quoter.inputs[0].SessionID)

	data := sel.LocationData()
	require.NotNil(t, data)
	assert.Equal(t, "11006", data.Ward.Code)
	assert.Same(t, res, data.ShippingFee)
}

func TestLocationSelection_NewRegionClearsDescendants(t *testing.T) {
	ctx := context.Background()
	for name, depth := range map[string]int{"after region": 1, "after district": 2, "after ward": 3, "after quote": 4} {
		t.Run(name, func(t *testing.T) {
			sel := NewLocationSelection("s1", newFakeDirectory(), &gatedQuoter{})
			require.NoError(t, sel.Start(ctx))
			require.NoError(t, sel.SelectRegion(ctx, 201))
			if depth >= 2 {
				require.NoError(t, sel.SelectSubregion(ctx, 1482))
			}
			if depth >= 3 {
				require.NoError(t, sel.SelectLocality("11006"))
			}
			if depth >= 4 {
				_, err := sel.CalculateQuote(ctx, oneBook, nil)
				require.NoError(t, err)
			}

			require.NoError(t, sel.SelectRegion(ctx, 202))

			snap := sel.Snapshot()
			assert.Equal(t, 202, snap.SelectedProvince.ID)
			assert.Nil(t, snap.SelectedDistrict)
			assert.Nil(t, snap.SelectedWard)
			assert.Nil(t, snap.ShippingFee)
			assert.Empty(t, snap.Wards)
			assert.Equal(t, StateSubregionsLoaded, snap.State)
		})
	}
}

func TestLocationSelection_SubregionClearsWardAndQuote(t *testing.T) {
	ctx := context.Background()
	sel := NewLocationSelection("s1", newFakeDirectory(), &gatedQuoter{})
	selectAll(t, sel)
	_, err := sel.CalculateQuote(ctx, oneBook, nil)
	require.NoError(t, err)

	require.NoError(t, sel.SelectSubregion(ctx, 1484))
	snap := sel.Snapshot()
	assert.Equal(t, 201, snap.SelectedProvince.ID)
	assert.Equal(t, 1484, snap.SelectedDistrict.ID)
	assert.Nil(t, snap.SelectedWard)
	assert.Nil(t, snap.ShippingFee)
}

func TestLocationSelection_LocalityClearsQuote(t *testing.T) {
	ctx := context.Background()
	sel := NewLocationSelection("s1", newFakeDirectory(), &gatedQuoter{})
	selectAll(t, sel)
	_, err := sel.CalculateQuote(ctx, oneBook, nil)
	require.NoError(t, err)

	require.NoError(t, sel.SelectLocality("11007"))
	assert.Nil(t, sel.Snapshot().ShippingFee)
	assert.Equal(t, StateLocalitiesLoaded, sel.State())
}

func TestLocationSelection_FetchFailureReturnsToLoadedState(t *testing.T) {
	dir := newFakeDirectory()
	sel := NewLocationSelection("s1", dir, &gatedQuoter{})
	ctx := context.Background()
	require.NoError(t, sel.Start(ctx))

	dir.distErr = &ghn.Error{Kind: ghn.KindTransport, Op: "get_districts", Message: "failed after 3 attempts: HTTP 502"}
	err := sel.SelectRegion(ctx, 201)
	require.Error(t, err)

	snap := sel.Snapshot()
	assert.Equal(t, StateRegionsLoaded, snap.State)
	assert.Equal(t, 201, snap.SelectedProvince.ID, "the selection stays so the user can retry")
	assert.Equal(t, string(ghn.KindTransport), snap.ErrorKind)
	assert.Contains(t, snap.Error, "Failed to load districts")

	dir.distErr = nil
	require.NoError(t, sel.LoadSubregions(ctx))
	snap = sel.Snapshot()
	assert.Equal(t, StateSubregionsLoaded, snap.State)
	assert.Empty(t, snap.Error)
}

func TestLocationSelection_QuoteFailure(t *testing.T) {
	quoter := &gatedQuoter{err: &ghn.Error{Kind: ghn.KindQuote, Op: "calculate_fee", Message: "route not supported"}}
	sel := NewLocationSelection("s1", newFakeDirectory(), quoter)
	selectAll(t, sel)

	_, err := sel.CalculateQuote(context.Background(), oneBook, nil)
	require.Error(t, err)

	snap := sel.Snapshot()
	assert.Equal(t, StateQuoteFailed, snap.State)
	assert.Equal(t, string(ghn.KindQuote), snap.ErrorKind)
	assert.Equal(t, "Failed to calculate shipping fee: ghn calculate_fee: route not supported", snap.Error)
	assert.Nil(t, snap.ShippingFee)
	assert.True(t, snap.Complete, "a failed quote does not block the address")
}

func TestLocationSelection_CalculateQuoteValidation(t *testing.T) {
	ctx := context.Background()
	sel := NewLocationSelection("s1", newFakeDirectory(), &gatedQuoter{})
	require.NoError(t, sel.Start(ctx))

	_, err := sel.CalculateQuote(ctx, oneBook, nil)
	assert.ErrorIs(t, err, utils.ErrIncompleteDestination)

	require.NoError(t, sel.SelectRegion(ctx, 201))
	require.NoError(t, sel.SelectSubregion(ctx, 1482))
	require.NoError(t, sel.SelectLocality("11006"))
	_, err = sel.CalculateQuote(ctx, nil, nil)
	assert.ErrorIs(t, err, utils.ErrEmptyCart)
}

func TestLocationSelection_UnknownLocations(t *testing.T) {
	ctx := context.Background()
	sel := NewLocationSelection("s1", newFakeDirectory(), &gatedQuoter{})
	require.NoError(t, sel.Start(ctx))

	assert.ErrorIs(t, sel.SelectRegion(ctx, 999), utils.ErrUnknownLocation)
	assert.ErrorIs(t, sel.SelectSubregion(ctx, 1482), utils.ErrUnknownLocation, "district of an unselected province")
	assert.ErrorIs(t, sel.LoadLocalities(ctx), utils.ErrSelectionRequired)

	require.NoError(t, sel.SelectRegion(ctx, 201))
	assert.ErrorIs(t, sel.SelectLocality("11006"), utils.ErrUnknownLocation, "wards not loaded yet")
}

func TestLocationSelection_Reset(t *testing.T) {
	ctx := context.Background()
	sel := NewLocationSelection("s1", newFakeDirectory(), &gatedQuoter{})
	selectAll(t, sel)

	sel.Reset()
	snap := sel.Snapshot()
	assert.Equal(t, StateRegionsLoaded, snap.State)
	assert.Len(t, snap.Provinces, 2)
	assert.Nil(t, snap.SelectedProvince)
	assert.Empty(t, snap.Districts)
	assert.Empty(t, snap.Wards)
	assert.False(t, snap.Complete)
	assert.Empty(t, sel.CompleteAddress())
	assert.Nil(t, sel.LocationData())

	require.NoError(t, sel.SelectRegion(ctx, 202))
}

// A district list requested for one province must not land after the user
// has moved on to another province.
func TestLocationSelection_StaleSubregionResponseIgnored(t *testing.T) {
	dir := newFakeDirectory()
	gate := make(chan struct{})
	dir.gates[201] = gate
	sel := NewLocationSelection("s1", dir, &gatedQuoter{})
	ctx := context.Background()
	require.NoError(t, sel.Start(ctx))

	first := make(chan error, 1)
	go func() { first <- sel.SelectRegion(ctx, 201) }()
	assert.Equal(t, 201, <-dir.entered)
	assert.Equal(t, StateSubregionsLoading, sel.State())

	require.NoError(t, sel.SelectRegion(ctx, 202))
	close(gate)
	assert.ErrorIs(t, <-first, utils.ErrSuperseded)

	snap := sel.Snapshot()
	assert.Equal(t, 202, snap.SelectedProvince.ID)
	require.Len(t, snap.Districts, 1)
	assert.Equal(t, 1442, snap.Districts[0].ID)
	assert.Equal(t, StateSubregionsLoaded, snap.State)
}

func TestLocationSelection_StaleQuoteIgnored(t *testing.T) {
	quoter := &gatedQuoter{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	sel := NewLocationSelection("s1", newFakeDirectory(), quoter)
	selectAll(t, sel)

	done := make(chan error, 1)
	go func() {
		_, err := sel.CalculateQuote(context.Background(), oneBook, nil)
		done <- err
	}()
	<-quoter.entered
	assert.Equal(t, StateQuoteCalculating, sel.State())

	require.NoError(t, sel.SelectLocality("11007"))
	close(quoter.gate)
	assert.ErrorIs(t, <-done, utils.ErrSuperseded)

	snap := sel.Snapshot()
	assert.Nil(t, snap.ShippingFee, "quote for the previous ward is dropped")
	assert.Equal(t, "11007", snap.SelectedWard.Code)
	assert.Equal(t, StateLocalitiesLoaded, snap.State)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, ErrorKindValidation, errorKind(utils.ErrEmptyCart))
	assert.Equal(t, string(ghn.KindResponse), errorKind(&ghn.Error{Kind: ghn.KindResponse}))
	assert.Equal(t, string(ghn.KindTransport), errorKind(context.DeadlineExceeded))
	assert.Equal(t, ErrorKindInternal, errorKind(errors.New("boom")))
}
