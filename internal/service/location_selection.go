package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/utils"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// LocationDirectory lists the carrier's address hierarchy. *ghn.Client
// implements it.
type LocationDirectory interface {
	ValidateConfig() error
	GetProvinces(ctx context.Context) ([]ghn.Province, error)
	GetDistricts(ctx context.Context, provinceID int) ([]ghn.District, error)
	GetWards(ctx context.Context, districtID int) ([]ghn.Ward, error)
}

// CartQuoter prices a cart. *ShippingService implements it.
type CartQuoter interface {
	QuoteCart(ctx context.Context, in QuoteInput) (*QuoteResult, error)
}

// SelectionState is the position of a checkout in the province → district →
// ward → quote flow.
type SelectionState string

const (
	StateIdle              SelectionState = "IDLE"
	StateRegionsLoading    SelectionState = "REGIONS_LOADING"
	StateRegionsLoaded     SelectionState = "REGIONS_LOADED"
	StateSubregionsLoading SelectionState = "SUBREGIONS_LOADING"
	StateSubregionsLoaded  SelectionState = "SUBREGIONS_LOADED"
	StateLocalitiesLoading SelectionState = "LOCALITIES_LOADING"
	StateLocalitiesLoaded  SelectionState = "LOCALITIES_LOADED"
	StateQuoteCalculating  SelectionState = "QUOTE_CALCULATING"
	StateQuoteReady        SelectionState = "QUOTE_READY"
	StateQuoteFailed       SelectionState = "QUOTE_FAILED"
	StateConfigError       SelectionState = "CONFIG_ERROR"
)

// Error kinds reported next to the human readable error.
const (
	ErrorKindValidation = "VALIDATION_ERROR"
	ErrorKindInternal   = "INTERNAL_ERROR"
)

// Snapshot is a consistent copy of a LocationSelection.
type Snapshot struct {
	ID               string         `json:"id"`
	State            SelectionState `json:"state"`
	ConfigValid      bool           `json:"configValid"`
	Provinces        []ghn.Province `json:"provinces"`
	Districts        []ghn.District `json:"districts"`
	Wards            []ghn.Ward     `json:"wards"`
	SelectedProvince *ghn.Province  `json:"selectedProvince"`
	SelectedDistrict *ghn.District  `json:"selectedDistrict"`
	SelectedWard     *ghn.Ward      `json:"selectedWard"`
	ShippingFee      *QuoteResult   `json:"shippingFee"`
	Error            string         `json:"error,omitempty"`
	ErrorKind        string         `json:"errorKind,omitempty"`
	Complete         bool           `json:"complete"`
	CompleteAddress  string         `json:"completeAddress,omitempty"`
}

// LocationData is what the checkout form submits once the address is complete.
type LocationData struct {
	Province        ghn.Province `json:"province"`
	District        ghn.District `json:"district"`
	Ward            ghn.Ward     `json:"ward"`
	CompleteAddress string       `json:"completeAddress"`
	ShippingFee     *QuoteResult `json:"shippingFee"`
}

// levelGen tracks one asynchronous level. Only a response carrying the
// current generation may change the level.
type levelGen struct {
	gen     uint64
	pending bool
	loaded  bool
}

// begin starts a new request and returns its generation.
func (l *levelGen) begin() uint64 {
	l.gen++
	l.pending = true
	return l.gen
}

// cancel invalidates any in-flight request and forgets loaded data.
func (l *levelGen) cancel() {
	l.gen++
	l.pending = false
	l.loaded = false
}

// settle reports whether gen is still current and, if so, ends the request.
func (l *levelGen) settle(gen uint64) bool {
	if gen != l.gen {
		return false
	}
	l.pending = false
	return true
}

// LocationSelection is the per-checkout cascading address selector. All
// methods are safe for concurrent use; carrier calls run without the lock
// held and their results are dropped if a newer selection superseded them.
type LocationSelection struct {
	mu        sync.Mutex
	id        string
	directory LocationDirectory
	quoter    CartQuoter

	configErr error

	provinces []ghn.Province
	districts []ghn.District
	wards     []ghn.Ward

	province *ghn.Province
	district *ghn.District
	ward     *ghn.Ward
	quote    *QuoteResult

	regions    levelGen
	subregions levelGen
	localities levelGen
	quoting    levelGen

	quoteFailed bool

	errMsg  string
	errKind string

	lastActive time.Time
}

// NewLocationSelection creates an Idle selection. Call Start to load provinces.
func NewLocationSelection(id string, directory LocationDirectory, quoter CartQuoter) *LocationSelection {
	return &LocationSelection{
		id:         id,
		directory:  directory,
		quoter:     quoter,
		lastActive: time.Now(),
	}
}

// ID returns the session id.
func (s *LocationSelection) ID() string {
	return s.id
}

// Start validates the carrier configuration and loads provinces. An invalid
// configuration moves the selection into the terminal ConfigError state.
func (s *LocationSelection) Start(ctx context.Context) error {
	s.mu.Lock()
	if err := s.directory.ValidateConfig(); err != nil {
		s.configErr = err
		s.errMsg = err.Error()
		s.errKind = errorKind(err)
		s.mu.Unlock()
		log.Warn().Err(err).Str("session_id", s.id).Msg("Shipping configuration invalid")
		return err
	}
	s.mu.Unlock()

	return s.LoadRegions(ctx)
}

// LoadRegions (re)fetches the province list. Selections are kept.
func (s *LocationSelection) LoadRegions(ctx context.Context) error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.regions.begin()
	s.clearError()
	s.mu.Unlock()

	provinces, err := s.directory.GetProvinces(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.regions.settle(gen) {
		return utils.ErrSuperseded
	}
	if err != nil {
		s.fail("Failed to load provinces", err)
		return err
	}
	s.provinces = provinces
	s.regions.loaded = true
	return nil
}

// SelectRegion selects a province by id, clearing district, ward and quote,
// and loads its districts. id 0 clears the selection.
func (s *LocationSelection) SelectRegion(ctx context.Context, id int) error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return err
	}

	if id == 0 {
		s.province = nil
		s.clearBelowRegion()
		s.clearError()
		s.mu.Unlock()
		return nil
	}

	idx := slices.IndexFunc(s.provinces, func(p ghn.Province) bool { return p.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: province %d", utils.ErrUnknownLocation, id)
	}
	province := s.provinces[idx]
	s.province = &province
	gen := s.beginSubregions()
	s.mu.Unlock()

	return s.fetchSubregions(ctx, id, gen)
}

// LoadSubregions (re)fetches the districts of the selected province. Any
// district or ward selection is cleared.
func (s *LocationSelection) LoadSubregions(ctx context.Context) error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.province == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no province selected", utils.ErrSelectionRequired)
	}
	provinceID := s.province.ID
	gen := s.beginSubregions()
	s.mu.Unlock()

	return s.fetchSubregions(ctx, provinceID, gen)
}

// beginSubregions clears everything below the province and starts a
// district request. Caller holds the lock.
func (s *LocationSelection) beginSubregions() uint64 {
	s.clearBelowRegion()
	s.clearError()
	return s.subregions.begin()
}

func (s *LocationSelection) fetchSubregions(ctx context.Context, provinceID int, gen uint64) error {
	districts, err := s.directory.GetDistricts(ctx, provinceID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.subregions.settle(gen) {
		return utils.ErrSuperseded
	}
	if err != nil {
		s.fail("Failed to load districts", err)
		return err
	}
	s.districts = districts
	s.subregions.loaded = true
	return nil
}

// SelectSubregion selects a district of the current province, clearing the
// ward and quote, and loads its wards. id 0 clears the selection.
func (s *LocationSelection) SelectSubregion(ctx context.Context, id int) error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return err
	}

	if id == 0 {
		s.district = nil
		s.clearBelowSubregion()
		s.clearError()
		s.mu.Unlock()
		return nil
	}

	idx := slices.IndexFunc(s.districts, func(d ghn.District) bool { return d.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: district %d", utils.ErrUnknownLocation, id)
	}
	district := s.districts[idx]
	s.district = &district
	gen := s.beginLocalities()
	s.mu.Unlock()

	return s.fetchLocalities(ctx, id, gen)
}

// LoadLocalities (re)fetches the wards of the selected district. Any ward
// selection is cleared.
func (s *LocationSelection) LoadLocalities(ctx context.Context) error {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.district == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no district selected", utils.ErrSelectionRequired)
	}
	districtID := s.district.ID
	gen := s.beginLocalities()
	s.mu.Unlock()

	return s.fetchLocalities(ctx, districtID, gen)
}

// beginLocalities clears the ward and quote and starts a ward request.
// Caller holds the lock.
func (s *LocationSelection) beginLocalities() uint64 {
	s.clearBelowSubregion()
	s.clearError()
	return s.localities.begin()
}

func (s *LocationSelection) fetchLocalities(ctx context.Context, districtID int, gen uint64) error {
	wards, err := s.directory.GetWards(ctx, districtID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.localities.settle(gen) {
		return utils.ErrSuperseded
	}
	if err != nil {
		s.fail("Failed to load wards", err)
		return err
	}
	s.wards = wards
	s.localities.loaded = true
	return nil
}

// SelectLocality selects a ward by code and clears any quote. It never
// calculates a quote on its own. An empty code clears the selection.
func (s *LocationSelection) SelectLocality(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.usable(); err != nil {
		return err
	}

	if code == "" {
		s.ward = nil
		s.clearQuote()
		return nil
	}

	idx := slices.IndexFunc(s.wards, func(w ghn.Ward) bool { return w.Code == code })
	if idx < 0 {
		return fmt.Errorf("%w: ward %s", utils.ErrUnknownLocation, code)
	}
	ward := s.wards[idx]
	s.ward = &ward
	s.clearQuote()
	s.clearError()
	return nil
}

// CalculateQuote prices the cart for the selected district and ward. lookup
// is the caller's catalog access and may be nil.
func (s *LocationSelection) CalculateQuote(ctx context.Context, lines []models.CartLine, lookup ProductLookup) (*QuoteResult, error) {
	s.mu.Lock()
	if err := s.usable(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if s.district == nil || s.ward == nil {
		s.clearQuote()
		s.mu.Unlock()
		return nil, utils.ErrIncompleteDestination
	}
	if len(lines) == 0 {
		s.clearQuote()
		s.mu.Unlock()
		return nil, utils.ErrEmptyCart
	}

	dest := models.Destination{DistrictID: s.district.ID, WardCode: s.ward.Code}
	s.quote = nil
	s.quoteFailed = false
	gen := s.quoting.begin()
	s.clearError()
	s.mu.Unlock()

	res, err := s.quoter.QuoteCart(ctx, QuoteInput{
		Lines:       lines,
		Destination: dest,
		Catalog:     lookup,
		SessionID:   s.id,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.quoting.settle(gen) {
		return nil, utils.ErrSuperseded
	}
	if err != nil {
		s.quoteFailed = true
		s.fail("Failed to calculate shipping fee", err)
		return nil, err
	}
	s.quote = res
	s.quoting.loaded = true
	return res, nil
}

// Reset clears every selection, the district and ward lists, the quote and
// the error. The province list is kept.
func (s *LocationSelection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.province = nil
	s.clearBelowRegion()
	if s.configErr == nil {
		s.clearError()
	}
}

// State returns the current state.
func (s *LocationSelection) State() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Snapshot returns a copy of the whole selection.
func (s *LocationSelection) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:               s.id,
		State:            s.stateLocked(),
		ConfigValid:      s.configErr == nil,
		Provinces:        slices.Clone(s.provinces),
		Districts:        slices.Clone(s.districts),
		Wards:            slices.Clone(s.wards),
		SelectedProvince: clonePtr(s.province),
		SelectedDistrict: clonePtr(s.district),
		SelectedWard:     clonePtr(s.ward),
		ShippingFee:      s.quote,
		Error:            s.errMsg,
		ErrorKind:        s.errKind,
		Complete:         s.completeLocked(),
	}
	snap.CompleteAddress = s.addressLocked()
	return snap
}

// IsComplete reports whether province, district and ward are all selected.
func (s *LocationSelection) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completeLocked()
}

// CompleteAddress formats "ward, district, province", or "" when incomplete.
func (s *LocationSelection) CompleteAddress() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addressLocked()
}

// LocationData returns the submitted address, or nil when incomplete.
func (s *LocationSelection) LocationData() *LocationData {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.completeLocked() {
		return nil
	}
	return &LocationData{
		Province:        *s.province,
		District:        *s.district,
		Ward:            *s.ward,
		CompleteAddress: s.addressLocked(),
		ShippingFee:     s.quote,
	}
}

// IdleSince returns how long the selection has gone without a call.
func (s *LocationSelection) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive)
}

// usable refreshes the activity time and rejects calls in the ConfigError
// state. Caller holds the lock.
func (s *LocationSelection) usable() error {
	s.touch()
	return s.configErr
}

func (s *LocationSelection) touch() {
	s.lastActive = time.Now()
}

func (s *LocationSelection) clearBelowRegion() {
	s.district = nil
	s.districts = nil
	s.subregions.cancel()
	s.clearBelowSubregion()
}

func (s *LocationSelection) clearBelowSubregion() {
	s.ward = nil
	s.wards = nil
	s.localities.cancel()
	s.clearQuote()
}

func (s *LocationSelection) clearQuote() {
	s.quote = nil
	s.quoteFailed = false
	s.quoting.cancel()
}

func (s *LocationSelection) clearError() {
	s.errMsg = ""
	s.errKind = ""
}

func (s *LocationSelection) fail(prefix string, err error) {
	s.errMsg = fmt.Sprintf("%s: %s", prefix, err.Error())
	s.errKind = errorKind(err)
	log.Warn().Err(err).Str("session_id", s.id).Msg(prefix)
}

// stateLocked derives the state from the per-level progress. The deepest
// in-flight request wins; otherwise the deepest fully loaded level.
func (s *LocationSelection) stateLocked() SelectionState {
	switch {
	case s.configErr != nil:
		return StateConfigError
	case s.quoting.pending:
		return StateQuoteCalculating
	case s.localities.pending:
		return StateLocalitiesLoading
	case s.subregions.pending:
		return StateSubregionsLoading
	case s.regions.pending:
		return StateRegionsLoading
	case s.quote != nil:
		return StateQuoteReady
	case s.quoteFailed:
		return StateQuoteFailed
	case s.localities.loaded:
		return StateLocalitiesLoaded
	case s.subregions.loaded:
		return StateSubregionsLoaded
	case s.regions.loaded:
		return StateRegionsLoaded
	default:
		return StateIdle
	}
}

func (s *LocationSelection) completeLocked() bool {
	return s.province != nil && s.district != nil && s.ward != nil
}

func (s *LocationSelection) addressLocked() string {
	if !s.completeLocked() {
		return ""
	}
	return fmt.Sprintf("%s, %s, %s", s.ward.Name, s.district.Name, s.province.Name)
}

// errorKind tags an error for callers that branch on it.
func errorKind(err error) string {
	if kind, ok := ghn.KindOf(err); ok {
		return string(kind)
	}
	switch {
	case errors.Is(err, utils.ErrEmptyCart),
		errors.Is(err, utils.ErrIncompleteDestination),
		errors.Is(err, utils.ErrUnknownLocation),
		errors.Is(err, utils.ErrSelectionRequired):
		return ErrorKindValidation
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return string(ghn.KindTransport)
	default:
		return ErrorKindInternal
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
