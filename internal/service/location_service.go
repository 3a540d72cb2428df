package service

import (
	"context"
	"fmt"

	"github.com/GTDGit/bookstore_api/internal/utils"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// LocationMatch is a province/district/ward triple resolved from free text.
type LocationMatch struct {
	Province *ghn.Province `json:"province"`
	District *ghn.District `json:"district,omitempty"`
	Ward     *ghn.Ward     `json:"ward,omitempty"`
}

// LocationService exposes the carrier address hierarchy and name lookups.
type LocationService struct {
	directory LocationDirectory
}

// NewLocationService constructs a LocationService.
func NewLocationService(directory LocationDirectory) *LocationService {
	return &LocationService{directory: directory}
}

// ValidateConfig reports whether the carrier is usable.
func (s *LocationService) ValidateConfig() error {
	return s.directory.ValidateConfig()
}

func (s *LocationService) Provinces(ctx context.Context) ([]ghn.Province, error) {
	return s.directory.GetProvinces(ctx)
}

func (s *LocationService) Districts(ctx context.Context, provinceID int) ([]ghn.District, error) {
	return s.directory.GetDistricts(ctx, provinceID)
}

func (s *LocationService) Wards(ctx context.Context, districtID int) ([]ghn.Ward, error) {
	return s.directory.GetWards(ctx, districtID)
}

// FindProvince matches a province by name, accent-insensitively.
func (s *LocationService) FindProvince(ctx context.Context, query string) (*ghn.Province, error) {
	provinces, err := s.directory.GetProvinces(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := matchLocation(provinces, query,
		func(p ghn.Province) string { return p.Name },
		func(p ghn.Province) []string { return p.NameExtension })
	if !ok {
		return nil, fmt.Errorf("%w: province %q", utils.ErrUnknownLocation, query)
	}
	return &p, nil
}

// FindDistrict matches a district of a province by name.
func (s *LocationService) FindDistrict(ctx context.Context, provinceID int, query string) (*ghn.District, error) {
	districts, err := s.directory.GetDistricts(ctx, provinceID)
	if err != nil {
		return nil, err
	}
	d, ok := matchLocation(districts, query,
		func(d ghn.District) string { return d.Name },
		func(d ghn.District) []string { return d.NameExtension })
	if !ok {
		return nil, fmt.Errorf("%w: district %q", utils.ErrUnknownLocation, query)
	}
	return &d, nil
}

// FindWard matches a ward of a district by name.
func (s *LocationService) FindWard(ctx context.Context, districtID int, query string) (*ghn.Ward, error) {
	wards, err := s.directory.GetWards(ctx, districtID)
	if err != nil {
		return nil, err
	}
	w, ok := matchLocation(wards, query,
		func(w ghn.Ward) string { return w.Name },
		func(w ghn.Ward) []string { return w.NameExtension })
	if !ok {
		return nil, fmt.Errorf("%w: ward %q", utils.ErrUnknownLocation, query)
	}
	return &w, nil
}

// Search resolves as much of province → district → ward as the queries
// allow. Empty district or ward queries stop the descent.
func (s *LocationService) Search(ctx context.Context, province, district, ward string) (*LocationMatch, error) {
	p, err := s.FindProvince(ctx, province)
	if err != nil {
		return nil, err
	}
	match := &LocationMatch{Province: p}
	if district == "" {
		return match, nil
	}

	d, err := s.FindDistrict(ctx, p.ID, district)
	if err != nil {
		return nil, err
	}
	match.District = d
	if ward == "" {
		return match, nil
	}

	w, err := s.FindWard(ctx, d.ID, ward)
	if err != nil {
		return nil, err
	}
	match.Ward = w
	return match, nil
}
