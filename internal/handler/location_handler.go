package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bookstore_api/internal/service"
	"github.com/GTDGit/bookstore_api/internal/utils"
)

// LocationHandler serves the GHN address hierarchy.
type LocationHandler struct {
	locationService *service.LocationService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// GetProvinces handles GET /v1/locations/provinces
func (h *LocationHandler) GetProvinces(c *gin.Context) {
	provinces, err := h.locationService.Provinces(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Provinces retrieved", provinces)
}

// GetDistricts handles GET /v1/locations/provinces/:provinceId/districts
func (h *LocationHandler) GetDistricts(c *gin.Context) {
	provinceID, err := strconv.Atoi(c.Param("provinceId"))
	if err != nil || provinceID <= 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid province id")
		return
	}

	districts, err := h.locationService.Districts(c.Request.Context(), provinceID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Districts retrieved", districts)
}

// GetWards handles GET /v1/locations/districts/:districtId/wards
func (h *LocationHandler) GetWards(c *gin.Context) {
	districtID, err := strconv.Atoi(c.Param("districtId"))
	if err != nil || districtID <= 0 {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid district id")
		return
	}

	wards, err := h.locationService.Wards(c.Request.Context(), districtID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Wards retrieved", wards)
}

// Search handles GET /v1/locations/search?province=&district=&ward=
func (h *LocationHandler) Search(c *gin.Context) {
	province := c.Query("province")
	if province == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "province is required")
		return
	}

	match, err := h.locationService.Search(c.Request.Context(), province, c.Query("district"), c.Query("ward"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Location matched", match)
}
