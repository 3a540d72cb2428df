package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/service"
	"github.com/GTDGit/bookstore_api/internal/utils"
	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// CheckoutHandler drives per-checkout location selections.
type CheckoutHandler struct {
	sessions *service.SessionStore
	catalog  *catalog.Client
}

// NewCheckoutHandler creates a new CheckoutHandler. catalogClient may be nil.
func NewCheckoutHandler(sessions *service.SessionStore, catalogClient *catalog.Client) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, catalog: catalogClient}
}

// CreateSession handles POST /v1/checkout/sessions
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	sel, err := h.sessions.Create(c.Request.Context())
	if sel == nil {
		respondError(c, err)
		return
	}
	h.respond(c, 201, "Checkout session created", sel, err)
}

// GetSession handles GET /v1/checkout/sessions/:id
func (h *CheckoutHandler) GetSession(c *gin.Context) {
	sel, ok := h.session(c)
	if !ok {
		return
	}
	utils.Success(c, 200, "Checkout session retrieved", sel.Snapshot())
}

// DeleteSession handles DELETE /v1/checkout/sessions/:id
func (h *CheckoutHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Checkout session deleted", nil)
}

// SelectProvince handles PUT /v1/checkout/sessions/:id/province
func (h *CheckoutHandler) SelectProvince(c *gin.Context) {
	var req struct {
		ProvinceID *int `json:"provinceId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	sel, ok := h.session(c)
	if !ok {
		return
	}

	err := sel.SelectRegion(c.Request.Context(), derefInt(req.ProvinceID))
	h.respond(c, 200, "Province selected", sel, err)
}

// SelectDistrict handles PUT /v1/checkout/sessions/:id/district
func (h *CheckoutHandler) SelectDistrict(c *gin.Context) {
	var req struct {
		DistrictID *int `json:"districtId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	sel, ok := h.session(c)
	if !ok {
		return
	}

	err := sel.SelectSubregion(c.Request.Context(), derefInt(req.DistrictID))
	h.respond(c, 200, "District selected", sel, err)
}

// SelectWard handles PUT /v1/checkout/sessions/:id/ward
func (h *CheckoutHandler) SelectWard(c *gin.Context) {
	var req struct {
		WardCode string `json:"wardCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	sel, ok := h.session(c)
	if !ok {
		return
	}

	err := sel.SelectLocality(req.WardCode)
	h.respond(c, 200, "Ward selected", sel, err)
}

// Reload handles POST /v1/checkout/sessions/:id/reload?level=provinces|districts|wards
func (h *CheckoutHandler) Reload(c *gin.Context) {
	sel, ok := h.session(c)
	if !ok {
		return
	}

	var err error
	switch c.DefaultQuery("level", "provinces") {
	case "provinces":
		err = sel.LoadRegions(c.Request.Context())
	case "districts":
		err = sel.LoadSubregions(c.Request.Context())
	case "wards":
		err = sel.LoadLocalities(c.Request.Context())
	default:
		utils.Error(c, 400, "INVALID_REQUEST", "level must be provinces, districts or wards")
		return
	}
	h.respond(c, 200, "Locations reloaded", sel, err)
}

// CalculateQuote handles POST /v1/checkout/sessions/:id/quote
func (h *CheckoutHandler) CalculateQuote(c *gin.Context) {
	var req struct {
		Items []models.CartLine `json:"items" binding:"dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}
	sel, ok := h.session(c)
	if !ok {
		return
	}

	_, err := sel.CalculateQuote(c.Request.Context(), req.Items, lookupFor(c, h.catalog))
	h.respond(c, 200, "Shipping fee calculated", sel, err)
}

// Reset handles POST /v1/checkout/sessions/:id/reset
func (h *CheckoutHandler) Reset(c *gin.Context) {
	sel, ok := h.session(c)
	if !ok {
		return
	}
	sel.Reset()
	utils.Success(c, 200, "Checkout session reset", sel.Snapshot())
}

// GetLocationData handles GET /v1/checkout/sessions/:id/location
func (h *CheckoutHandler) GetLocationData(c *gin.Context) {
	sel, ok := h.session(c)
	if !ok {
		return
	}
	data := sel.LocationData()
	if data == nil {
		utils.Error(c, 400, utils.ErrSelectionRequired.Error(), "Province, district and ward must be selected")
		return
	}
	utils.Success(c, 200, "Location data retrieved", data)
}

func (h *CheckoutHandler) session(c *gin.Context) (*service.LocationSelection, bool) {
	sel, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return sel, true
}

// respond writes the session snapshot. Carrier failures and superseded calls
// are part of the session state and still answer with the snapshot; request
// mistakes are reported as errors.
func (h *CheckoutHandler) respond(c *gin.Context, code int, message string, sel *service.LocationSelection, err error) {
	if err != nil {
		if _, carrier := ghn.KindOf(err); !carrier && !errors.Is(err, utils.ErrSuperseded) {
			respondError(c, err)
			return
		}
	}
	utils.Success(c, code, message, sel.Snapshot())
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
