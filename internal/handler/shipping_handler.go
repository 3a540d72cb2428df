package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bookstore_api/internal/catalog"
	"github.com/GTDGit/bookstore_api/internal/models"
	"github.com/GTDGit/bookstore_api/internal/service"
	"github.com/GTDGit/bookstore_api/internal/utils"
)

// ShippingHandler quotes carts without a checkout session.
type ShippingHandler struct {
	shippingService *service.ShippingService
	catalog         *catalog.Client
}

// NewShippingHandler creates a new ShippingHandler. catalogClient may be nil,
// in which case lines without dimensions fall back to defaults.
func NewShippingHandler(shippingService *service.ShippingService, catalogClient *catalog.Client) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService, catalog: catalogClient}
}

type feeRequest struct {
	Items       []models.CartLine  `json:"items" binding:"dive"`
	Destination models.Destination `json:"destination"`
}

// CalculateFee handles POST /v1/shipping/fee
func (h *ShippingHandler) CalculateFee(c *gin.Context) {
	var req feeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.shippingService.QuoteCart(c.Request.Context(), service.QuoteInput{
		Lines:       req.Items,
		Destination: req.Destination,
		Catalog:     lookupFor(c, h.catalog),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Shipping fee calculated", res)
}

// Estimate handles POST /v1/shipping/estimate. It aggregates the parcel
// without calling the carrier.
func (h *ShippingHandler) Estimate(c *gin.Context) {
	var req feeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	estimate, err := h.shippingService.BuildEstimate(c.Request.Context(), req.Items, lookupFor(c, h.catalog))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Shipment estimated", estimate)
}

// GetServices handles POST /v1/shipping/services
func (h *ShippingHandler) GetServices(c *gin.Context) {
	var req struct {
		FromDistrictID int `json:"fromDistrictId" binding:"required"`
		ToDistrictID   int `json:"toDistrictId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "fromDistrictId and toDistrictId are required")
		return
	}

	services, err := h.shippingService.AvailableServices(c.Request.Context(), req.FromDistrictID, req.ToDistrictID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Services retrieved", services)
}

// GetOrder handles GET /v1/shipping/orders/:code
func (h *ShippingHandler) GetOrder(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "Order code is required")
		return
	}

	order, err := h.shippingService.OrderDetail(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 200, "Order retrieved", order)
}

type createOrderRequest struct {
	Items         []models.CartLine  `json:"items" binding:"dive"`
	Destination   models.Destination `json:"destination"`
	Recipient     service.Recipient  `json:"recipient"`
	PaymentMethod string             `json:"paymentMethod"`
	CodAmount     *float64           `json:"codAmount"`
	ServiceID     int                `json:"serviceId"`
}

// CreateOrder handles POST /v1/shipping/orders. The order is submitted to
// the carrier once; callers must not resend on a timeout.
func (h *ShippingHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.shippingService.CreateOrder(c.Request.Context(), service.OrderInput{
		Lines:         req.Items,
		Recipient:     req.Recipient,
		Destination:   req.Destination,
		PaymentMethod: req.PaymentMethod,
		CodAmount:     req.CodAmount,
		ServiceID:     req.ServiceID,
		Catalog:       lookupFor(c, h.catalog),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, 201, "Shipping order created", res)
}

// lookupFor binds the catalog client to the caller's bearer token. A nil
// client yields a nil interface, not a typed nil.
func lookupFor(c *gin.Context, client *catalog.Client) service.ProductLookup {
	if client == nil {
		return nil
	}
	return client.WithCredentials(catalog.CredentialsFromHeader(c.GetHeader("Authorization")))
}
