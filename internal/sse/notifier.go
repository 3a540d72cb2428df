package sse

import (
	"time"

	"github.com/GTDGit/bookstore_api/internal/models"
)

// QuoteNotifier is what the shipping service calls after logging a quote.
type QuoteNotifier interface {
	NotifyQuoteCreated(rec *models.QuoteRecord)
}

// HubNotifier implements QuoteNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyQuoteCreated(rec *models.QuoteRecord) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&QuoteEvent{
		Event:         EventQuoteCreated,
		QuoteID:       rec.ID,
		SessionID:     rec.SessionID,
		ToDistrictID:  rec.ToDistrictID,
		ToWardCode:    rec.ToWardCode,
		ServiceTypeID: rec.ServiceTypeID,
		Weight:        rec.Weight,
		Total:         rec.Total,
		Timestamp:     time.Now(),
	})
}
