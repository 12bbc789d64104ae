package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eventlane/ticket-inventory/internal/core/domain"
	"github.com/eventlane/ticket-inventory/internal/core/services"
)

type InventoryHandler struct {
	engine    *services.InventoryEngine
	projector *services.AnalyticsProjector
}

func NewInventoryHandler(engine *services.InventoryEngine, projector *services.AnalyticsProjector) *InventoryHandler {
	return &InventoryHandler{engine: engine, projector: projector}
}

// Routes mounts the inventory API onto a chi router.
func (h *InventoryHandler) Routes(r chi.Router) {
	r.Post("/inventory", h.CreateInventory)
	r.Get("/inventory/{eventID}/availability", h.GetAvailability)
	r.Get("/inventory/{eventID}/analytics", h.GetAnalytics)
	r.Put("/inventory/{eventID}/capacity", h.ResizeCapacity)
	r.Post("/inventory/{eventID}/reservations", h.Reserve)
	r.Post("/inventory/{eventID}/cancellations", h.Cancel)
	r.Post("/reservations/{tokenID}/confirm", h.Confirm)
	r.Post("/reservations/{tokenID}/release", h.Release)
}

type createInventoryRequest struct {
	EventID       string `json:"event_id"`
	TotalCapacity int    `json:"total_capacity"`
	UnitPrice     string `json:"unit_price"`
}

type inventoryResponse struct {
	EventID       string `json:"event_id"`
	TotalCapacity int    `json:"total_capacity"`
	Reserved      int    `json:"reserved"`
	Confirmed     int    `json:"confirmed"`
	Remaining     int    `json:"remaining"`
	UnitPrice     string `json:"unit_price"`
}

func toInventoryResponse(rec domain.InventoryRecord) inventoryResponse {
	return inventoryResponse{
		EventID:       rec.EventID.String(),
		TotalCapacity: rec.TotalCapacity,
		Reserved:      rec.Reserved,
		Confirmed:     rec.Confirmed,
		Remaining:     rec.Remaining(),
		UnitPrice:     rec.UnitPrice.String(),
	}
}

func (h *InventoryHandler) CreateInventory(w http.ResponseWriter, r *http.Request) {
	var req createInventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid unit price")
		return
	}

	rec, err := h.engine.CreateInventory(r.Context(), eventID, req.TotalCapacity, unitPrice)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInventoryResponse(rec))
}

func (h *InventoryHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, chi.URLParam(r, "eventID"), "invalid event id")
	if !ok {
		return
	}

	av, err := h.projector.Availability(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

func (h *InventoryHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, chi.URLParam(r, "eventID"), "invalid event id")
	if !ok {
		return
	}

	an, err := h.projector.Summary(r.Context(), eventID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, an)
}

type resizeRequest struct {
	TotalCapacity int `json:"total_capacity"`
}

func (h *InventoryHandler) ResizeCapacity(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, chi.URLParam(r, "eventID"), "invalid event id")
	if !ok {
		return
	}

	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	rec, err := h.engine.ResizeCapacity(r.Context(), eventID, req.TotalCapacity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryResponse(rec))
}

type reserveRequest struct {
	Quantity int    `json:"quantity"`
	ActorRef string `json:"actor_ref"`
}

type tokenResponse struct {
	TokenID   string `json:"token_id"`
	EventID   string `json:"event_id"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at"`
}

func toTokenResponse(token domain.ReservationToken) tokenResponse {
	return tokenResponse{
		TokenID:   token.ID.String(),
		EventID:   token.EventID.String(),
		Quantity:  token.Quantity,
		Status:    string(token.Status),
		ExpiresAt: token.ExpiresAt.Format(timeFormat),
	}
}

func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, chi.URLParam(r, "eventID"), "invalid event id")
	if !ok {
		return
	}

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	token, err := h.engine.Reserve(r.Context(), services.ReserveInput{
		EventID:  eventID,
		Quantity: req.Quantity,
		ActorRef: req.ActorRef,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTokenResponse(token))
}

func (h *InventoryHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseID(w, chi.URLParam(r, "tokenID"), "invalid token id")
	if !ok {
		return
	}

	token, err := h.engine.Confirm(r.Context(), tokenID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenResponse(token))
}

type releaseRequest struct {
	ActorRef string `json:"actor_ref"`
}

func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := parseID(w, chi.URLParam(r, "tokenID"), "invalid token id")
	if !ok {
		return
	}

	var req releaseRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.engine.Release(r.Context(), tokenID, req.ActorRef); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "released"})
}

type cancelRequest struct {
	Quantity     int    `json:"quantity"`
	RefundAmount string `json:"refund_amount"`
	ActorRef     string `json:"actor_ref"`
}

func (h *InventoryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, chi.URLParam(r, "eventID"), "invalid event id")
	if !ok {
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	refund, err := decimal.NewFromString(req.RefundAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid refund amount")
		return
	}

	if err := h.engine.Cancel(r.Context(), services.CancelInput{
		EventID:      eventID,
		Quantity:     req.Quantity,
		RefundAmount: refund,
		ActorRef:     req.ActorRef,
	}); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func parseID(w http.ResponseWriter, raw, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, msg)
		return uuid.UUID{}, false
	}
	return id, true
}
