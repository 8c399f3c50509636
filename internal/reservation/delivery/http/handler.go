package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/internal/reservation/usecase/command"
	"github.com/tair/lot-reservation/internal/reservation/usecase/query"
	"github.com/tair/lot-reservation/pkg/logger"
)

// ReservationHandler handles HTTP requests for reservations and stock lots
type ReservationHandler struct {
	// Command handlers
	allocateHandler         *command.AllocateHandler
	releaseByProductHandler *command.ReleaseByProductHandler
	releaseAllHandler       *command.ReleaseAllHandler
	releaseExpiredHandler   *command.ReleaseExpiredHandler
	receiveLotHandler       *command.ReceiveLotHandler

	// Query handlers
	availabilityHandler     *query.AvailabilityHandler
	listMovementsHandler    *query.ListMovementsHandler
	listReservationsHandler *query.ListReservationsHandler
}

// NewReservationHandler creates a handler from its command and query handlers
func NewReservationHandler(
	allocateHandler *command.AllocateHandler,
	releaseByProductHandler *command.ReleaseByProductHandler,
	releaseAllHandler *command.ReleaseAllHandler,
	releaseExpiredHandler *command.ReleaseExpiredHandler,
	receiveLotHandler *command.ReceiveLotHandler,
	availabilityHandler *query.AvailabilityHandler,
	listMovementsHandler *query.ListMovementsHandler,
	listReservationsHandler *query.ListReservationsHandler,
) *ReservationHandler {
	return &ReservationHandler{
		allocateHandler:         allocateHandler,
		releaseByProductHandler: releaseByProductHandler,
		releaseAllHandler:       releaseAllHandler,
		releaseExpiredHandler:   releaseExpiredHandler,
		receiveLotHandler:       receiveLotHandler,
		availabilityHandler:     availabilityHandler,
		listMovementsHandler:    listMovementsHandler,
		listReservationsHandler: listReservationsHandler,
	}
}

// Response is the JSON envelope of every endpoint
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AllocateRequest is the body of POST /api/orders/{order_id}/reservations
type AllocateRequest struct {
	OrderNumber    string `json:"order_number"`
	DocumentType   string `json:"document_type"`
	ProductID      uint   `json:"product_id"`
	Quantity       int    `json:"quantity"`
	ExpirationDays int    `json:"expiration_days"`
}

// ReleaseRequest is the body of POST /api/orders/{order_id}/reservations/release.
// Without ProductID every ACTIVE reservation of the order is released.
type ReleaseRequest struct {
	OrderNumber string `json:"order_number"`
	ProductID   uint   `json:"product_id"`
	Reason      string `json:"reason"`
}

// ReceiveLotRequest is the body of POST /api/lots
type ReceiveLotRequest struct {
	ProductID   uint            `json:"product_id"`
	Label       string          `json:"label"`
	Quantity    decimal.Decimal `json:"quantity"`
	DocumentRef string          `json:"document_ref"`
}

// ExpireRequest is the optional body of POST /api/reservations/expire
type ExpireRequest struct {
	Reason string `json:"reason"`
}

// Allocate handles POST /api/orders/{order_id}/reservations
func (h *ReservationHandler) Allocate(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "order_id", "Invalid order ID")
	if !ok {
		return
	}

	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result := h.allocateHandler.Handle(r.Context(), command.AllocateCommand{
		Actor: actorFromRequest(r),
		Order: domain.OrderRef{
			ID:           orderID,
			Number:       req.OrderNumber,
			DocumentType: req.DocumentType,
		},
		ProductID:      req.ProductID,
		Quantity:       req.Quantity,
		ExpirationDays: req.ExpirationDays,
	})

	switch res := result.(type) {
	case *domain.Allocated:
		respondJSON(w, http.StatusCreated, Response{
			Success: true,
			Message: "Stock reserved successfully",
			Data:    res,
		})
	case *domain.InsufficientStock:
		respondJSON(w, http.StatusConflict, Response{
			Success: false,
			Error:   "Insufficient stock",
			Data:    res,
		})
	case *domain.NoWarehouse:
		respondError(w, http.StatusPreconditionFailed, res.Err.Error())
	case *domain.AllocationRejected:
		respondError(w, http.StatusUnprocessableEntity, res.Err.Error())
	case *domain.AllocationFailed:
		respondError(w, http.StatusInternalServerError, res.Message)
	default:
		respondError(w, http.StatusInternalServerError, "Unexpected allocation result")
	}
}

// Release handles POST /api/orders/{order_id}/reservations/release
func (h *ReservationHandler) Release(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "order_id", "Invalid order ID")
	if !ok {
		return
	}

	var req ReleaseRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	order := domain.OrderRef{ID: orderID, Number: req.OrderNumber}
	actor := actorFromRequest(r)

	var result domain.ReleaseResult
	if req.ProductID != 0 {
		result = h.releaseByProductHandler.Handle(r.Context(), command.ReleaseByProductCommand{
			Actor:     actor,
			Order:     order,
			ProductID: req.ProductID,
			Reason:    req.Reason,
		})
	} else {
		result = h.releaseAllHandler.Handle(r.Context(), command.ReleaseAllCommand{
			Actor:  actor,
			Order:  order,
			Reason: req.Reason,
		})
	}

	respondRelease(w, result)
}

// ExpireReservations handles POST /api/reservations/expire
func (h *ReservationHandler) ExpireReservations(w http.ResponseWriter, r *http.Request) {
	var req ExpireRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	respondRelease(w, h.releaseExpiredHandler.Handle(r.Context(), command.ReleaseExpiredCommand{
		Actor:  actorFromRequest(r),
		Reason: req.Reason,
	}))
}

// ListReservations handles GET /api/orders/{order_id}/reservations
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "order_id", "Invalid order ID")
	if !ok {
		return
	}

	reservations, err := h.listReservationsHandler.Handle(r.Context(), query.ListReservationsQuery{
		OrderID: orderID,
		Status:  domain.ReservationStatus(r.URL.Query().Get("status")),
	})
	if err != nil {
		respondDomainError(r.Context(), w, err, "Failed to list reservations")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: reservations})
}

// GetAvailability handles GET /api/products/{product_id}/availability
func (h *ReservationHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "product_id", "Invalid product ID")
	if !ok {
		return
	}

	summary, err := h.availabilityHandler.Handle(r.Context(), query.AvailabilityQuery{
		Actor:     actorFromRequest(r),
		ProductID: productID,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err, "Failed to get availability")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: summary})
}

// ListMovements handles GET /api/products/{product_id}/movements
func (h *ReservationHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "product_id", "Invalid product ID")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	movements, err := h.listMovementsHandler.Handle(r.Context(), query.ListMovementsQuery{
		Actor:     actorFromRequest(r),
		ProductID: productID,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err, "Failed to list movements")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: movements})
}

// ReceiveLot handles POST /api/lots
func (h *ReservationHandler) ReceiveLot(w http.ResponseWriter, r *http.Request) {
	var req ReceiveLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lot, err := h.receiveLotHandler.Handle(r.Context(), command.ReceiveLotCommand{
		Actor:       actorFromRequest(r),
		ProductID:   req.ProductID,
		Label:       req.Label,
		Quantity:    req.Quantity,
		DocumentRef: req.DocumentRef,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err, "Failed to receive lot")
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Lot received successfully",
		Data:    lot,
	})
}

// RegisterRoutes registers all reservation routes
func (h *ReservationHandler) RegisterRoutes(router *mux.Router, validator TokenValidator) {
	authenticated := AuthMiddleware(validator)
	admin := AdminMiddleware(validator)

	router.HandleFunc("/api/orders/{order_id}/reservations", authenticated(h.Allocate)).Methods("POST")
	router.HandleFunc("/api/orders/{order_id}/reservations", authenticated(h.ListReservations)).Methods("GET")
	router.HandleFunc("/api/orders/{order_id}/reservations/release", authenticated(h.Release)).Methods("POST")
	router.HandleFunc("/api/products/{product_id}/availability", authenticated(h.GetAvailability)).Methods("GET")
	router.HandleFunc("/api/products/{product_id}/movements", authenticated(h.ListMovements)).Methods("GET")

	// Admin routes
	router.HandleFunc("/api/lots", admin(h.ReceiveLot)).Methods("POST")
	router.HandleFunc("/api/reservations/expire", admin(h.ExpireReservations)).Methods("POST")
}

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterHealthCheck registers health check endpoint
func (h *ReservationHandler) RegisterHealthCheck(router *mux.Router, db Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Reservation service is healthy",
		})
	}).Methods("GET")
}

func respondRelease(w http.ResponseWriter, result domain.ReleaseResult) {
	switch res := result.(type) {
	case *domain.Released:
		message := "Reservations released successfully"
		if res.ReservationsReleased == 0 {
			message = "No active reservations to release"
		}
		respondJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: res})
	case *domain.ReleaseRejected:
		respondError(w, http.StatusUnprocessableEntity, res.Err.Error())
	case *domain.ReleaseFailed:
		respondError(w, http.StatusInternalServerError, res.Message)
	default:
		respondError(w, http.StatusInternalServerError, "Unexpected release result")
	}
}

// respondDomainError maps query and receipt errors onto status codes
func respondDomainError(ctx context.Context, w http.ResponseWriter, err error, fallback string) {
	switch {
	case domain.IsWarehouseError(err):
		respondError(w, http.StatusPreconditionFailed, err.Error())
	case errors.Is(err, domain.ErrUnknownProduct):
		respondError(w, http.StatusNotFound, err.Error())
	case domain.IsValidationError(err):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error(ctx).Err(err).Msg(fallback)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func pathID(w http.ResponseWriter, r *http.Request, name, message string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		respondError(w, http.StatusBadRequest, message)
		return 0, false
	}
	return uint(id), true
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
