package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for Reservation Service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// Allocate godoc
// @Summary Reserve stock for an order
// @Description Reserve units of a product from the caller's warehouse, oldest lot first
// @Tags Reservations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param request body AllocateRequest true "Allocation request"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 401 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string,data=object{available=string,requested=int}}
// @Failure 412 {object} object{success=bool,error=string}
// @Failure 422 {object} object{success=bool,error=string}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /api/orders/{order_id}/reservations [post]
func (h *ReservationHandler) AllocateDoc() {}

// ListReservations godoc
// @Summary List an order's reservations
// @Description List reservations of an order, optionally filtered by status
// @Tags Reservations
// @Security BearerAuth
// @Produce json
// @Param order_id path int true "Order ID"
// @Param status query string false "ACTIVE or RELEASED"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 422 {object} object{success=bool,error=string}
// @Router /api/orders/{order_id}/reservations [get]
func (h *ReservationHandler) ListReservationsDoc() {}

// Release godoc
// @Summary Release an order's reservations
// @Description Release the order's ACTIVE reservations of one product, or all of them when product_id is omitted
// @Tags Reservations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param request body ReleaseRequest false "Release request"
// @Success 200 {object} object{success=bool,message=string,data=object{quantity_released=int,reservations_released=int}}
// @Failure 422 {object} object{success=bool,error=string}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /api/orders/{order_id}/reservations/release [post]
func (h *ReservationHandler) ReleaseDoc() {}

// ExpireReservations godoc
// @Summary Release expired reservations
// @Description Release every ACTIVE reservation past its expiry (Admin only)
// @Tags Reservations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ExpireRequest false "Release reason"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/reservations/expire [post]
func (h *ReservationHandler) ExpireReservationsDoc() {}

// GetAvailability godoc
// @Summary Product availability
// @Description Per-lot and total availability of a product in the caller's warehouse
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Param product_id path int true "Product ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 412 {object} object{success=bool,error=string}
// @Router /api/products/{product_id}/availability [get]
func (h *ReservationHandler) GetAvailabilityDoc() {}

// ListMovements godoc
// @Summary Stock movement ledger
// @Description Ledger entries of a product in the caller's warehouse, oldest first
// @Tags Stock
// @Security BearerAuth
// @Produce json
// @Param product_id path int true "Product ID"
// @Param limit query int false "Limit (default 50, max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 412 {object} object{success=bool,error=string}
// @Router /api/products/{product_id}/movements [get]
func (h *ReservationHandler) ListMovementsDoc() {}

// ReceiveLot godoc
// @Summary Receive a stock lot
// @Description Register a new lot in the caller's warehouse (Admin only)
// @Tags Stock
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body ReceiveLotRequest true "Lot data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 403 {object} object{success=bool,error=string}
// @Failure 422 {object} object{success=bool,error=string}
// @Router /api/lots [post]
func (h *ReservationHandler) ReceiveLotDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *ReservationHandler) HealthCheckDoc() {}
