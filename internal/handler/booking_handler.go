package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/internal/middleware"
	"github.com/venuebook/venuebook/internal/service"
	"github.com/venuebook/venuebook/pkg/response"
)

// BookingHandler serves the /bookings endpoints
type BookingHandler struct {
	bookings service.BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create handles POST /bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Invalid request body.")
		return
	}

	principal := middleware.GetPrincipal(c)
	booking, err := h.bookings.Create(c.Request.Context(), principal, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, dto.CreateBookingResponse{
		BookingID: booking.ID,
		Price:     booking.Price,
		Status:    string(booking.Status),
	})
}

// List handles GET /bookings: the caller's own bookings, or every booking
// across owned venues when the caller is an owner.
func (h *BookingHandler) List(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	bookings, err := h.bookings.List(c.Request.Context(), principal)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.BookingListResponse{Bookings: dto.BookingsFromDomain(bookings)})
}

// MyRequests handles GET /bookings/my-requests
func (h *BookingHandler) MyRequests(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	bookings, err := h.bookings.ListMyRequests(c.Request.Context(), principal)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.BookingListResponse{Bookings: dto.BookingsFromDomain(bookings)})
}

// ForMyVenues handles GET /bookings/for-my-venues?status=...
func (h *BookingHandler) ForMyVenues(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	bookings, err := h.bookings.ListForMyVenues(c.Request.Context(), principal, c.Query("status"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.BookingListResponse{Bookings: dto.BookingsFromDomain(bookings)})
}

// UpdateStatus handles PATCH /bookings/:id
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Invalid request body.")
		return
	}

	principal := middleware.GetPrincipal(c)
	booking, err := h.bookings.UpdateStatus(c.Request.Context(), principal, c.Param("id"), req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.BookingWrapper{Booking: dto.BookingFromDomain(booking)})
}

// Withdraw handles DELETE /bookings/:id, a cancellation open to the booker
// and the venue owner.
func (h *BookingHandler) Withdraw(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	if err := h.bookings.Withdraw(c.Request.Context(), principal, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.CancelResponse{Cancelled: true})
}
