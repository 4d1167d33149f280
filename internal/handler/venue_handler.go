package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuebook/venuebook/internal/dto"
	"github.com/venuebook/venuebook/internal/middleware"
	"github.com/venuebook/venuebook/internal/service"
	"github.com/venuebook/venuebook/pkg/response"
)

// VenueHandler serves the /venues endpoints
type VenueHandler struct {
	venues   service.VenueService
	bookings service.BookingService
}

// NewVenueHandler creates a new venue handler
func NewVenueHandler(venues service.VenueService, bookings service.BookingService) *VenueHandler {
	return &VenueHandler{venues: venues, bookings: bookings}
}

// Register handles POST /venues/register
func (h *VenueHandler) Register(c *gin.Context) {
	var req dto.RegisterVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Invalid request body.")
		return
	}

	principal := middleware.GetPrincipal(c)
	venue, err := h.venues.Register(c.Request.Context(), principal, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, dto.RegisterVenueResponse{VenueID: venue.ID})
}

// Update handles PATCH /venues/:id
func (h *VenueHandler) Update(c *gin.Context) {
	var req dto.UpdateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Invalid request body.")
		return
	}

	principal := middleware.GetPrincipal(c)
	venue, err := h.venues.Update(c.Request.Context(), principal, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, dto.VenueFromDomain(venue))
}

// Search handles GET /venues/search
func (h *VenueHandler) Search(c *gin.Context) {
	var query dto.SearchVenuesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, http.StatusUnprocessableEntity, "Invalid query parameters.")
		return
	}

	venues, err := h.venues.Search(c.Request.Context(), &query)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]dto.VenueResponse, 0, len(venues))
	for _, v := range venues {
		out = append(out, dto.VenueFromDomain(v))
	}
	response.Success(c, http.StatusOK, dto.VenueListResponse{Venues: out})
}

// Availability handles GET /venues/:id/availability?date=YYYY-MM-DD
func (h *VenueHandler) Availability(c *gin.Context) {
	resp, err := h.bookings.VenueAvailability(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}
