package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/explore-grabby/booking-backend/internal/auth"
	"github.com/explore-grabby/booking-backend/internal/booking"
	"github.com/explore-grabby/booking-backend/internal/calendar"
	"github.com/explore-grabby/booking-backend/internal/pkg/request"
	"github.com/explore-grabby/booking-backend/internal/pkg/response"
)

type BookingHandler struct {
	service   booking.Service
	adminRole string
}

func NewHandler(service booking.Service, adminRole string) *BookingHandler {
	return &BookingHandler{service: service, adminRole: adminRole}
}

func (h *BookingHandler) actor(c *gin.Context) booking.Actor {
	return booking.Actor{
		UserID:  auth.GetUserID(c),
		IsAdmin: auth.HasRole(c, h.adminRole),
	}
}

// writeError adds the blocking reservations to conflict responses.
func writeError(c *gin.Context, err error) {
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) && len(conflict.Conflicts) > 0 {
		response.ErrorWithDetails(c, err, newSlots(conflict.Conflicts))
		return
	}
	response.Error(c, err)
}

// List returns one ledger view of the caller's bookings, "upcoming" by default.
func (h *BookingHandler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	list, err := h.service.List(c.Request.Context(), auth.GetUserID(c), booking.View(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(newBookingResponses(list)))
}

func (h *BookingHandler) Overview(c *gin.Context) {
	o, err := h.service.Overview(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOverviewResponse(o))
}

func (h *BookingHandler) Count(c *gin.Context) {
	n, err := h.service.CountActive(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Active: n})
}

func (h *BookingHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), h.actor(c), uri.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(r))
}

// Create books a batch of entities for the caller; either every item is
// booked or none is.
func (h *BookingHandler) Create(c *gin.Context) {
	var body []CreateBookingItem
	if err := c.ShouldBindJSON(&body); err != nil {
		if errors.Is(err, calendar.ErrInvalidDate) {
			writeError(c, booking.ErrInvalidRange)
			return
		}
		response.BadRequest(c, "invalid request body", err)
		return
	}

	req := booking.CreateRequest{UserID: auth.GetUserID(c), Items: make([]booking.CreateItem, len(body))}
	for i, item := range body {
		ci, err := item.toItem()
		if err != nil {
			writeError(c, err)
			return
		}
		req.Items[i] = ci
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.NewListResponse(newBookingResponses(created)))
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *BookingHandler) Return(c *gin.Context) {
	h.transition(c, h.service.Return)
}

func (h *BookingHandler) transition(c *gin.Context, fn func(ctx context.Context, actor booking.Actor, id string) (*booking.Reservation, error)) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	r, err := fn(c.Request.Context(), h.actor(c), uri.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(r))
}

// Extend accepts exactly one of days or end_date.
func (h *BookingHandler) Extend(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body ExtendBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		if errors.Is(err, calendar.ErrInvalidDate) {
			writeError(c, booking.ErrInvalidRange)
			return
		}
		response.BadRequest(c, "invalid request body", err)
		return
	}
	if (body.Days == nil) == (body.EndDate == nil) {
		response.BadRequest(c, "exactly one of days or end_date is required", nil)
		return
	}

	var (
		r   *booking.Reservation
		err error
	)
	if body.Days != nil {
		r, err = h.service.Extend(c.Request.Context(), h.actor(c), uri.ID, *body.Days)
	} else {
		r, err = h.service.ExtendTo(c.Request.Context(), h.actor(c), uri.ID, *body.EndDate)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(r))
}

// Delete physically removes a booking. Access Control: admin only.
func (h *BookingHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), h.actor(c), uri.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EntitySchedule lists the active and future bookings of one entity so
// clients can render its availability.
func (h *BookingHandler) EntitySchedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	list, err := h.service.ListEntitySchedule(c.Request.Context(), uri.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewListResponse(newSlots(list)))
}
