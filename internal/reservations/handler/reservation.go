package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/timschopinski/hotel-management-system/internal/reservations/service"
	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	httputil "github.com/timschopinski/hotel-management-system/pkg/http"
	"github.com/timschopinski/hotel-management-system/pkg/logger"
	"github.com/timschopinski/hotel-management-system/pkg/middleware"
	"github.com/timschopinski/hotel-management-system/pkg/model"
)

type ReservationHandler struct {
	service service.ReservationService
	logger  *logger.Logger
	auth    func(httprouter.Handle) httprouter.Handle
}

func NewReservationHandler(
	svc service.ReservationService,
	log *logger.Logger,
	auth func(httprouter.Handle) httprouter.Handle,
) *ReservationHandler {
	return &ReservationHandler{
		service: svc,
		logger:  log,
		auth:    auth,
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/reservations", h.Create)
	router.GET("/reservations/room/:room_id", h.GetByRoom)
	router.GET("/reservations/my", h.auth(h.GetMine))
	router.PATCH("/reservations/:id", h.auth(h.Update))
}

// Create admits a booking request. Guests do not authenticate; the booking
// carries their contact details instead.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reservation model.Reservation
	if err := json.NewDecoder(r.Body).Decode(&reservation); err != nil {
		h.logger.Warn("Failed to decode reservation payload", "error", err)
		h.writeError(w, "Create", apperrors.InvalidInput("invalid JSON payload"))
		return
	}
	reservation.ID = ""

	if err := h.service.Admit(r.Context(), &reservation); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.logger.Error("failed to write response", "handler", "Create", "error", err)
	}
}

func (h *ReservationHandler) GetByRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("room_id")

	reservations, err := h.service.GetByRoom(r.Context(), roomID)
	if err != nil {
		h.writeError(w, "GetByRoom", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservations); err != nil {
		h.logger.Error("failed to write response", "handler", "GetByRoom", "error", err)
	}
}

// GetMine lists reservations across all rooms owned by the caller.
func (h *ReservationHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, "GetMine", apperrors.Unauthorized("authentication required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	filter, err := extractFilter(r)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	reservations, total, err := h.service.GetForOwner(r.Context(), userID, filter, limit, offset)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.logger.Error("failed to write response", "handler", "GetMine", "error", err)
	}
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, "Update", apperrors.Unauthorized("authentication required"))
		return
	}

	var update model.ReservationUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("Failed to decode reservation update payload", "error", err)
		h.writeError(w, "Update", apperrors.InvalidInput("invalid JSON payload"))
		return
	}

	reservation, err := h.service.UpdateNotes(r.Context(), userID, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.logger.Error("failed to write response", "handler", "Update", "error", err)
	}
}

func extractFilter(r *http.Request) (*model.ReservationFilter, error) {
	query := r.URL.Query()

	filter := &model.ReservationFilter{
		RoomID:    query.Get("room_id"),
		GuestName: query.Get("guest_name"),
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
	}

	if s := query.Get("start_date"); s != "" {
		date, err := model.ParseDate(s)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid start_date parameter: " + s)
		}
		filter.StartDate = &date
	}
	if s := query.Get("end_date"); s != "" {
		date, err := model.ParseDate(s)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid end_date parameter: " + s)
		}
		filter.EndDate = &date
	}

	return filter, nil
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.logger.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
