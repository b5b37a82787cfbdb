package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/timschopinski/hotel-management-system/internal/rooms/service"
	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	httputil "github.com/timschopinski/hotel-management-system/pkg/http"
	"github.com/timschopinski/hotel-management-system/pkg/logger"
	"github.com/timschopinski/hotel-management-system/pkg/middleware"
	"github.com/timschopinski/hotel-management-system/pkg/model"
)

type RoomHandler struct {
	service service.RoomService
	logger  *logger.Logger
	auth    func(httprouter.Handle) httprouter.Handle
}

func NewRoomHandler(
	svc service.RoomService,
	log *logger.Logger,
	auth func(httprouter.Handle) httprouter.Handle,
) *RoomHandler {
	return &RoomHandler{
		service: svc,
		logger:  log,
		auth:    auth,
	}
}

// RegisterRoutes uses the /rooms/id/:room_id form so the static /rooms/my
// route does not collide with the wildcard.
func (h *RoomHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/rooms", h.auth(h.Create))
	router.GET("/rooms", h.GetAll)
	router.GET("/rooms/my", h.auth(h.GetMine))
	router.GET("/rooms/id/:room_id", h.GetByID)
	router.DELETE("/rooms/id/:room_id", h.auth(h.Delete))
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("authentication required"))
		return
	}

	var room model.Room
	if err := json.NewDecoder(r.Body).Decode(&room); err != nil {
		h.logger.Warn("Failed to decode room payload", "error", err)
		h.writeError(w, "Create", apperrors.InvalidInput("invalid JSON payload"))
		return
	}

	if err := h.service.Create(r.Context(), userID, &room); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, room); err != nil {
		h.logger.Error("failed to write response", "handler", "Create", "error", err)
	}
}

func (h *RoomHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	rooms, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, rooms, total, limit, offset); err != nil {
		h.logger.Error("failed to write response", "handler", "GetAll", "error", err)
	}
}

func (h *RoomHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, "GetMine", apperrors.Unauthorized("authentication required"))
		return
	}

	rooms, err := h.service.GetByOwner(r.Context(), userID)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.logger.Error("failed to write response", "handler", "GetMine", "error", err)
	}
}

func (h *RoomHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.service.GetByID(r.Context(), ps.ByName("room_id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, room); err != nil {
		h.logger.Error("failed to write response", "handler", "GetByID", "error", err)
	}
}

func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, "Delete", apperrors.Unauthorized("authentication required"))
		return
	}

	if err := h.service.Delete(r.Context(), userID, ps.ByName("room_id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *RoomHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.logger.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
