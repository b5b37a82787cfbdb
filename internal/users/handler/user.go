package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/timschopinski/hotel-management-system/internal/users/service"
	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	httputil "github.com/timschopinski/hotel-management-system/pkg/http"
	"github.com/timschopinski/hotel-management-system/pkg/logger"
	"github.com/timschopinski/hotel-management-system/pkg/middleware"
	"github.com/timschopinski/hotel-management-system/pkg/model"
)

type UserHandler struct {
	service service.UserService
	logger  *logger.Logger
	auth    func(httprouter.Handle) httprouter.Handle
}

func NewUserHandler(
	svc service.UserService,
	log *logger.Logger,
	auth func(httprouter.Handle) httprouter.Handle,
) *UserHandler {
	return &UserHandler{
		service: svc,
		logger:  log,
		auth:    auth,
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	router.GET("/auth/me", h.auth(h.Me))
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var credentials model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		h.logger.Warn("Failed to decode registration payload", "error", err)
		h.writeError(w, "Register", apperrors.InvalidInput("invalid JSON payload"))
		return
	}

	user, err := h.service.Register(r.Context(), &credentials)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.logger.Error("failed to write response", "handler", "Register", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var credentials model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		h.logger.Warn("Failed to decode login payload", "error", err)
		h.writeError(w, "Login", apperrors.InvalidInput("invalid JSON payload"))
		return
	}

	response, err := h.service.Login(r.Context(), &credentials)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccess(w, response); err != nil {
		h.logger.Error("failed to write response", "handler", "Login", "error", err)
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		h.writeError(w, "Me", apperrors.Unauthorized("authentication required"))
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		h.writeError(w, "Me", err)
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.logger.Error("failed to write response", "handler", "Me", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.logger.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}
