package health

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/timschopinski/hotel-management-system/pkg/config"
	httputil "github.com/timschopinski/hotel-management-system/pkg/http"
)

type Handler struct {
	cfg *config.Config
}

func NewHandler(cfg *config.Config) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

// Health reports process liveness only.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.write(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready additionally pings the database, so load balancers stop routing
// to an instance that lost its backing store.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.cfg.Client.Mongo.Ping(ctx, readpref.Primary()); err != nil {
		h.cfg.Log.Warn("Readiness check failed", "error", err)
		h.write(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"mongo":  "unreachable",
		})
		return
	}

	h.write(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mongo":  "ok",
	})
}

func (h *Handler) write(w http.ResponseWriter, status int, body map[string]string) {
	if err := httputil.WriteJSON(w, status, body); err != nil {
		h.cfg.Log.Error("failed to write response", "handler", "health", "error", err)
	}
}
