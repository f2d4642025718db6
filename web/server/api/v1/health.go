package api

import (
	"net/http"

	"go.hackfix.me/todo/web/server/handler"
	"go.hackfix.me/todo/web/server/types"
)

func (h Handler) health(w http.ResponseWriter, r *http.Request) {
	status, health := http.StatusOK, types.Health{Status: "ok", Version: h.svc.Version}
	if h.svc.Ping != nil {
		if err := h.svc.Ping(r.Context()); err != nil {
			h.logger.Error("failed health check", "error", err.Error())
			status, health.Status = http.StatusServiceUnavailable, "unavailable"
		}
	}

	if err := handler.WriteJSON(w, status, health); err != nil {
		h.logger.Error("failed writing response", "error", err.Error())
	}
}
