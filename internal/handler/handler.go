package handler

import (
	"encoding/json"
	"net/http"

	"github.com/lazythumb/lazythumb/internal/config"
	"github.com/lazythumb/lazythumb/internal/logger"
	"github.com/lazythumb/lazythumb/internal/service"
	"github.com/lazythumb/lazythumb/internal/sizes"
)

type Handler struct {
	media    service.MediaService
	resolver *service.Resolver
	catalog  *sizes.Catalog
	cfg      *config.Config
}

func New(media service.MediaService, resolver *service.Resolver, catalog *sizes.Catalog, cfg *config.Config) *Handler {
	return &Handler{media: media, resolver: resolver, catalog: catalog, cfg: cfg}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "err", err)
	}
}
