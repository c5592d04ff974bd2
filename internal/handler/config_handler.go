package handler

import (
	"encoding/json"
	"net/http"

	"github.com/miniledger/easyexp-go/internal/domain"
	"github.com/miniledger/easyexp-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Vocabulary config
// ============================================================

type updateConfigRequest struct {
	Type    domain.VocabKind `json:"type"`
	Options []string         `json:"options"`
}

func getConfigHandler(svc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/config")
		defer span.End()

		cfg, err := svc.Get(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, cfg)
	}
}

func updateConfigHandler(svc *service.ConfigService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /api/config")
		defer span.End()

		var req updateConfigRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		cfg, err := svc.Set(ctx, UserIDFromContext(ctx), req.Type, req.Options)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, cfg)
	}
}
