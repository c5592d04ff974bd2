package handler

import (
	"net/http"

	"github.com/miniledger/easyexp-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Statistics
// ============================================================

func statsHandler(svc *service.StatsService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/expenses/stats")
		defer span.End()

		f, err := parseFilter(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp, err := svc.Summarize(ctx, UserIDFromContext(ctx), f)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
