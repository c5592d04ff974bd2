package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/miniledger/easyexp-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// parseFilter reads the shared expense query parameters. Date bounds are
// calendar days: startDate is widened to midnight and endDate to the last
// millisecond of its day, so a single-day range matches that whole day.
func parseFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	f := domain.Filter{
		ReimburseType: q.Get("reimburseType"),
		PayType:       q.Get("payType"),
		Page:          domain.DefaultPage,
		Limit:         domain.DefaultLimit,
	}

	if v := q.Get("startDate"); v != "" {
		t, err := domain.ParseDate(v)
		if err != nil {
			return f, &domain.ErrValidation{Field: "startDate", Message: "日期格式无效"}
		}
		start := domain.StartOfDay(t)
		f.StartDate = &start
	}
	if v := q.Get("endDate"); v != "" {
		t, err := domain.ParseDate(v)
		if err != nil {
			return f, &domain.ErrValidation{Field: "endDate", Message: "日期格式无效"}
		}
		end := domain.EndOfDay(t)
		f.EndDate = &end
	}

	if v := q.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			f.Page = p
		}
	}
	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= domain.MaxLimit {
			f.Limit = l
		}
	}
	return f, nil
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *domain.ErrValidation
	var unauthorized *domain.ErrUnauthorized
	var notFound *domain.ErrNotFound
	var conflict *domain.ErrConflict

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &conflict):
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
