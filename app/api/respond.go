package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	competitiondb "github.com/Black-And-White-Club/betting-pool/app/modules/competition/infrastructure/repositories"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
	predictiondb "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/infrastructure/repositories"
	standingsdomain "github.com/Black-And-White-Club/betting-pool/app/modules/standings/domain"
	standingsdb "github.com/Black-And-White-Club/betting-pool/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/betting-pool/pkg/attr"
	"github.com/Black-And-White-Club/betting-pool/pkg/results"
)

// Error codes returned in the body of non-2xx responses.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeValidation       = "validation_failed"
	CodeNotFound         = "not_found"
	CodeAnonymous        = "anonymous"
	CodeMatchStarted     = "match_started"
	CodeDeadlinePassed   = "deadline_passed"
	CodePredictionClosed = "table_prediction_closed"
	CodeInternal         = "internal"
)

type errorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message, Details: details}})
}

func writeFile(w http.ResponseWriter, contentType, fileName string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	if fileName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// classify maps a service error onto a status and error code.
func classify(err error) (int, string) {
	if !results.IsFailure(err) {
		return http.StatusInternalServerError, CodeInternal
	}
	switch {
	case errors.Is(err, predictiondomain.ErrAnonymous):
		return http.StatusUnauthorized, CodeAnonymous
	case errors.Is(err, predictiondomain.ErrMatchStarted):
		return http.StatusConflict, CodeMatchStarted
	case errors.Is(err, predictiondomain.ErrDeadlinePassed):
		return http.StatusConflict, CodeDeadlinePassed
	case errors.Is(err, predictiondomain.ErrTablePredictionClosed):
		return http.StatusConflict, CodePredictionClosed
	case errors.Is(err, competitiondb.ErrNotFound),
		errors.Is(err, predictiondb.ErrNotFound),
		errors.Is(err, standingsdb.ErrNotFound),
		errors.Is(err, standingsdomain.ErrSnapshotNotFound):
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusUnprocessableEntity, CodeValidation
	}
}

// respondError writes err in the standard error shape. Infrastructure
// errors are logged and hidden from the client.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed",
			attr.ExtractCorrelationID(r.Context()),
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		writeError(w, status, code, "internal error")
		return
	}
	writeError(w, status, code, err.Error(), details(err)...)
}

// details lists the individual errors of a joined validation error.
func details(err error) []string {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return nil
	}
	errs := joined.Unwrap()
	if len(errs) < 2 {
		return nil
	}
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
