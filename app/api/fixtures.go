package api

import (
	"net/http"

	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
)

type scoreRequest struct {
	HomeGoals int `json:"home_goals"`
	AwayGoals int `json:"away_goals"`
}

// GetFixture handles GET /fixtures/{id}.
func (h *Handlers) GetFixture(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	info, err := h.competitions.GetFixture(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetDeadline handles GET /fixtures/{id}/deadline. Anonymous callers get
// the kickoff and no personal deadline.
func (h *Handlers) GetDeadline(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	info, err := h.leaderboard.FixtureDeadline(r.Context(), CallerFrom(r.Context()).UserID, id, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// ListDeadlines handles GET /fixtures/{id}/deadlines.
func (h *Handlers) ListDeadlines(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	table, err := h.leaderboard.DeadlinesForFixture(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// RecordResult handles POST /fixtures/{id}/result.
func (h *Handlers) RecordResult(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	info, err := h.competitions.RecordFixtureResult(r.Context(), id, req.HomeGoals, req.AwayGoals, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// RecomputeFixture handles POST /fixtures/{id}/recompute.
func (h *Handlers) RecomputeFixture(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	summary, err := h.predictions.RecomputeFixture(r.Context(), id, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// PutPrediction handles PUT /fixtures/{id}/prediction.
func (h *Handlers) PutPrediction(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var body scoreRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	req := predictionservice.SubmitMatchPredictionRequest{
		UserID:    CallerFrom(r.Context()).UserID,
		FixtureID: id,
		HomeGoals: body.HomeGoals,
		AwayGoals: body.AwayGoals,
	}
	info, err := h.predictions.SubmitMatchPrediction(r.Context(), req, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// DeletePrediction handles DELETE /fixtures/{id}/prediction.
func (h *Handlers) DeletePrediction(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	if err := h.predictions.DeleteMatchPrediction(r.Context(), CallerFrom(r.Context()).UserID, id, h.now()); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
