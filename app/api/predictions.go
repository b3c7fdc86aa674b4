package api

import (
	"net/http"

	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	predictiondomain "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/domain"
)

type tablePredictionRequest struct {
	Positions   []predictiondomain.TablePosition `json:"positions"`
	TopScorers  []string                         `json:"top_scorers"`
	MostAssists []string                         `json:"most_assists"`
}

// ListMyPredictions handles GET /competitions/{id}/predictions/me.
func (h *Handlers) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := h.predictions.ListUserPredictions(r.Context(), id, CallerFrom(r.Context()).UserID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []predictionservice.MatchPredictionInfo{}
	}
	writeJSON(w, http.StatusOK, list)
}

// PutTablePrediction handles PUT /competitions/{id}/table-prediction. The
// body replaces the caller's whole prediction.
func (h *Handlers) PutTablePrediction(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var body tablePredictionRequest
	if err := decodeJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	req := predictionservice.SubmitTablePredictionRequest{
		UserID:        CallerFrom(r.Context()).UserID,
		CompetitionID: id,
		Positions:     body.Positions,
		TopScorers:    body.TopScorers,
		MostAssists:   body.MostAssists,
	}
	info, err := h.predictions.SubmitTablePrediction(r.Context(), req, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetTablePrediction handles GET /competitions/{id}/table-prediction.
func (h *Handlers) GetTablePrediction(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	info, err := h.predictions.GetTablePrediction(r.Context(), id, CallerFrom(r.Context()).UserID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetTableScore handles GET /competitions/{id}/table-prediction/score.
func (h *Handlers) GetTableScore(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	score, err := h.predictions.ScoreTablePrediction(r.Context(), id, CallerFrom(r.Context()).UserID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}
