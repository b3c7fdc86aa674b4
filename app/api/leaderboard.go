package api

import (
	"net/http"

	leaderboardservice "github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard/application"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetLeaderboard handles GET /competitions/{id}/leaderboard?as_of=.
func (h *Handlers) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	asOf, err := h.asOf(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	view, err := h.leaderboard.GetLeaderboard(r.Context(), id, asOf)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetPointsHistory handles GET /competitions/{id}/leaderboard/history.
func (h *Handlers) GetPointsHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	asOf, err := h.asOf(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	history, err := h.leaderboard.PointsHistory(r.Context(), id, asOf)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if history == nil {
		history = []leaderboardservice.PointsSeries{}
	}
	writeJSON(w, http.StatusOK, history)
}

// GetPointsChart handles GET /competitions/{id}/leaderboard/chart.png.
func (h *Handlers) GetPointsChart(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	asOf, err := h.asOf(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	png, err := h.leaderboard.RenderPointsChart(r.Context(), id, asOf)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeFile(w, "image/png", "", png)
}

// ExportLeaderboard handles GET /competitions/{id}/leaderboard/export.xlsx.
func (h *Handlers) ExportLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	asOf, err := h.asOf(r)
	if err != nil {
		badRequest(w, err)
		return
	}
	data, err := h.leaderboard.ExportLeaderboard(r.Context(), id, asOf)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeFile(w, xlsxContentType, "leaderboard-"+id.String()+".xlsx", data)
}
