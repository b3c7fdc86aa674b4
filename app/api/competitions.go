package api

import (
	"net/http"

	competitionservice "github.com/Black-And-White-Club/betting-pool/app/modules/competition/application"
	standingsservice "github.com/Black-And-White-Club/betting-pool/app/modules/standings/application"
	sharedtypes "github.com/Black-And-White-Club/betting-pool/app/shared/types"
)

// ListCompetitions handles GET /competitions?season=.
func (h *Handlers) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	list, err := h.competitions.ListCompetitions(r.Context(), r.URL.Query().Get("season"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []competitionservice.CompetitionInfo{}
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCompetition handles GET /competitions/{id}.
func (h *Handlers) GetCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	info, err := h.competitions.GetCompetition(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// CreateCompetition handles POST /competitions.
func (h *Handlers) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req competitionservice.CreateCompetitionRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	info, err := h.competitions.CreateCompetition(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

type participantRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// AddParticipant handles POST /competitions/{id}/participants.
func (h *Handlers) AddParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req participantRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if err := h.competitions.AddParticipant(r.Context(), id, sharedtypes.UserID(req.UserID), req.DisplayName); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFixtures handles GET /competitions/{id}/fixtures.
func (h *Handlers) ListFixtures(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := h.competitions.ListFixtures(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []competitionservice.FixtureInfo{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ScheduleFixture handles POST /competitions/{id}/fixtures.
func (h *Handlers) ScheduleFixture(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req competitionservice.ScheduleFixtureRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	req.CompetitionID = id
	info, err := h.competitions.ScheduleFixture(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// ImportFixtures handles POST /competitions/{id}/fixtures/import with a
// multipart .csv or .xlsx upload.
func (h *Handlers) ImportFixtures(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	name, data, err := upload(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	summary, err := h.competitions.ImportFixtures(r.Context(), id, name, data, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// RecomputeCompetition handles POST /competitions/{id}/recompute.
func (h *Handlers) RecomputeCompetition(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	summary, err := h.predictions.RecomputeCompetition(r.Context(), id, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GetStandings handles GET /competitions/{id}/standings?round=. Without a
// round the latest snapshot is returned.
func (h *Handlers) GetStandings(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	round, hasRound, err := queryInt(r, "round")
	if err != nil {
		badRequest(w, err)
		return
	}

	if hasRound {
		snap, err := h.standings.SnapshotForRound(r.Context(), id, round)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
		return
	}

	snap, err := h.standings.LatestSnapshot(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ListStandingRounds handles GET /competitions/{id}/standings/rounds.
func (h *Handlers) ListStandingRounds(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	rounds, err := h.standings.ListRounds(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if rounds == nil {
		rounds = []int{}
	}
	writeJSON(w, http.StatusOK, map[string][]int{"rounds": rounds})
}

// RecordStandings handles POST /competitions/{id}/standings.
func (h *Handlers) RecordStandings(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	var req standingsservice.RecordSnapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	req.CompetitionID = id
	snap, err := h.standings.RecordSnapshot(r.Context(), req, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// ImportStandings handles POST /competitions/{id}/standings/import?round=N
// with a multipart .xlsx upload.
func (h *Handlers) ImportStandings(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		badRequest(w, err)
		return
	}
	round, ok, err := queryInt(r, "round")
	if err != nil || !ok {
		writeError(w, http.StatusBadRequest, CodeInvalidRequest, "round query parameter is required")
		return
	}
	name, data, err := upload(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}
	snap, err := h.standings.ImportSnapshot(r.Context(), id, round, name, data, h.now())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}
