package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	competitionservice "github.com/Black-And-White-Club/betting-pool/app/modules/competition/application"
	leaderboardservice "github.com/Black-And-White-Club/betting-pool/app/modules/leaderboard/application"
	predictionservice "github.com/Black-And-White-Club/betting-pool/app/modules/prediction/application"
	standingsservice "github.com/Black-And-White-Club/betting-pool/app/modules/standings/application"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadBody = 10 << 20
)

// Handlers serves the pool's HTTP API on top of the module services.
type Handlers struct {
	competitions competitionservice.Service
	predictions  predictionservice.Service
	standings    standingsservice.Service
	leaderboard  leaderboardservice.Service
	logger       *slog.Logger
	now          func() time.Time
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(
	competitions competitionservice.Service,
	predictions predictionservice.Service,
	standings standingsservice.Service,
	leaderboard leaderboardservice.Service,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		competitions: competitions,
		predictions:  predictions,
		standings:    standings,
		leaderboard:  leaderboard,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock replaces the clock used for deadlines and as_of defaults.
func (h *Handlers) WithClock(now func() time.Time) *Handlers {
	if now != nil {
		h.now = now
	}
	return h
}

var errBadRequest = errors.New("bad request")

func badRequest(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a uuid", errBadRequest, name, raw)
	}
	return id, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid json body: %v", errBadRequest, err)
	}
	return nil
}

// asOf reads the as_of query parameter (RFC 3339), defaulting to now.
func (h *Handlers) asOf(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return h.now(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: as_of must be RFC 3339", errBadRequest)
	}
	return t, nil
}

func queryInt(r *http.Request, name string) (int, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return n, true, nil
}

// upload reads the multipart "file" field.
func upload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("%w: multipart field \"file\" is required", errBadRequest)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", nil, fmt.Errorf("%w: read upload: %v", errBadRequest, err)
	}
	return header.Filename, data, nil
}
