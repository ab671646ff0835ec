package planner

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/traintrack/backend/internal/calendar"
	"github.com/traintrack/backend/internal/telemetry/metrics"
	"github.com/traintrack/backend/internal/telemetry/tracing"
	"github.com/traintrack/backend/pkg"
)

// ConfirmRequest carries a whole planning session's placements, keyed by
// workout id. Container ids are weekday names or calendar-day keys; the
// client's drop policy is not trusted, every placement passes through the
// engine again before anything is persisted.
type ConfirmRequest struct {
	Today      string            `json:"today"`
	Placements map[string]string `json:"placements"`
}

type ConfirmResponse struct {
	SessionID   string           `json:"sessionId"`
	Confirmed   []ConfirmedEntry `json:"confirmed"`
	FailedIDs   []int            `json:"failedIds"`
	RejectedIDs []int            `json:"rejectedIds"`
}

type ConfirmedEntry struct {
	EntryID   int    `json:"entryId"`
	WorkoutID int    `json:"workoutId"`
	Date      string `json:"date"`
}

type Handler struct {
	store          activityScheduler
	metricsManager *metrics.Manager
}

func NewHandler(store activityScheduler, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		store:          store,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.planner.confirm")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var confirmReq ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&confirmReq); err != nil {
		log.Tracef("confirm placements, unmarshal json params: %s", err)
		http.Error(w, "confirm placements failed", http.StatusBadRequest)
		return
	}

	today := calendar.Today(time.Now())
	if confirmReq.Today != "" {
		parsed, err := calendar.ParseKey(confirmReq.Today)
		if err != nil {
			http.Error(w, "error, invalid today date", http.StatusBadRequest)
			return
		}
		today = parsed
	}

	session := NewSession(today)
	log.Debugf("planning session %s: confirming %d placements", session.ID, len(confirmReq.Placements))

	rejectedIDs := []int{}
	for workoutIDStr, containerID := range confirmReq.Placements {
		workoutID, err := strconv.Atoi(workoutIDStr)
		if err != nil || workoutID <= 0 {
			http.Error(w, "error, invalid workout id", http.StatusBadRequest)
			return
		}

		session.Engine.OnDragStart(workoutID)
		session.Engine.OnDragEnd(workoutID, containerID)
		if session.Engine.State() == StateCancelled {
			rejectedIDs = append(rejectedIDs, workoutID)
		}
	}
	sort.Ints(rejectedIDs)

	result, err := session.Engine.Confirm(ctx, handler.store, usernameFrom(r))
	if err != nil {
		// partial failures are reported in the result, not as a 5xx
		log.Errorf("planning session %s: %d placements failed: %s", session.ID, len(result.FailedIDs), err)
	}

	handler.metricsManager.CounterPlacementsConfirmed.Add(float64(len(result.Confirmed)))
	handler.metricsManager.CounterPlacementsFailed.Add(float64(len(result.FailedIDs) + len(rejectedIDs)))

	confirmResp := ConfirmResponse{
		SessionID:   session.ID.String(),
		Confirmed:   make([]ConfirmedEntry, 0, len(result.Confirmed)),
		FailedIDs:   result.FailedIDs,
		RejectedIDs: rejectedIDs,
	}
	for _, entry := range result.Confirmed {
		confirmResp.Confirmed = append(confirmResp.Confirmed, ConfirmedEntry{
			EntryID:   entry.ID,
			WorkoutID: entry.WorkoutID,
			Date:      entry.DateKey(),
		})
	}

	confirmRespJson, err := json.Marshal(confirmResp)
	if err != nil {
		log.Errorf("failed to marshal confirm response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, confirmRespJson, http.StatusOK)
}

// single user setup, the header is a leftover from the multi-account days
func usernameFrom(r *http.Request) string {
	if username := r.Header.Get("X-TrainTrack-User"); username != "" {
		return username
	}
	return "local"
}
