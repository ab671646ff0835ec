package activity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/traintrack/backend/internal/calendar"
	"github.com/traintrack/backend/internal/telemetry/metrics"
	"github.com/traintrack/backend/internal/telemetry/tracing"
	"github.com/traintrack/backend/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=activity_test

type activityRepo interface {
	Schedule(ctx context.Context, username string, workoutID int, date calendar.Date) (*Entry, error)
	Get(ctx context.Context, id int) (*Entry, error)
	ListRange(ctx context.Context, from, to calendar.Date) ([]Entry, error)
	ListRecent(ctx context.Context) ([]Entry, error)
	Update(ctx context.Context, id int, patch UpdatePatch) (*Entry, error)
	Delete(ctx context.Context, id int) error
}

type ScheduleRequest struct {
	WorkoutID int    `json:"workoutId"`
	Date      string `json:"date"`
}

type DeleteResponse struct {
	DeletedID int `json:"deletedId"`
}

// SummaryResponse is the dashboard read model: the 6-week grid around the
// anchor date plus the aggregates derived from the recent entries.
type SummaryResponse struct {
	Anchor      string          `json:"anchor"`
	Days        []calendar.Day  `json:"days"`
	Today       *Entry          `json:"today"`
	Stats       CompletionStats `json:"stats"`
	RecentCount int             `json:"recentCount"`
	Streak      int             `json:"streak"`
	Months      MonthGroups     `json:"months"`
}

type Handler struct {
	repo           activityRepo
	snapshots      *SnapshotTracker
	metricsManager *metrics.Manager
}

func NewHandler(repo activityRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		snapshots:      NewSnapshotTracker(),
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.schedule")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var scheduleReq ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&scheduleReq); err != nil {
		log.Tracef("schedule workout, unmarshal json params: %s", err)
		http.Error(w, "schedule workout failed", http.StatusBadRequest)
		return
	}

	if scheduleReq.WorkoutID <= 0 {
		http.Error(w, "error, workout id empty", http.StatusBadRequest)
		return
	}

	date, err := calendar.ParseKey(scheduleReq.Date)
	if err != nil {
		log.Tracef("schedule workout, parse date: %s", err)
		http.Error(w, "error, invalid date", http.StatusBadRequest)
		return
	}

	entry, err := handler.repo.Schedule(ctx, usernameFrom(r), scheduleReq.WorkoutID, date)
	if errors.Is(err, ErrUnknownWorkout) {
		log.Debugf("schedule rejected, workout %d not in the store", scheduleReq.WorkoutID)
		http.Error(w, "error, unknown workout", http.StatusBadRequest)
		return
	} else if err != nil {
		log.Errorf("failed to schedule workout %d on %s: %s", scheduleReq.WorkoutID, scheduleReq.Date, err)
		http.Error(w, "error, failed to schedule workout", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterSchedules.Inc()
	handler.snapshots.Begin() // in-flight summary fetches are outdated now

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal scheduled entry: %s", err)
		http.Error(w, "error, failed to schedule workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout %d scheduled on %s", scheduleReq.WorkoutID, scheduleReq.Date)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.update")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	id, err := idFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var patch UpdatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Tracef("update entry, unmarshal json params: %s", err)
		http.Error(w, "update entry failed", http.StatusBadRequest)
		return
	}

	entry, err := handler.repo.Update(ctx, id, patch)
	if errors.Is(err, ErrEntryNotFound) {
		log.Debugf("entry %d not found", id)
		http.Error(w, "entry not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to update entry %d: %s", id, err)
		http.Error(w, "error, failed to update entry", http.StatusInternalServerError)
		return
	}

	handler.snapshots.Begin()

	entryJson, err := json.Marshal(entry)
	if err != nil {
		log.Errorf("failed to marshal updated entry: %s", err)
		http.Error(w, "error, failed to update entry", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entryJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.delete")
	defer span.End()

	id, err := idFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			log.Debugf("entry %d not found", id)
			http.Error(w, "entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete entry %d: %s", id, err)
		http.Error(w, "entry not deleted", http.StatusInternalServerError)
		return
	}

	handler.snapshots.Begin()

	deleteRespJson, err := json.Marshal(DeleteResponse{
		DeletedID: id,
	})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "failed to marshal delete response", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, string(deleteRespJson))
}

func (handler *Handler) HandleRange(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.range")
	defer span.End()

	vars := mux.Vars(r)
	from, err := calendar.ParseKey(vars["from"])
	if err != nil {
		http.Error(w, "error, invalid from date", http.StatusBadRequest)
		return
	}
	to, err := calendar.ParseKey(vars["to"])
	if err != nil {
		http.Error(w, "error, invalid to date", http.StatusBadRequest)
		return
	}
	if to.Before(from) {
		http.Error(w, "error, range end before start", http.StatusBadRequest)
		return
	}

	entries, err := handler.repo.ListRange(ctx, from, to)
	if err != nil {
		log.Errorf("failed to list entries [%s - %s]: %s", vars["from"], vars["to"], err)
		http.Error(w, "failed to get entries", http.StatusInternalServerError)
		return
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("failed to marshal entries: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entriesJson, http.StatusOK)
}

func (handler *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.recent")
	defer span.End()

	entries, err := handler.repo.ListRecent(ctx)
	if err != nil {
		log.Errorf("failed to list recent entries: %s", err)
		http.Error(w, "failed to get entries", http.StatusInternalServerError)
		return
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("failed to marshal entries: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entriesJson, http.StatusOK)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.summary")
	defer span.End()

	anchor := calendar.Today(time.Now())
	if anchorParam := r.URL.Query().Get("anchor"); anchorParam != "" {
		parsed, err := calendar.ParseKey(anchorParam)
		if err != nil {
			http.Error(w, "error, invalid anchor date", http.StatusBadRequest)
			return
		}
		anchor = parsed
	}

	windowDays := 7
	if windowParam := r.URL.Query().Get("window_days"); windowParam != "" {
		parsed, err := strconv.Atoi(windowParam)
		if err != nil || parsed < 1 {
			http.Error(w, "error, invalid window_days", http.StatusBadRequest)
			return
		}
		windowDays = parsed
	}

	generation := handler.snapshots.Begin()
	entries, err := handler.repo.ListRecent(ctx)
	if err != nil {
		log.Errorf("failed to list recent entries for summary: %s", err)
		http.Error(w, "failed to get activity summary", http.StatusInternalServerError)
		return
	}

	// a concurrent request or mutation may have produced a newer view while
	// this fetch was in flight, in that case serve the newer one
	if !handler.snapshots.Apply(generation, entries) {
		if current := handler.snapshots.Current(); current != nil {
			entries = current.Entries
		}
	}

	summary := SummaryResponse{
		Anchor:      calendar.Key(anchor),
		Days:        calendar.GenerateWeeks(anchor),
		Today:       TodayEntry(entries, anchor),
		Stats:       GetCompletionStats(entries),
		RecentCount: RecentCount(entries, windowDays, anchor),
		Streak:      CurrentStreak(entries, anchor),
		Months:      GroupByMonth(entries),
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("failed to marshal summary: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}

func idFrom(r *http.Request) (int, error) {
	idStr := mux.Vars(r)["id"]
	if idStr == "" {
		return 0, errors.New("error, id empty")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, errors.New("error, id NaN")
	}
	return id, nil
}

// single user setup, the header is a leftover from the multi-account days
func usernameFrom(r *http.Request) string {
	if username := r.Header.Get("X-TrainTrack-User"); username != "" {
		return username
	}
	return "local"
}
