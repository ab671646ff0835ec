package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/traintrack/backend/internal/telemetry/metrics"
	"github.com/traintrack/backend/internal/telemetry/tracing"
	"github.com/traintrack/backend/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=workouts_test

type catalogRepo interface {
	ListExercises(ctx context.Context) ([]Exercise, error)
	AddExercise(ctx context.Context, label string, param TrackingParam) (Exercise, error)
	DeleteExercise(ctx context.Context, id int) (Exercise, error)
}

type workoutsRepo interface {
	Create(ctx context.Context, doc Document) (*WorkoutDetail, error)
	List(ctx context.Context) ([]Workout, error)
	Detail(ctx context.Context, id int) (*WorkoutDetail, error)
	Delete(ctx context.Context, id int) error
}

type catalogResolver interface {
	Resolve(ctx context.Context, label string) (int, TrackingParam, bool)
	Invalidate(label string)
}

type AddExerciseRequest struct {
	Label         string `json:"label"`
	TrackingParam string `json:"trackingParam"`
}

type DeleteResponse struct {
	DeletedID int `json:"deletedId"`
}

type ValidationResponse struct {
	Errors ValidationErrors `json:"errors"`
}

type Handler struct {
	catalog        catalogRepo
	workouts       workoutsRepo
	resolver       catalogResolver
	metricsManager *metrics.Manager
}

func NewHandler(
	catalog catalogRepo,
	workouts workoutsRepo,
	resolver catalogResolver,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		catalog:        catalog,
		workouts:       workouts,
		resolver:       resolver,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.listExercises")
	defer span.End()

	exercises, err := handler.catalog.ListExercises(ctx)
	if err != nil {
		log.Errorf("failed to list exercises: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("failed to marshal exercises: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exercisesJson, http.StatusOK)
}

func (handler *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.addExercise")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var addReq AddExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&addReq); err != nil {
		log.Tracef("add exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	if addReq.Label == "" {
		http.Error(w, "error, exercise label empty", http.StatusBadRequest)
		return
	}
	param := TrackingParam(addReq.TrackingParam)
	if !param.IsValid() {
		http.Error(w, "error, invalid tracking param", http.StatusBadRequest)
		return
	}

	ex, err := handler.catalog.AddExercise(ctx, addReq.Label, param)
	if err != nil {
		log.Errorf("failed to add exercise %q: %s", addReq.Label, err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	exJson, err := json.Marshal(ex)
	if err != nil {
		log.Errorf("failed to marshal added exercise: %s", err)
		http.Error(w, "error, failed to add exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("exercise %q added to catalog with id %d", ex.Label, ex.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exJson, http.StatusCreated)
}

func (handler *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteExercise")
	defer span.End()

	id, err := idFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ex, err := handler.catalog.DeleteExercise(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrExerciseNotFound):
			log.Debugf("exercise %d not found", id)
			http.Error(w, "exercise not found", http.StatusNotFound)
		case errors.Is(err, ErrExerciseNotEditable):
			http.Error(w, "exercise not editable", http.StatusForbidden)
		default:
			log.Errorf("failed to delete exercise %d: %s", id, err)
			http.Error(w, "exercise not deleted", http.StatusInternalServerError)
		}
		return
	}

	handler.resolver.Invalidate(ex.Label)

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

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	workouts, err := handler.workouts.List(ctx)
	if err != nil {
		log.Errorf("failed to list workouts: %s", err)
		http.Error(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	workoutsJson, err := json.Marshal(workouts)
	if err != nil {
		log.Errorf("failed to marshal workouts: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutsJson, http.StatusOK)
}

func (handler *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.detail")
	defer span.End()

	id, err := idFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	detail, err := handler.workouts.Detail(ctx, id)
	if errors.Is(err, ErrWorkoutNotFound) {
		log.Debugf("workout %d not found", id)
		http.Error(w, "workout not found", http.StatusNotFound)
		return
	} else if err != nil {
		log.Errorf("failed to get workout %d: %s", id, err)
		http.Error(w, "failed to get workout", http.StatusInternalServerError)
		return
	}

	detailJson, err := json.Marshal(detail)
	if err != nil {
		log.Errorf("failed to marshal workout detail: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, detailJson, http.StatusOK)
}

// HandleCompose takes a whole draft, validates it and persists the flattened
// document. Validation failures come back as a per-field error list.
func (handler *Handler) HandleCompose(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.compose")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var draft Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		log.Tracef("compose workout, unmarshal json params: %s", err)
		http.Error(w, "compose workout failed", http.StatusBadRequest)
		return
	}

	doc, err := draft.BuildDocument(ctx, handler.resolver)
	if err != nil {
		var validationErrs ValidationErrors
		if errors.As(err, &validationErrs) {
			validationJson, err := json.Marshal(ValidationResponse{Errors: validationErrs})
			if err != nil {
				log.Errorf("failed to marshal validation errors: %s", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			pkg.WriteResponseBytes(w, pkg.ContentType.JSON, validationJson, http.StatusBadRequest)
			return
		}
		log.Errorf("failed to build workout document: %s", err)
		http.Error(w, "compose workout failed", http.StatusInternalServerError)
		return
	}

	detail, err := handler.workouts.Create(ctx, *doc)
	if err != nil {
		log.Errorf("failed to create workout %q: %s", doc.Name, err)
		http.Error(w, "error, failed to create workout", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterWorkoutsComposed.Inc()

	detailJson, err := json.Marshal(detail)
	if err != nil {
		log.Errorf("failed to marshal created workout: %s", err)
		http.Error(w, "error, failed to create workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout %q created with id %d", detail.Name, detail.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, detailJson, http.StatusCreated)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	id, err := idFrom(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.workouts.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrWorkoutNotFound) {
			log.Debugf("workout %d not found", id)
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %d: %s", id, err)
		http.Error(w, "workout not deleted", http.StatusInternalServerError)
		return
	}

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
