package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/okian/bistro/internal/adapters/repository"
	"github.com/okian/bistro/internal/domain/model"
	"github.com/okian/bistro/internal/domain/validation"
	"github.com/okian/bistro/pkg/logger"
	"github.com/okian/bistro/pkg/metrics"
)

// RestaurantsHandler serves the restaurant collection and item endpoints.
type RestaurantsHandler struct {
	store        RestaurantStore
	validator    BodyValidator
	maxBodyBytes int64
	log          logger.Logger
}

// NewRestaurantsHandler creates a new restaurants handler.
func NewRestaurantsHandler(store RestaurantStore, validator BodyValidator, maxBodyBytes int64, log logger.Logger) *RestaurantsHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &RestaurantsHandler{store: store, validator: validator, maxBodyBytes: maxBodyBytes, log: log}
}

// HandleList handles GET /restaurants/ requests.
func (h *RestaurantsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_restaurants"
	all, err := h.store.FindAll(r.Context())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// HandleCreate handles POST /restaurants/ requests.
func (h *RestaurantsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_restaurant"
	fields, err := h.decode(w, r, false)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	created, err := h.store.Create(r.Context(), fields)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	metrics.RecordRestaurantCreated()
	writeJSON(w, http.StatusCreated, created)
}

// HandleGet handles GET /restaurants/{id}/ requests.
func (h *RestaurantsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_restaurant"
	rec, err := h.lookup(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleReplace handles PUT /restaurants/{id}/ requests.
func (h *RestaurantsHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "api.replace_restaurant", false)
}

// HandlePatch handles PATCH /restaurants/{id}/ requests.
func (h *RestaurantsHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "api.patch_restaurant", true)
}

// HandleDelete handles DELETE /restaurants/{id}/ requests.
func (h *RestaurantsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_restaurant"
	rec, err := h.lookup(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := h.store.Delete(r.Context(), rec.ID); err != nil {
		h.fail(w, r, op, err)
		return
	}
	metrics.RecordRestaurantDeleted()
	writeEmpty(w, http.StatusNoContent)
}

// update resolves the record before reading the body, so a missing record
// is a 404 whatever the payload.
func (h *RestaurantsHandler) update(w http.ResponseWriter, r *http.Request, op string, partial bool) {
	rec, err := h.lookup(r)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	fields, err := h.decode(w, r, partial)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	updated, err := h.store.Update(r.Context(), rec.ID, fields, partial)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	metrics.RecordRestaurantUpdated(updateMode(partial))
	writeJSON(w, http.StatusOK, updated)
}

// lookup parses the id path value and loads the record. An id that is not
// a positive integer cannot exist and is reported as not found.
func (h *RestaurantsHandler) lookup(r *http.Request) (model.Restaurant, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return model.Restaurant{}, repository.ErrNotFound
	}
	return h.store.FindByID(r.Context(), id)
}

// decode reads the capped body and validates it.
func (h *RestaurantsHandler) decode(w http.ResponseWriter, r *http.Request, partial bool) (model.Fields, error) {
	const op = "api.read_body"
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.log.Debug(r.Context(), "request body rejected", logger.Error(WrapKind(op, ErrBodyTooLarge, err)))
			return model.Fields{}, bodyError(fmt.Sprintf("Request body exceeds %d bytes.", tooLarge.Limit))
		}
		h.log.Debug(r.Context(), "request body rejected", logger.Error(WrapKind(op, ErrBadRequest, err)))
		return model.Fields{}, bodyError("Request body could not be read.")
	}
	return h.validator.Validate(r.Context(), body, partial)
}

// fail maps err to a response. Missing records answer 404 with no body,
// validation failures 400 with the field map, anything else 500.
func (h *RestaurantsHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var fieldErrs validation.FieldErrors
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeEmpty(w, http.StatusNotFound)
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, fieldErrs)
	default:
		h.log.Error(r.Context(), "request failed",
			logger.String("op", op),
			logger.String("request_id", RequestIDFrom(r.Context())),
			logger.Error(Wrap(op, err)))
		metrics.RecordErrorByComponent("api", "internal_error")
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}

// bodyError reports a body read failure like any other body-level problem.
func bodyError(msg string) validation.FieldErrors {
	errs := validation.FieldErrors{}
	errs.Add(validation.NonFieldErrors, msg)
	return errs
}

func updateMode(partial bool) string {
	if partial {
		return "partial"
	}
	return "full"
}

var _ RestaurantStore = (repository.Store)(nil)

var _ BodyValidator = (*validation.Validator)(nil)
