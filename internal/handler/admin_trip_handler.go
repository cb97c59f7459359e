package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/middleware"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/service"
	"github.com/NoLS-Tanzania/nols-app-sub009/pkg/utils"
)

// AdminTripHandler serves the scheduled-trip dispatch screens and the three
// assignment overrides. Overrides carry the acting admin from the token.
type AdminTripHandler struct {
	scheduleService   service.ScheduleService
	assignmentService service.AssignmentService
	validate          *validator.Validate
}

func NewAdminTripHandler(scheduleService service.ScheduleService, assignmentService service.AssignmentService) *AdminTripHandler {
	return &AdminTripHandler{
		scheduleService:   scheduleService,
		assignmentService: assignmentService,
		validate:          validator.New(),
	}
}

func (h *AdminTripHandler) RegisterRoutes(r chi.Router) {
	r.Get("/drivers/trips/scheduled", h.ListScheduled)
	r.Get("/drivers/trips/scheduled/{id}", h.GetScheduled)
	r.Post("/drivers/trips/scheduled/{id}/award", h.Award)
	r.Post("/drivers/trips/scheduled/{id}/reassign", h.Reassign)
	r.Post("/drivers/trips/scheduled/{id}/unassign", h.Unassign)
}

// GET /admin/drivers/trips/scheduled
func (h *AdminTripHandler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.TripListFilter{
		Stage:         q.Get("stage"),
		VehicleType:   q.Get("vehicleType"),
		PaymentStatus: q.Get("paymentStatus"),
		Page:          queryInt(q.Get("page"), 1),
		PageSize:      queryInt(q.Get("pageSize"), 20),
	}

	page, err := h.scheduleService.ListScheduled(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, page)
}

// GET /admin/drivers/trips/scheduled/{id}
func (h *AdminTripHandler) GetScheduled(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(tripID) {
		utils.BadRequest(w, "invalid trip id")
		return
	}

	detail, err := h.scheduleService.GetScheduled(r.Context(), tripID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, detail)
}

// POST /admin/drivers/trips/scheduled/{id}/award
func (h *AdminTripHandler) Award(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(tripID) {
		utils.BadRequest(w, "invalid trip id")
		return
	}

	var req models.AwardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	actor := middleware.Subject(r.Context())
	if err := h.assignmentService.Award(r.Context(), tripID, req.ClaimID, req.Reason, actor); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{
		"status":  "awarded",
		"trip_id": tripID,
	})
}

// POST /admin/drivers/trips/scheduled/{id}/reassign
func (h *AdminTripHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(tripID) {
		utils.BadRequest(w, "invalid trip id")
		return
	}

	var req models.ReassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	actor := middleware.Subject(r.Context())
	if err := h.assignmentService.Reassign(r.Context(), tripID, req.ClaimID, req.Reason, actor); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{
		"status":  "reassigned",
		"trip_id": tripID,
	})
}

// POST /admin/drivers/trips/scheduled/{id}/unassign
func (h *AdminTripHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(tripID) {
		utils.BadRequest(w, "invalid trip id")
		return
	}

	var req models.UnassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	actor := middleware.Subject(r.Context())
	if err := h.assignmentService.Unassign(r.Context(), tripID, req.Reason, actor); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{
		"status":  "unassigned",
		"trip_id": tripID,
	})
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
