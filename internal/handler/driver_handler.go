package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/middleware"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/service"
	"github.com/NoLS-Tanzania/nols-app-sub009/pkg/utils"
)

// DriverHandler covers the driver-facing dispatch surface: location pings,
// availability, and scheduled-trip claims. The driver id always comes from the
// authenticated subject, never from the body.
type DriverHandler struct {
	driverService     service.DriverService
	scheduleService   service.ScheduleService
	assignmentService service.AssignmentService
	validate          *validator.Validate
}

func NewDriverHandler(
	driverService service.DriverService,
	scheduleService service.ScheduleService,
	assignmentService service.AssignmentService,
) *DriverHandler {
	return &DriverHandler{
		driverService:     driverService,
		scheduleService:   scheduleService,
		assignmentService: assignmentService,
		validate:          validator.New(),
	}
}

func (h *DriverHandler) RegisterRoutes(r chi.Router) {
	r.Post("/location", h.UpdateLocation)
	r.Post("/availability", h.SetAvailability)
	r.Get("/trips/scheduled", h.ListClaimable)
	r.Post("/trips/scheduled/{id}/claim", h.ClaimTrip)
}

// POST /driver/location
func (h *DriverHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	driverID := middleware.Subject(r.Context())
	if driverID == "" {
		utils.BadRequest(w, "missing authenticated driver")
		return
	}

	var req models.UpdateDriverLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.driverService.UpdateLocation(r.Context(), driverID, *req.Lat, *req.Lng); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]string{"status": "updated"})
}

// POST /driver/availability
func (h *DriverHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	driverID := middleware.Subject(r.Context())
	if driverID == "" {
		utils.BadRequest(w, "missing authenticated driver")
		return
	}

	var req models.UpdateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	if err := h.driverService.SetAvailability(r.Context(), driverID, *req.Available); err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]bool{"available": *req.Available})
}

// GET /driver/trips/scheduled
func (h *DriverHandler) ListClaimable(w http.ResponseWriter, r *http.Request) {
	trips, err := h.scheduleService.ListClaimable(r.Context(), 50)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Success(w, http.StatusOK, map[string]interface{}{"trips": trips})
}

// POST /driver/trips/scheduled/{id}/claim
func (h *DriverHandler) ClaimTrip(w http.ResponseWriter, r *http.Request) {
	driverID := middleware.Subject(r.Context())
	if driverID == "" {
		utils.BadRequest(w, "missing authenticated driver")
		return
	}

	tripID := chi.URLParam(r, "id")
	if !utils.IsValidUUID(tripID) {
		utils.BadRequest(w, "invalid trip id")
		return
	}

	claim, err := h.assignmentService.SubmitClaim(r.Context(), tripID, driverID)
	if err != nil {
		handleError(w, err)
		return
	}

	utils.Created(w, claim)
}
