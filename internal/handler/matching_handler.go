package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/NoLS-Tanzania/nols-app-sub009/internal/models"
	"github.com/NoLS-Tanzania/nols-app-sub009/internal/service"
	"github.com/NoLS-Tanzania/nols-app-sub009/pkg/utils"
)

type MatchingHandler struct {
	matchingService service.MatchingService
	validate        *validator.Validate
}

func NewMatchingHandler(matchingService service.MatchingService) *MatchingHandler {
	return &MatchingHandler{
		matchingService: matchingService,
		validate:        validator.New(),
	}
}

func (h *MatchingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/matching/find", h.Find)
}

// POST /driver/matching/find
func (h *MatchingHandler) Find(w http.ResponseWriter, r *http.Request) {
	var req models.MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		utils.BadRequest(w, err.Error())
		return
	}

	result, err := h.matchingService.FindBestDriver(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	if !result.Matched {
		utils.Success(w, http.StatusOK, map[string]interface{}{
			"matched": false,
			"message": result.Message,
			"drivers": []models.MatchCandidate{},
		})
		return
	}

	utils.Success(w, http.StatusOK, result)
}
