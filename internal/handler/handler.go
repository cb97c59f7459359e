package handler

import (
	"net/http"

	apperrors "github.com/NoLS-Tanzania/nols-app-sub009/internal/errors"
	"github.com/NoLS-Tanzania/nols-app-sub009/pkg/utils"
)

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*apperrors.APIError); ok {
		utils.Error(w, apiErr)
		return
	}

	switch err {
	case apperrors.ErrNotFound:
		utils.NotFound(w, "resource")
	case apperrors.ErrTripAlreadyAssigned:
		utils.Error(w, apperrors.TripAlreadyAssigned())
	case apperrors.ErrNoAssignedDriver:
		utils.Error(w, apperrors.NoAssignedDriver())
	case apperrors.ErrEmptyReason:
		utils.Error(w, apperrors.EmptyReason())
	case apperrors.ErrClaimLimitReached:
		utils.Error(w, apperrors.ClaimLimitReached())
	default:
		utils.InternalError(w, "internal server error")
	}
}
