// internal/handlers/profile/profile_handler.go
package profile

import (
	"errors"
	"net/http"
	"strconv"

	domain "vitrina-service/internal/domain/profile"
	xerrors "vitrina-service/internal/pkg/errors"
	"vitrina-service/internal/pkg/response"
	service "vitrina-service/internal/service/profile"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// GetProfile retrieves one profile's base ranking inputs
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid profile ID", err)
		return
	}

	p, err := h.profileService.GetProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "profile not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", p)
}

// CreateProfile registers a profile in the directory (admin)
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req domain.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	p, err := h.profileService.CreateProfile(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to create profile", err)
		return
	}

	response.Success(c, http.StatusCreated, "profile created", p)
}

// UpdateProfile patches a profile's base ranking inputs (admin)
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid profile ID", err)
		return
	}

	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	p, err := h.profileService.UpdateProfile(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "profile not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile updated", p)
}

// DeleteProfile removes a profile from the directory (admin)
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid profile ID", err)
		return
	}

	if err := h.profileService.DeleteProfile(c.Request.Context(), id); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "profile not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile deleted", nil)
}
