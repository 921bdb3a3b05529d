// internal/handlers/listing/listing_handler.go
package listing

import (
	"errors"
	"net/http"
	"strconv"

	xerrors "vitrina-service/internal/pkg/errors"
	"vitrina-service/internal/pkg/response"
	service "vitrina-service/internal/service/listing"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listingService *service.ListingService
}

func NewListingHandler(listingService *service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// GetListing retrieves all active profiles in display order
func (h *ListingHandler) GetListing(c *gin.Context) {
	items, err := h.listingService.Listing(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to build listing", err)
		return
	}

	response.Success(c, http.StatusOK, "listing retrieved", items)
}

// GetProfileRanking retrieves one profile's aggregated ranking effect
func (h *ListingHandler) GetProfileRanking(c *gin.Context) {
	profileID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid profile ID", err)
		return
	}

	effect, err := h.listingService.ProfileRanking(c.Request.Context(), profileID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "profile not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to compute ranking", err)
		return
	}

	response.Success(c, http.StatusOK, "ranking computed", effect)
}
