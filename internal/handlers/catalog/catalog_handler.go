// internal/handlers/catalog/catalog_handler.go
package catalog

import (
	"errors"
	"net/http"

	"vitrina-service/internal/domain/upgrade"
	xerrors "vitrina-service/internal/pkg/errors"
	"vitrina-service/internal/pkg/response"
	service "vitrina-service/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ========== Public Endpoints ==========

// ListUpgrades retrieves all currently purchasable upgrade definitions
func (h *CatalogHandler) ListUpgrades(c *gin.Context) {
	defs, err := h.catalogService.ListActiveDefinitions(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list upgrades", err)
		return
	}

	response.Success(c, http.StatusOK, "upgrades retrieved", defs)
}

// GetUpgrade retrieves a single upgrade definition by code
func (h *CatalogHandler) GetUpgrade(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.Error(c, http.StatusBadRequest, "upgrade code is required", nil)
		return
	}

	def, err := h.catalogService.Definition(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "upgrade not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to get upgrade", err)
		return
	}

	response.Success(c, http.StatusOK, "upgrade retrieved", def)
}

// ========== Admin Endpoints ==========

// ListAllUpgrades retrieves every definition, active or not
func (h *CatalogHandler) ListAllUpgrades(c *gin.Context) {
	defs, err := h.catalogService.ListAllDefinitions(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list upgrades", err)
		return
	}

	response.Success(c, http.StatusOK, "upgrades retrieved", defs)
}

// CreateUpgrade publishes a new upgrade definition
func (h *CatalogHandler) CreateUpgrade(c *gin.Context) {
	var req upgrade.CreateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	def, err := h.catalogService.CreateDefinition(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrConflict) {
			response.Error(c, http.StatusConflict, "upgrade code already exists", err)
			return
		}
		if errors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, "invalid upgrade definition", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create upgrade", err)
		return
	}

	response.Success(c, http.StatusCreated, "upgrade created", def)
}

// UpdateUpgrade patches an existing definition
func (h *CatalogHandler) UpdateUpgrade(c *gin.Context) {
	code := c.Param("code")

	var req upgrade.UpdateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request body", err)
		return
	}

	def, err := h.catalogService.UpdateDefinition(c.Request.Context(), code, &req)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "upgrade not found")
			return
		}
		if errors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, "invalid upgrade definition", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update upgrade", err)
		return
	}

	response.Success(c, http.StatusOK, "upgrade updated", def)
}

// ActivateUpgrade makes a definition purchasable
func (h *CatalogHandler) ActivateUpgrade(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateUpgrade stops new purchases of a definition
func (h *CatalogHandler) DeactivateUpgrade(c *gin.Context) {
	h.setActive(c, false)
}

func (h *CatalogHandler) setActive(c *gin.Context, active bool) {
	code := c.Param("code")

	if err := h.catalogService.SetDefinitionActive(c.Request.Context(), code, active); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "upgrade not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to change upgrade status", err)
		return
	}

	response.Success(c, http.StatusOK, "upgrade status updated", gin.H{"code": code, "active": active})
}
