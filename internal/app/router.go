// internal/app/router.go
package app

import (
	catalogHandler "vitrina-service/internal/handlers/catalog"
	listingHandler "vitrina-service/internal/handlers/listing"
	profileHandler "vitrina-service/internal/handlers/profile"
	promotionHandler "vitrina-service/internal/handlers/promotion"
	"vitrina-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	CatalogHandler  *catalogHandler.CatalogHandler
	PurchaseHandler *promotionHandler.PurchaseHandler
	ListingHandler  *listingHandler.ListingHandler
	ProfileHandler  *profileHandler.ProfileHandler
	AdminToken      string
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Upgrade Catalog ====================
	upgrades := api.Group("/upgrades")
	{
		upgrades.GET("", h.CatalogHandler.ListUpgrades)
		upgrades.GET("/:code", h.CatalogHandler.GetUpgrade)
	}

	// ==================== Purchases ====================
	api.POST("/purchases", h.PurchaseHandler.ApplyPurchase)

	// ==================== Profiles ====================
	profiles := api.Group("/profiles")
	{
		profiles.GET("/:id", h.ProfileHandler.GetProfile)
		profiles.GET("/:id/entitlements", h.PurchaseHandler.GetEntitlements)
		profiles.GET("/:id/ranking", h.ListingHandler.GetProfileRanking)
		profiles.GET("/:id/payments", h.PurchaseHandler.GetProfilePayments)
	}

	// ==================== Listing ====================
	api.GET("/listing", h.ListingHandler.GetListing)

	// ==================== ADMIN ROUTES ====================
	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(h.AdminToken))
	{
		adminUpgrades := admin.Group("/upgrades")
		{
			adminUpgrades.GET("", h.CatalogHandler.ListAllUpgrades)
			adminUpgrades.POST("", h.CatalogHandler.CreateUpgrade)
			adminUpgrades.PUT("/:code", h.CatalogHandler.UpdateUpgrade)
			adminUpgrades.PUT("/:code/activate", h.CatalogHandler.ActivateUpgrade)
			adminUpgrades.PUT("/:code/deactivate", h.CatalogHandler.DeactivateUpgrade)
		}

		adminProfiles := admin.Group("/profiles")
		{
			adminProfiles.POST("", h.ProfileHandler.CreateProfile)
			adminProfiles.PUT("/:id", h.ProfileHandler.UpdateProfile)
			adminProfiles.DELETE("/:id", h.ProfileHandler.DeleteProfile)
		}

		admin.GET("/payments", h.PurchaseHandler.ListPayments)
	}
}
