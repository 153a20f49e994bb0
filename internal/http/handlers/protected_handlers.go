package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndrewYakovlev/aso-uni/domain"
	"github.com/AndrewYakovlev/aso-uni/internal/http/middleware"
)

// ProtectedHandlers serves the authenticated storefront pages that sit
// behind the edge gate.
type ProtectedHandlers struct {
	owned domain.OwnedRecordsRepository
}

func NewProtectedHandlers(owned domain.OwnedRecordsRepository) *ProtectedHandlers {
	return &ProtectedHandlers{owned: owned}
}

// Profile handles GET /profile. The gate guarantees a user identity here.
func (h *ProtectedHandlers) Profile(c *gin.Context) {
	identity := middleware.Identity(c)
	if !identity.IsUser() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	counts, err := h.owned.UserCounts(c.Request.Context(), identity.User.ID)
	if err != nil {
		counts = &domain.UserCounts{}
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":        identity.User.ID,
			"phone":     identity.User.Phone,
			"firstName": identity.User.FirstName,
			"lastName":  identity.User.LastName,
			"role":      identity.User.Role,
		},
		"favorites": counts.Favorites,
	})
}

// PanelDashboard handles GET /panel/dashboard for managers and admins.
func (h *ProtectedHandlers) PanelDashboard(c *gin.Context) {
	identity := middleware.Identity(c)
	if !identity.IsUser() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":    identity.User.Role,
		"userId":  identity.User.ID,
		"section": "dashboard",
	})
}
