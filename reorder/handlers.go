package reorder

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/ScepterCode/Storemaster-sub000/utils"
	"github.com/gin-gonic/gin"
)

// ProductSource yields the merged local-plus-remote product view.
type ProductSource interface {
	MergedView(ctx context.Context, kind models.EntityKind, userID string, orgID string) ([]json.RawMessage, error)
}

// SuggestionsHandler scores the caller's merged product inventory and
// returns the products the model flags for reorder. Sidecar downtime
// surfaces as 503, never a crash.
func SuggestionsHandler(source ProductSource, predictor Predictor) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok || userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		orgID, _ := utils.GetOrganizationIdFromContext(c.Request.Context())

		records, err := source.MergedView(c.Request.Context(), models.KindProduct, userID, orgID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		products, err := localstore.DecodeRecords[models.Product](records)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		suggestions, err := Advise(c.Request.Context(), predictor, products)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items": suggestions,
			"total": len(suggestions),
		})
	}
}
