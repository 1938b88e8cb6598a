package syncengine

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/ScepterCode/Storemaster-sub000/utils"
	"github.com/gin-gonic/gin"
)

func resolveIdentity(c *gin.Context) (Identity, error) {
	userID, ok := utils.GetUserIdFromContext(c.Request.Context())
	if !ok || userID == "" {
		return Identity{}, errors.New("no authenticated user")
	}
	name, _ := utils.GetUserNameFromContext(c.Request.Context())
	email, _ := utils.GetUserEmailFromContext(c.Request.Context())
	orgID, _ := utils.GetOrganizationIdFromContext(c.Request.Context())
	return Identity{ID: userID, Name: name, Email: email, OrgID: orgID}, nil
}

func (e *Engine) StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := e.CachedSyncStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

func (e *Engine) SyncAllHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveIdentity(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// mode=async queues the pass on the broker; the push endpoint in
		// this same service picks it up.
		if strings.EqualFold(c.Query("mode"), "async") {
			payload := SyncPubSubPayload{
				UserId:         user.ID,
				OrganizationId: user.OrgID,
				TriggeredBy:    "api",
			}
			if err := e.publish(c.Request.Context(), payload); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusAccepted, gin.H{"queued": true})
			return
		}

		report, err := e.SyncAll(c.Request.Context(), user)
		if err != nil {
			writeSyncError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func (e *Engine) SyncEntityHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveIdentity(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		kind := models.EntityKind(c.Param("kind"))
		if !models.IsValidKind(kind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity kind"})
			return
		}

		report, err := e.SyncEntity(c.Request.Context(), user, kind)
		if err != nil {
			writeSyncError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func (e *Engine) RunMigrationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := e.RunMigrations(c.Request.Context())
		c.JSON(http.StatusOK, report)
	}
}

func (e *Engine) MultiTenantMigrationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveIdentity(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req MultiTenantMigrationRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
		}
		if req.OrganizationName != "" {
			user.Name = req.OrganizationName
		}

		result, err := e.RunMultiTenantMigration(c.Request.Context(), user)
		if err != nil {
			writeSyncError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (e *Engine) MergedViewHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := resolveIdentity(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		kind := models.EntityKind(c.Param("kind"))
		if !models.IsValidKind(kind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity kind"})
			return
		}

		records, err := e.MergedView(c.Request.Context(), kind, user.ID, user.OrgID)
		if err != nil {
			writeSyncError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": records})
	}
}

func (e *Engine) CreateRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolveIdentity(c); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		kind := models.EntityKind(c.Param("kind"))
		if !models.IsValidKind(kind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity kind"})
			return
		}

		var req WriteIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		record, err := e.ApplyCreate(c.Request.Context(), kind, req.Record)
		if err != nil {
			writeSyncError(c, err)
			return
		}
		c.JSON(http.StatusCreated, record)
	}
}

func (e *Engine) UpdateRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolveIdentity(c); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		kind := models.EntityKind(c.Param("kind"))
		if !models.IsValidKind(kind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity kind"})
			return
		}

		var req WriteIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		record, err := e.ApplyUpdate(c.Request.Context(), kind, c.Param("id"), req.Record)
		if err != nil {
			writeSyncError(c, err)
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

func (e *Engine) DeleteRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolveIdentity(c); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		kind := models.EntityKind(c.Param("kind"))
		if !models.IsValidKind(kind) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity kind"})
			return
		}

		if err := e.ApplyDelete(c.Request.Context(), kind, c.Param("id")); err != nil {
			writeSyncError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func writeSyncError(c *gin.Context, err error) {
	var precondition *PreconditionError
	switch {
	case errors.Is(err, ErrSyncInProgress), errors.Is(err, ErrMigrationInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &precondition):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
