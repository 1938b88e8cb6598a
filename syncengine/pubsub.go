package syncengine

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/ScepterCode/Storemaster-sub000/config"
	"github.com/gin-gonic/gin"
)

// PublishSyncRequest asks a background worker to run a sync pass for the
// user. Publishing is fire-and-forget from the caller's point of view; the
// push endpoint in this same service does the actual work.
func PublishSyncRequest(ctx context.Context, payload SyncPubSubPayload) error {
	topicName := strings.TrimSpace(os.Getenv("STOREMASTER_SYNC_TOPIC"))
	if topicName == "" {
		topicName = "storemaster-sync"
	}

	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}

	topic := client.Topic(topicName)
	if envBoolDefault("STOREMASTER_SYNC_CREATE_TOPIC", false) {
		topic, err = config.CreateTopicIfNotExists(client, topicName)
		if err != nil {
			return err
		}
	}

	data, _ := json.Marshal(payload)
	res := topic.Publish(ctx, &pubsub.Message{Data: data})
	_, err = res.Get(ctx)
	return err
}

// PubSubPushHandler accepts Pub/Sub push deliveries and runs a full sync
// pass for the requesting user. It always replies 204 so a malformed or
// stale message is consumed rather than redelivered forever.
func (e *Engine) PubSubPushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !envBoolDefault("ENABLE_SYNC_PUBSUB_PUSH_ENDPOINT", true) {
			c.Status(204)
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(204)
			return
		}

		var envelope PubSubPushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			c.Status(204)
			return
		}

		var payload SyncPubSubPayload
		if err := json.Unmarshal(envelope.Message.Data, &payload); err != nil {
			c.Status(204)
			return
		}
		if payload.UserId == "" {
			c.Status(204)
			return
		}

		// Pub/Sub delivers at least once; a message id already seen within
		// the window is acked without running a second pass.
		dedupeKey := ""
		if envelope.Message.MessageId != "" {
			dedupeKey = "storemaster:pubsub-seen:" + envelope.Message.MessageId
			var seen bool
			if found, err := config.GetRedisObject(dedupeKey, &seen); err == nil && found {
				c.Status(204)
				return
			}
			if err := config.SetRedisObject(dedupeKey, true, 10*time.Minute); err != nil {
				config.LogError(e.logger, "syncengine", "PubSubPushHandler", "mark message seen", nil, err)
			}
		}

		if _, err := e.SyncAll(c.Request.Context(), Identity{ID: payload.UserId}); err != nil {
			config.LogError(e.logger, "syncengine", "PubSubPushHandler", "sync pass", map[string]interface{}{
				"userId":      payload.UserId,
				"triggeredBy": payload.TriggeredBy,
			}, err)
			if dedupeKey != "" {
				// Let a redelivery retry the pass.
				_ = config.RemoveRedisKey(dedupeKey)
			}
		}
		c.Status(204)
	}
}

func envBoolDefault(key string, def bool) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch val {
	case "true", "1", "yes", "y", "on":
		return true
	case "false", "0", "no", "n", "off":
		return false
	default:
		return def
	}
}
