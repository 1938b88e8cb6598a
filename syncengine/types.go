package syncengine

import "encoding/json"

// SyncPubSubPayload is the message body published to request a background
// sync pass for one user.
type SyncPubSubPayload struct {
	UserId         string `json:"userId"`
	OrganizationId string `json:"organizationId"`
	TriggeredBy    string `json:"triggeredBy"`
}

// PubSubPushEnvelope is the wrapper Google Pub/Sub wraps around a pushed
// message.
type PubSubPushEnvelope struct {
	Message struct {
		Data      []byte `json:"data"`
		MessageId string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// WriteIntentRequest carries a record body for a local create or update.
type WriteIntentRequest struct {
	Record json.RawMessage `json:"record" binding:"required"`
}

// MultiTenantMigrationRequest optionally overrides the organization name
// derived from the user profile.
type MultiTenantMigrationRequest struct {
	OrganizationName string `json:"organizationName"`
}
