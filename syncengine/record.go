package syncengine

import (
	"encoding/json"
	"strings"
	"time"
)

// Collections written by older app versions predate the sync-metadata
// schema, so the engine inspects and patches records as raw JSON objects
// rather than typed structs.

func decodeRecord(raw json.RawMessage) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func encodeRecord(m map[string]any) (json.RawMessage, error) {
	return json.Marshal(m)
}

func recordString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func recordBool(m map[string]any, key string) (bool, bool) {
	v, ok := m[key].(bool)
	return v, ok
}

// recordInt tolerates both the float64 that json decoding produces and the
// int that fresh in-process writes leave behind.
func recordInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func recordTime(m map[string]any, key string) (time.Time, bool) {
	s := recordString(m, key)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// hasSyncMetadata reports whether a stored record already carries the full
// metadata schema: a non-empty id, a boolean synced flag and a string
// lastModified timestamp.
func hasSyncMetadata(m map[string]any) bool {
	if strings.TrimSpace(recordString(m, "id")) == "" {
		return false
	}
	if _, ok := recordBool(m, "synced"); !ok {
		return false
	}
	if _, ok := m["lastModified"].(string); !ok {
		return false
	}
	return true
}

// recordOwnedOrphan reports whether the record belongs to userID and still
// has no organization reference.
func recordOwnedOrphan(m map[string]any, userID string) bool {
	if recordString(m, "userId") != userID {
		return false
	}
	org, ok := m["organizationId"]
	if !ok || org == nil {
		return true
	}
	s, isString := org.(string)
	return isString && strings.TrimSpace(s) == ""
}

// pendingSync reports whether a record is due for pushing: unsynced, not
// dead-lettered, and past its backoff window.
func pendingSync(m map[string]any, now time.Time) bool {
	synced, ok := recordBool(m, "synced")
	if ok && synced {
		return false
	}
	if dead, ok := recordBool(m, "dead"); ok && dead {
		return false
	}
	if next, ok := recordTime(m, "nextAttemptAt"); ok && next.After(now) {
		return false
	}
	return true
}
