// Package usersink forwards catalog activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/goliatone/go-variants/pkg/activity"
	"github.com/google/uuid"
)

// Hook implements activity.ActivityHook on top of an ActivitySink.
type Hook struct {
	Sink usertypes.ActivitySink
	// Verbs restricts forwarding to the listed verbs. Empty forwards all.
	Verbs []string
}

// Notify converts event into an ActivityRecord and logs it. Identifiers that
// are not UUIDs are kept in the record data under "<field>_ref".
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	normalized := activity.NormalizeEvent(event)
	if !normalized.Complete() || !h.accepts(normalized.Verb) {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := map[string]any{}
	for key, value := range normalized.Metadata {
		data[key] = value
	}
	record := usertypes.ActivityRecord{
		ActorID:    parseID(normalized.ActorID, "actor_ref", data),
		UserID:     parseID(normalized.UserID, "user_ref", data),
		TenantID:   parseID(normalized.TenantID, "tenant_ref", data),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		OccurredAt: normalized.OccurredAt,
	}
	if normalized.DefinitionCode != "" {
		data["definition_code"] = normalized.DefinitionCode
	}
	if len(normalized.Recipients) > 0 {
		data["recipients"] = append([]string{}, normalized.Recipients...)
	}
	if len(data) > 0 {
		record.Data = data
	}
	return h.Sink.Log(ctx, record)
}

func (h Hook) accepts(verb string) bool {
	if len(h.Verbs) == 0 {
		return true
	}
	for _, allowed := range h.Verbs {
		if strings.TrimSpace(allowed) == verb {
			return true
		}
	}
	return false
}

func parseID(input, refKey string, data map[string]any) uuid.UUID {
	if input == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(input)
	if err != nil {
		data[refKey] = input
		return uuid.Nil
	}
	return id
}
