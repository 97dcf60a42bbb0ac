package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/goliatone/go-variants/pkg/activity"
	"github.com/goliatone/go-variants/pkg/activity/usersink"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	tenantID := uuid.New()
	registration := uuid.NewString()

	event := activity.BuildRegisteredEvent(activity.VariantEventInput{
		ActorID:        actorID.String(),
		UserID:         "svc-renderer",
		TenantID:       tenantID.String(),
		Channel:        "variants",
		Name:           "button",
		RegistrationID: registration,
		Recipients:     []string{"design@example.com"},
		Summary:        &activity.DefinitionSummary{Axes: []string{"size", "color"}, Compounds: 1},
		OccurredAt:     now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.TenantID != tenantID {
		t.Fatalf("unexpected identity %+v", record)
	}
	if record.UserID != uuid.Nil || record.Data["user_ref"] != "svc-renderer" {
		t.Fatalf("expected non-uuid user kept as reference, got %v / %v", record.UserID, record.Data["user_ref"])
	}
	if record.Verb != activity.VerbRegistered || record.ObjectType != activity.ObjectType || record.ObjectID != registration {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "variants" {
		t.Fatalf("expected channel variants got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["definition_code"] != "button" || record.Data["name"] != "button" {
		t.Fatalf("expected definition metadata, got %+v", record.Data)
	}
	recipients, ok := record.Data["recipients"].([]string)
	if !ok || len(recipients) != 1 || recipients[0] != "design@example.com" {
		t.Fatalf("expected recipients metadata got %v", record.Data["recipients"])
	}
}

func TestHookNotifySkipsIncompleteAndFilteredEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink, Verbs: []string{activity.VerbRemoved}}

	_ = hook.Notify(context.Background(), activity.Event{})
	_ = hook.Notify(context.Background(), activity.BuildRegisteredEvent(activity.VariantEventInput{Name: "button"}))
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}

	if err := hook.Notify(context.Background(), activity.BuildRemovedEvent(activity.VariantEventInput{Name: "button"})); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].OccurredAt.IsZero() {
		t.Fatalf("expected one timestamped record, got %+v", sink.records)
	}
}

func TestHookNotifyPropagatesSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}
	err := hook.Notify(context.Background(), activity.BuildRemovedEvent(activity.VariantEventInput{Name: "badge"}))
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{}); err != nil {
		t.Fatalf("expected nil sink to be a no-op, got %v", err)
	}
}
