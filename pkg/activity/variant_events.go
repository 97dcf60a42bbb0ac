package activity

import (
	"strings"
	"time"
)

// Verbs emitted by the variants catalog.
const (
	VerbRegistered = "variants.registered"
	VerbReplaced   = "variants.replaced"
	VerbRemoved    = "variants.removed"
)

// ObjectType is the object type of every catalog event.
const ObjectType = "variants.definition"

// DefinitionSummary describes the shape of a registered definition without
// carrying its fragments.
type DefinitionSummary struct {
	Axes      []string
	Defaults  map[string]string
	Compounds int
	Guarded   int
	HasBase   bool
}

// VariantEventInput holds the fields shared by catalog lifecycle events.
type VariantEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Recipients []string
	Metadata   map[string]any
	// Name is the catalog key. It becomes the event's definition code.
	Name string
	// RegistrationID identifies this registration and becomes the object ID.
	RegistrationID string
	// PreviousID is the registration replaced or removed, if any.
	PreviousID string
	Summary    *DefinitionSummary
	OccurredAt time.Time
}

// BuildRegisteredEvent builds the event for a new catalog entry.
func BuildRegisteredEvent(input VariantEventInput) Event {
	return buildVariantEvent(VerbRegistered, input)
}

// BuildReplacedEvent builds the event for an entry swapped in place.
func BuildReplacedEvent(input VariantEventInput) Event {
	return buildVariantEvent(VerbReplaced, input)
}

// BuildRemovedEvent builds the event for a deleted entry.
func BuildRemovedEvent(input VariantEventInput) Event {
	return buildVariantEvent(VerbRemoved, input)
}

func buildVariantEvent(verb string, input VariantEventInput) Event {
	name := strings.TrimSpace(input.Name)
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}

	if name != "" {
		set("name", name)
	}
	if id := strings.TrimSpace(input.PreviousID); id != "" {
		set("previous_id", id)
	}
	if s := input.Summary; s != nil {
		set("axes", append([]string{}, s.Axes...))
		set("compounds", s.Compounds)
		set("guarded", s.Guarded)
		set("has_base", s.HasBase)
		if len(s.Defaults) > 0 {
			defaults := make(map[string]string, len(s.Defaults))
			for key, value := range s.Defaults {
				defaults[key] = value
			}
			set("defaults", defaults)
		}
	}

	objectID := strings.TrimSpace(input.RegistrationID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.PreviousID)
	}
	if objectID == "" {
		objectID = name
	}

	var recipients []string
	if len(input.Recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	return Event{
		Verb:           verb,
		ActorID:        strings.TrimSpace(input.ActorID),
		UserID:         strings.TrimSpace(input.UserID),
		TenantID:       strings.TrimSpace(input.TenantID),
		ObjectType:     ObjectType,
		ObjectID:       objectID,
		Channel:        strings.TrimSpace(input.Channel),
		DefinitionCode: name,
		Recipients:     recipients,
		Metadata:       metadata,
		OccurredAt:     input.OccurredAt,
	}
}
