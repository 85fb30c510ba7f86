package infrastructure

import (
	"fmt"

	"reelspin/events"
)

// SubjectPrefix is the root of every subject this service publishes to
const SubjectPrefix = "reelspin"

// StreamName is the JetStream stream holding published events
const StreamName = "reelspin_events"

var publishedEventTypes = []events.EventType{
	events.EventTypeBalanceChange,
	events.EventTypeAccountCreated,
	events.EventTypeSpinSettled,
	events.EventTypeAutoSpinChanged,
	events.EventTypePolicyUpdated,
	events.EventTypeSpinLogged,
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for _, t := range publishedEventTypes {
		if subject == fmt.Sprintf("%s.%s", SubjectPrefix, t) {
			return t
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	subjects := make([]string, 0, len(publishedEventTypes))
	for _, t := range publishedEventTypes {
		subjects = append(subjects, fmt.Sprintf("%s.%s", SubjectPrefix, t))
	}
	return subjects
}

// EventTypes returns the event types forwarded to NATS
func (m *EventSubjectMapper) EventTypes() []events.EventType {
	return append([]events.EventType(nil), publishedEventTypes...)
}
