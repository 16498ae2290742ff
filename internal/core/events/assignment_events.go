package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	AssignmentCreated = "assignment.created"
	AssignmentUpdated = "assignment.updated"
	AssignmentDeleted = "assignment.deleted"
)

// NewAssignmentEvent builds an audit event for one assignment change.
func NewAssignmentEvent(eventType string, assignmentID, actorID int64, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	data["assignment_id"] = assignmentID
	data["actor_id"] = actorID
	return BaseEvent{
		ID:        fmt.Sprintf("%s-%s", eventType, uuid.NewString()),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
