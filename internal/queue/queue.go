package queue

import (
	"context"
	"time"

	"github.com/emrgen/programtree/internal/tree"
	"github.com/google/uuid"
)

// TreeChangedTopic is the topic or stream receiving tree change events.
var TreeChangedTopic = "programtree.tree.changed"

type ChangeType string

const (
	ChangeContent      ChangeType = "CONTENT"
	ChangeLink         ChangeType = "LINK"
	ChangePrerequisite ChangeType = "PREREQUISITE"
	ChangeDeleted      ChangeType = "DELETED"
)

// TreeChanged tells consumers that a program tree was written.
type TreeChanged struct {
	ID         string     `json:"id"`
	Type       ChangeType `json:"type"`
	Code       string     `json:"code"`
	Year       int        `json:"year"`
	Command    string     `json:"command"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func NewTreeChanged(identity tree.ProgramTreeIdentity, changeType ChangeType, command string) *TreeChanged {
	return &TreeChanged{
		ID:         uuid.New().String(),
		Type:       changeType,
		Code:       identity.Code,
		Year:       identity.Year,
		Command:    command,
		OccurredAt: time.Now().UTC(),
	}
}

// TreeQueue publishes tree change events.
type TreeQueue interface {
	// PublishChange appends a change event to the queue.
	PublishChange(ctx context.Context, event *TreeChanged) error
	Close() error
}
