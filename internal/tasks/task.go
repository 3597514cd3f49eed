package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeScrapeBills  TaskType = "scrape_bills"
	TaskTypeScrapeEvents TaskType = "scrape_events"
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetJurisdiction() string
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID           string
	Type         TaskType
	Jurisdiction string
	StartedAt    *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetJurisdiction() string {
	return t.Jurisdiction
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, jurisdiction string) Task {
	return Task{
		ID:           uuid.NewString(),
		Type:         taskType,
		Jurisdiction: jurisdiction,
	}
}
