package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeCreateReview       TaskType = "create_review"
	TaskTypeRebuildProfile     TaskType = "rebuild_profile"
	TaskTypeGenerateNewsletter TaskType = "generate_newsletter"
	TaskTypeSyncFeedConfig     TaskType = "sync_feed_config"
)

const DefaultMaxRetries = 3

// retryBudgets caps retries per task type. Types not listed get
// DefaultMaxRetries.
var retryBudgets = map[TaskType]int{
	TaskTypeCreateReview:       2,
	TaskTypeGenerateNewsletter: 2,
}

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetTarget() string
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// Task carries the bookkeeping shared by every task. Target is the review
// date or feed name the task works on.
type Task struct {
	ID         string
	Type       TaskType
	Target     string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetTarget() string {
	return t.Target
}

func (t *Task) GetRetryCount() int {
	return t.RetryCount
}

func (t *Task) GetMaxRetries() int {
	return t.MaxRetries
}

func (t *Task) IncrementRetryCount() {
	t.RetryCount++
}

func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

// DisableRetry marks a failure as final.
func (t *Task) DisableRetry() {
	t.MaxRetries = t.RetryCount
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

func NewTask(taskType TaskType, target string) Task {
	maxRetries, ok := retryBudgets[taskType]
	if !ok {
		maxRetries = DefaultMaxRetries
	}

	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		Target:     target,
		MaxRetries: maxRetries,
	}
}
