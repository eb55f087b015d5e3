package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const taskTimeout = 10 * time.Minute

type Scheduler struct {
	factory         *Factory
	cron            *cron.Cron
	reviewSchedule  string
	profileSchedule string
	workerCount     int
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

// NewScheduler validates both cron expressions up front so a bad schedule
// fails at startup instead of silently never firing.
func NewScheduler(factory *Factory, workerCount int, reviewSchedule, profileSchedule string, location *time.Location) (*Scheduler, error) {
	if workerCount < 1 {
		workerCount = 1
	}
	if location == nil {
		location = time.Local
	}

	for _, schedule := range []string{reviewSchedule, profileSchedule} {
		if schedule == "" {
			continue
		}
		if _, err := cron.ParseStandard(schedule); err != nil {
			return nil, fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		factory:         factory,
		cron:            cron.New(cron.WithLocation(location)),
		reviewSchedule:  reviewSchedule,
		profileSchedule: profileSchedule,
		workerCount:     workerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 100),
	}, nil
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.enqueueStartupTasks()

	s.addCronTask(s.reviewSchedule, func() TaskInterface {
		return s.factory.NewCreateReviewTask(time.Now())
	})
	s.addCronTask(s.profileSchedule, func() TaskInterface {
		return s.factory.NewRebuildProfileTask()
	})

	s.cron.Start()

	slog.Info("Scheduler started",
		"workers", s.workerCount,
		"review_schedule", s.reviewSchedule,
		"profile_schedule", s.profileSchedule)
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Submit runs a task on the calling goroutine with the scheduler's timeout.
// The API uses it for on-demand work whose result is returned directly.
func (s *Scheduler) Submit(ctx context.Context, task TaskInterface) error {
	task.Start()

	taskCtx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	return task.Execute(taskCtx)
}

func (s *Scheduler) addCronTask(schedule string, newTask func() TaskInterface) {
	if schedule == "" {
		return
	}

	_, err := s.cron.AddFunc(schedule, func() {
		task := newTask()
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue scheduled task", "type", string(task.GetType()), "error", err)
		}
	})
	if err != nil {
		slog.Error("Failed to register cron entry", "schedule", schedule, "error", err)
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	syncTasks := s.factory.NewSyncFeedConfigTasks()
	slog.Debug("Syncing feed configurations", "count", len(syncTasks))

	for _, syncTask := range syncTasks {
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncFeedConfigTask", "feed", syncTask.Target, "error", err)
		}
	}

	if err := s.EnqueueTask(s.factory.NewRebuildProfileTask()); err != nil {
		slog.Warn("Failed to enqueue RebuildProfileTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "target", task.GetTarget(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				select {
				case <-time.After(retryDelay):
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				}
				if retryErr := s.EnqueueTask(task); retryErr != nil {
					slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
