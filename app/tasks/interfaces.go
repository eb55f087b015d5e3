package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application and the API to run background work.
// Example usage:
//
//	scheduler, err := NewScheduler(factory, workerCount, reviewSchedule, profileSchedule, time.Local)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(factory.NewRebuildProfileTask())
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
