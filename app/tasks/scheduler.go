package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/feedkeep/feedkeep/app/cfg"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler owns the task queue and the fixed worker pool, and drives the
// periodic triggers: bulk collection at the collection interval and
// retention cleanup at the cleanup interval.
type Scheduler struct {
	collector       CollectorInterface
	interval        time.Duration
	cleanupInterval time.Duration
	retentionDays   int
	workerCount     int
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

func NewScheduler(collector CollectorInterface) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	c := cfg.Get()

	return &Scheduler{
		collector:       collector,
		interval:        time.Duration(c.CollectionInterval) * time.Minute,
		cleanupInterval: time.Duration(c.CleanupInterval) * time.Hour,
		retentionDays:   c.RetentionDays,
		workerCount:     c.WorkerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		collectTicker := time.NewTicker(s.interval)
		defer collectTicker.Stop()

		cleanupTicker := time.NewTicker(s.cleanupInterval)
		defer cleanupTicker.Stop()

		// Kick off one collection immediately on startup.
		if _, err := s.SubmitBulkCollection(); err != nil {
			slog.Warn("Failed to enqueue startup collection", "error", err)
		}

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-collectTicker.C:
				if err := s.EnqueueTask(NewCollectAllTask(s.collector, false)); err != nil {
					slog.Warn("Failed to enqueue scheduled collection", "error", err)
				}
			case <-cleanupTicker.C:
				if err := s.EnqueueTask(NewCleanupTask(s.collector, s.retentionDays)); err != nil {
					slog.Warn("Failed to enqueue scheduled cleanup", "error", err)
				}
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
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

// SubmitBulkCollection enqueues a parallel collection across all active
// feeds and returns the task id as acknowledgement.
func (s *Scheduler) SubmitBulkCollection() (string, error) {
	task := NewCollectAllTask(s.collector, true)
	if err := s.EnqueueTask(task); err != nil {
		return "", err
	}
	return task.GetID(), nil
}

func (s *Scheduler) SubmitFeedCollection(feedID int64) (string, error) {
	task := NewCollectFeedTask(s.collector, feedID)
	if err := s.EnqueueTask(task); err != nil {
		return "", err
	}
	return task.GetID(), nil
}

func (s *Scheduler) SubmitArticleExtraction(entryID string) (string, error) {
	task := NewExtractArticleTask(s.collector, entryID)
	if err := s.EnqueueTask(task); err != nil {
		return "", err
	}
	return task.GetID(), nil
}

func (s *Scheduler) SubmitCleanup(retentionDays int) (string, error) {
	task := NewCleanupTask(s.collector, retentionDays)
	if err := s.EnqueueTask(task); err != nil {
		return "", err
	}
	return task.GetID(), nil
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

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		return
	}

	slog.Error("Worker task execution failed",
		"worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(),
		"retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		slog.Error("Task failed after maximum retries",
			"type", string(task.GetType()), "id", task.GetID(),
			"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	task.IncrementRetryCount()
	retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
	if retryDelay > 30*time.Second {
		retryDelay = 30 * time.Second
	}

	slog.Warn("Task retry scheduled",
		"type", string(task.GetType()), "subject", task.GetSubject(),
		"retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(),
		"delay", retryDelay.String())

	go func() {
		time.Sleep(retryDelay)
		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry",
				"type", string(task.GetType()), "id", task.GetID())
		default:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry",
					"type", string(task.GetType()), "id", task.GetID(),
					"retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
