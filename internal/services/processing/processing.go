// Package processing wraps the task endpoints: starting a processing run,
// reading its status, inspecting the shared queue, and watching a task until
// it reaches a terminal state.
package processing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"clipo/internal/api"
	"clipo/internal/logging"
)

// State is the coarse lifecycle of a processing task.
type State string

const (
	StatePending    State = "PENDING"
	StateProcessing State = "PROCESSING"
	StateSuccess    State = "SUCCESS"
	StateFailure    State = "FAILURE"
)

// Terminal reports whether the state ends the task lifecycle.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// Status is one observation of a task.
type Status struct {
	State  State          `json:"state"`
	Detail string         `json:"status"`
	Result map[string]any `json:"result"`
}

// StartResult confirms a processing run was accepted.
type StartResult struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// ActiveTask is one slot of the service-side worker pool.
type ActiveTask struct {
	VideoID int64  `json:"video_id"`
	SlotID  int    `json:"slot_id"`
	Started string `json:"started_at"`
}

// QueueStatus describes the shared processing queue.
type QueueStatus struct {
	MaxProcesses    int          `json:"max_processes"`
	ActiveProcesses int          `json:"active_processes"`
	ActiveTasks     []ActiveTask `json:"active_tasks"`
	QueuedTasks     int          `json:"queued_tasks"`
	AvailableSlots  int          `json:"available_slots"`
	Statistics      struct {
		Submitted int `json:"total_submitted"`
		Completed int `json:"total_completed"`
		Failed    int `json:"total_failed"`
	} `json:"statistics"`
}

// Service calls the processing endpoints through the shared API client.
type Service struct {
	client *api.Client
	logger *slog.Logger
}

// NewService constructs a processing service.
func NewService(client *api.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		client: client,
		logger: logging.NewComponentLogger(logger, "processing"),
	}
}

// Start kicks off processing for a submitted video and returns the task
// handle to poll.
func (s *Service) Start(ctx context.Context, videoID int64) (*StartResult, error) {
	var result StartResult
	err := s.client.PostJSON(ctx, s.client.VideoURL("/process/start"),
		map[string]int64{"video_id": videoID}, &result)
	if err != nil {
		return nil, fmt.Errorf("start processing for video %d: %w", videoID, err)
	}
	return &result, nil
}

// Status reads the current state of a task.
func (s *Service) Status(ctx context.Context, taskID string) (*Status, error) {
	var status Status
	url := s.client.VideoURL("/process/status/" + taskID)
	if err := s.client.GetJSON(ctx, url, &status); err != nil {
		return nil, fmt.Errorf("fetch status for task %s: %w", taskID, err)
	}
	return &status, nil
}

// Queue reads the shared processing queue.
func (s *Service) Queue(ctx context.Context) (*QueueStatus, error) {
	var status QueueStatus
	if err := s.client.GetJSON(ctx, s.client.VideoURL("/queue/status"), &status); err != nil {
		return nil, fmt.Errorf("fetch queue status: %w", err)
	}
	return &status, nil
}

// Watch polls a task until it reaches a terminal state, the timeout elapses,
// or the context is canceled. Every observation is delivered to onUpdate
// before the terminal check so callers can render progress. The terminal
// status is returned; a FAILURE state is a valid return, not an error.
func (s *Service) Watch(ctx context.Context, taskID string, interval, timeout time.Duration, onUpdate func(Status)) (*Status, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := s.Status(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if onUpdate != nil {
			onUpdate(*status)
		}
		if status.State.Terminal() {
			s.logger.Info("task finished",
				logging.String("task_id", taskID), logging.String("state", string(status.State)))
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("watch task %s: %w", taskID, ctx.Err())
		case <-ticker.C:
		}
	}
}
