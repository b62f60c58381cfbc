package gradesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/repos"
)

// Worker runs scheduled sync passes: every interval it enumerates the
// enabled internal courses and syncs each through a bounded worker pool.
// The course lock keeps concurrent workers from double-posting.
type Worker struct {
	log         *logger.Logger
	courses     repos.InternalCourseRepo
	engine      Engine
	interval    time.Duration
	concurrency int
}

func NewWorker(baseLog *logger.Logger, courses repos.InternalCourseRepo, engine Engine, interval time.Duration, concurrency int) *Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Worker{
		log:         baseLog.With("component", "SyncWorker"),
		courses:     courses,
		engine:      engine,
		interval:    interval,
		concurrency: concurrency,
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	}()
}

func (w *Worker) runOnce(ctx context.Context) {
	courses, err := w.courses.ListEnabled(ctx, nil)
	if err != nil {
		w.log.Warn("ListEnabled failed", "error", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, course := range courses {
		courseID := course.CourseID
		g.Go(func() error {
			// If a pass panics, keep the other courses going.
			defer func() {
				if r := recover(); r != nil {
					w.log.Error("sync pass panic", "course_id", courseID, "panic", r)
				}
			}()

			rep, err := w.engine.SyncCourse(gctx, courseID, Options{})
			if errors.Is(err, ErrAlreadyRunning) {
				w.log.Debug("sync pass skipped, already running", "course_id", courseID)
				return nil
			}
			if err != nil {
				w.log.Warn("sync pass failed", "course_id", courseID, "error", err)
				return nil
			}
			if rep.HasTransientFailures() {
				w.log.Warn("sync pass left transient failures",
					"course_id", courseID,
					"transient", fmt.Sprint(rep.Errors[ErrClassTransientFailure]))
			}
			return nil
		})
	}
	_ = g.Wait()
}
