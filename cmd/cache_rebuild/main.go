// cache_rebuild re-posts every grade of one course: it runs a sync pass
// that treats every (enrollment, assignment, problem) as changed.
//
// Exit codes: 0 success, 1 configuration error, 2 partial failure (rows
// left transient-failed for the next scheduled pass).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/queriumcorp/rover-gradesync/internal/app"
	"github.com/queriumcorp/rover-gradesync/internal/gradesync"
)

func main() {
	courseID := flag.String("course_id", "", "internal course key, e.g. course-v1:edX+DemoX+Demo_Course")
	flag.Parse()

	if *courseID == "" {
		fmt.Fprintln(os.Stderr, "cache_rebuild: --course_id is required")
		os.Exit(1)
	}

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cache_rebuild: init failed: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	rep, err := a.Services.Engine.SyncCourse(context.Background(), *courseID, gradesync.Options{ForceAll: true})
	if err != nil {
		a.Log.Error("rebuild failed", "course_id", *courseID, "error", err)
		os.Exit(1)
	}

	a.Log.Info("rebuild finished",
		"course_id", *courseID,
		"status", rep.Status,
		"posted", rep.Posted,
		"skipped", rep.Skipped,
		"errors", rep.Errors)

	switch {
	case rep.Status == gradesync.StatusMisconfigured:
		os.Exit(1)
	case rep.HasTransientFailures():
		os.Exit(2)
	}
}
