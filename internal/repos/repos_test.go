package repos

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&types.Configuration{},
		&types.ConfigurationParam{},
		&types.InternalCourse{},
		&types.ExternalCourse{},
		&types.ExternalCourseEnrollment{},
		&types.ExternalCourseAssignment{},
		&types.ExternalCourseAssignmentProblem{},
		&types.EnrollmentGrade{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func seedCourse(t *testing.T, db *gorm.DB, courseID string) {
	t.Helper()
	if err := db.Create(&types.InternalCourse{CourseID: courseID, Enabled: true}).Error; err != nil {
		t.Fatalf("seed internal course: %v", err)
	}
}

// Timestamps are gorm-managed so models migrate on every dialect the
// service touches, sqlite included.
func TestMigratedModels_TimestampsPopulated(t *testing.T) {
	db := openTestDB(t)

	row := &types.InternalCourse{CourseID: "course-v1:A+B+C", Enabled: true}
	if err := db.Create(row).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if row.CreatedAt.IsZero() || row.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not populated: created=%v updated=%v", row.CreatedAt, row.UpdatedAt)
	}

	grade := &types.EnrollmentGrade{
		EnrollmentID: uuid.New(),
		AssignmentID: uuid.New(),
		UsageKey:     "block@k",
		PostedStatus: types.GradePending,
	}
	if err := db.Create(grade).Error; err != nil {
		t.Fatalf("create grade: %v", err)
	}
	if grade.CreatedAt.IsZero() {
		t.Fatalf("grade created_at not populated")
	}
}

func TestExternalCourseUpsert_Idempotent(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	ctx := context.Background()
	seedCourse(t, db, "course-v1:A+B+C")

	repo := NewExternalCourseRepo(db, log)
	attrs := map[string]any{
		"ext_wl_launch_url":          "https://app.willolabs.com/launch/x",
		"ext_wl_outcome_service_url": "https://app.willolabs.com/outcomes/ctx-1",
	}

	created, err := repo.Upsert(ctx, nil, &types.ExternalCourse{ContextID: "ctx-1", CourseID: "course-v1:A+B+C"}, attrs)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !created {
		t.Fatalf("expected first upsert to create")
	}

	created, err = repo.Upsert(ctx, nil, &types.ExternalCourse{ContextID: "ctx-1", CourseID: "course-v1:A+B+C"}, attrs)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatalf("expected second upsert to update in place")
	}

	var n int64
	if err := db.Model(&types.ExternalCourse{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one row, got %d", n)
	}

	row, err := repo.GetByContextID(ctx, nil, "ctx-1")
	if err != nil || row == nil {
		t.Fatalf("get: %v row=%v", err, row)
	}
	if row.ExtWlOutcomeServiceURL != "https://app.willolabs.com/outcomes/ctx-1" {
		t.Fatalf("projected attr not applied: %q", row.ExtWlOutcomeServiceURL)
	}
}

func TestEnrollmentUpsert_OneRowPerUser(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	ctx := context.Background()
	seedCourse(t, db, "course-v1:A+B+C")

	courses := NewExternalCourseRepo(db, log)
	if _, err := courses.Upsert(ctx, nil, &types.ExternalCourse{ContextID: "ctx-1", CourseID: "course-v1:A+B+C"}, nil); err != nil {
		t.Fatalf("course upsert: %v", err)
	}

	repo := NewExternalCourseEnrollmentRepo(db, log)
	for i := 0; i < 3; i++ {
		row := &types.ExternalCourseEnrollment{ContextID: "ctx-1", Username: "student1"}
		if _, err := repo.Upsert(ctx, nil, row, map[string]any{"roles": "Learner"}); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	rows, err := repo.ListByContextID(ctx, nil, "ctx-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 enrollment, got %d", len(rows))
	}
}

func TestEnrollmentGradeLatest_PicksNewest(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	ctx := context.Background()
	seedCourse(t, db, "course-v1:A+B+C")

	courses := NewExternalCourseRepo(db, log)
	if _, err := courses.Upsert(ctx, nil, &types.ExternalCourse{ContextID: "ctx-1", CourseID: "course-v1:A+B+C"}, nil); err != nil {
		t.Fatalf("course upsert: %v", err)
	}
	enrRepo := NewExternalCourseEnrollmentRepo(db, log)
	enr := &types.ExternalCourseEnrollment{ContextID: "ctx-1", Username: "student1"}
	if _, err := enrRepo.Upsert(ctx, nil, enr, nil); err != nil {
		t.Fatalf("enrollment upsert: %v", err)
	}
	asgRepo := NewExternalCourseAssignmentRepo(db, log)
	asg := &types.ExternalCourseAssignment{ContextID: "ctx-1", URLName: "hw-1", DisplayName: "Homework 1"}
	if err := asgRepo.Upsert(ctx, nil, asg); err != nil {
		t.Fatalf("assignment upsert: %v", err)
	}

	grades := NewEnrollmentGradeRepo(db, log)
	old := &types.EnrollmentGrade{
		EnrollmentID: enr.ID, AssignmentID: asg.ID, UsageKey: "block-1",
		Earned: 3, Possible: 5, Percent: 0.6, Attempted: true,
		PostedStatus: types.GradeAccepted,
	}
	if err := grades.Create(ctx, nil, old); err != nil {
		t.Fatalf("create old: %v", err)
	}
	// sqlite timestamps are coarse, backdate the first row explicitly
	if err := db.Model(old).Update("created_at", old.CreatedAt.Add(-1e9)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	fresh := &types.EnrollmentGrade{
		EnrollmentID: enr.ID, AssignmentID: asg.ID, UsageKey: "block-1",
		Earned: 4, Possible: 5, Percent: 0.8, Attempted: true,
		PostedStatus: types.GradePending,
	}
	if err := grades.Create(ctx, nil, fresh); err != nil {
		t.Fatalf("create fresh: %v", err)
	}

	latest, err := grades.Latest(ctx, nil, enr.ID, asg.ID, "block-1")
	if err != nil || latest == nil {
		t.Fatalf("latest: %v %v", err, latest)
	}
	if latest.Earned != 4 || latest.PostedStatus != types.GradePending {
		t.Fatalf("expected newest row, got earned=%v status=%s", latest.Earned, latest.PostedStatus)
	}
}

func TestInternalCourseDelete_CascadesSubtree(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	ctx := context.Background()
	seedCourse(t, db, "course-v1:A+B+C")

	courses := NewExternalCourseRepo(db, log)
	if _, err := courses.Upsert(ctx, nil, &types.ExternalCourse{ContextID: "ctx-1", CourseID: "course-v1:A+B+C"}, nil); err != nil {
		t.Fatalf("course upsert: %v", err)
	}
	enrRepo := NewExternalCourseEnrollmentRepo(db, log)
	enr := &types.ExternalCourseEnrollment{ContextID: "ctx-1", Username: "student1"}
	if _, err := enrRepo.Upsert(ctx, nil, enr, nil); err != nil {
		t.Fatalf("enrollment upsert: %v", err)
	}
	asgRepo := NewExternalCourseAssignmentRepo(db, log)
	asg := &types.ExternalCourseAssignment{ContextID: "ctx-1", URLName: "hw-1"}
	if err := asgRepo.Upsert(ctx, nil, asg); err != nil {
		t.Fatalf("assignment upsert: %v", err)
	}
	grades := NewEnrollmentGradeRepo(db, log)
	if err := grades.Create(ctx, nil, &types.EnrollmentGrade{
		EnrollmentID: enr.ID, AssignmentID: asg.ID, UsageKey: "block-1",
		PostedStatus: types.GradePending,
	}); err != nil {
		t.Fatalf("grade create: %v", err)
	}

	internal := NewInternalCourseRepo(db, log)
	if err := internal.Delete(ctx, nil, "course-v1:A+B+C"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, probe := range []struct {
		name  string
		model any
	}{
		{"internal course", &types.InternalCourse{}},
		{"external course", &types.ExternalCourse{}},
		{"enrollment", &types.ExternalCourseEnrollment{}},
		{"assignment", &types.ExternalCourseAssignment{}},
		{"grade", &types.EnrollmentGrade{}},
	} {
		var n int64
		if err := db.Model(probe.model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", probe.name, err)
		}
		if n != 0 {
			t.Fatalf("expected %s rows deleted, found %d", probe.name, n)
		}
	}
}

func TestConfigurationDelete_NullsCourseReference(t *testing.T) {
	db := openTestDB(t)
	log := testLogger(t)
	ctx := context.Background()

	cfgRepo := NewConfigurationRepo(db, log)
	cfg := &types.Configuration{Name: "KU - Willo Labs - Blackboard"}
	if err := cfgRepo.Create(ctx, nil, cfg); err != nil {
		t.Fatalf("create config: %v", err)
	}

	internal := NewInternalCourseRepo(db, log)
	if err := internal.Upsert(ctx, nil, &types.InternalCourse{
		CourseID: "course-v1:A+B+C", Enabled: true, ConfigurationID: &cfg.ID,
	}); err != nil {
		t.Fatalf("course upsert: %v", err)
	}

	if err := cfgRepo.Delete(ctx, nil, cfg.ID, false); err == nil {
		t.Fatalf("delete without force should fail while referenced")
	}
	if err := cfgRepo.Delete(ctx, nil, cfg.ID, true); err != nil {
		t.Fatalf("forced delete: %v", err)
	}

	row, err := internal.GetByID(ctx, nil, "course-v1:A+B+C")
	if err != nil || row == nil {
		t.Fatalf("get course: %v %v", err, row)
	}
	if row.ConfigurationID != nil {
		t.Fatalf("expected configuration reference nulled, got %v", row.ConfigurationID)
	}
}
