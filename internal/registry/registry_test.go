package registry

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/lti"
	"github.com/queriumcorp/rover-gradesync/internal/repos"
	"github.com/queriumcorp/rover-gradesync/internal/types"
)

func setup(t *testing.T) (Registry, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&types.Configuration{}, &types.ConfigurationParam{}, &types.InternalCourse{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewRegistry(repos.NewInternalCourseRepo(db, log), log), db
}

func TestIsEnabled(t *testing.T) {
	reg, db := setup(t)
	ctx := context.Background()

	if err := db.Create(&types.InternalCourse{CourseID: "course-v1:A+B+On", Enabled: true}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := db.Create(&types.InternalCourse{CourseID: "course-v1:A+B+Off", Enabled: false}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []struct {
		courseID string
		want     bool
	}{
		{"course-v1:A+B+On", true},
		{"course-v1:A+B+Off", false},
		{"course-v1:A+B+Missing", false},
	}
	for _, c := range cases {
		got, err := reg.IsEnabled(ctx, nil, c.courseID)
		if err != nil {
			t.Fatalf("IsEnabled(%s): %v", c.courseID, err)
		}
		if got != c.want {
			t.Fatalf("IsEnabled(%s) = %v, want %v", c.courseID, got, c.want)
		}
	}
}

func TestProject_DefaultsWhenNoProfile(t *testing.T) {
	reg, _ := setup(t)

	params := lti.NewParams(map[string]any{
		"context_title":           "Intro Algebra",
		"ext_wl_launch_url":       "https://app.willolabs.com/launch/x",
		"custom_canvas_course_id": "4321",
		"unrelated_key":           "ignored",
	})
	out := reg.Project(&types.InternalCourse{CourseID: "c"}, types.TableExternalCourse, params)

	if out["context_title"] != "Intro Algebra" {
		t.Fatalf("context_title = %v", out["context_title"])
	}
	if out["ext_wl_launch_url"] != "https://app.willolabs.com/launch/x" {
		t.Fatalf("ext_wl_launch_url = %v", out["ext_wl_launch_url"])
	}
	// custom_course_id is fed by the Canvas parameter in the stock mapping
	if out["custom_course_id"] != "4321" {
		t.Fatalf("custom_course_id = %v", out["custom_course_id"])
	}
	if _, ok := out["unrelated_key"]; ok {
		t.Fatalf("unmapped parameter leaked into projection")
	}
	// absent parameters must not appear as blanks
	if _, ok := out["context_label"]; ok {
		t.Fatalf("absent parameter projected: %v", out["context_label"])
	}
}

func TestProject_ProfileOverridesTable(t *testing.T) {
	reg, db := setup(t)
	ctx := context.Background()

	cfg := &types.Configuration{
		Name: "KU - Willo Labs - Blackboard",
		Params: []types.ConfigurationParam{
			{TableName_: types.TableExternalCourse, InternalField: "context_title", ExternalField: "custom_bb_course_name"},
		},
	}
	if err := db.Create(cfg).Error; err != nil {
		t.Fatalf("seed config: %v", err)
	}
	if err := db.Create(&types.InternalCourse{
		CourseID: "course-v1:KU+M101+2026", Enabled: true, ConfigurationID: &cfg.ID,
	}).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	course, err := reg.GetCourse(ctx, nil, "course-v1:KU+M101+2026")
	if err != nil || course == nil {
		t.Fatalf("GetCourse: %v %v", err, course)
	}
	if course.Configuration == nil || len(course.Configuration.Params) != 1 {
		t.Fatalf("profile not preloaded: %+v", course.Configuration)
	}

	params := lti.NewParams(map[string]any{
		"context_title":         "Default Title",
		"custom_bb_course_name": "Blackboard Title",
	})
	out := reg.Project(course, types.TableExternalCourse, params)
	if out["context_title"] != "Blackboard Title" {
		t.Fatalf("profile mapping not applied: %v", out["context_title"])
	}
	if len(out) != 1 {
		t.Fatalf("profile should replace the default set for the table, got %v", out)
	}

	// a table the profile does not mention still uses the defaults
	enr := reg.Project(course, types.TableExternalCourseEnrollment, lti.NewParams(map[string]any{
		"roles": "Learner",
	}))
	if enr["roles"] != "Learner" {
		t.Fatalf("default enrollment mapping lost: %v", enr)
	}
}

func TestProject_NilCourseUsesDefaults(t *testing.T) {
	reg, _ := setup(t)
	out := reg.Project(nil, types.TableExternalCourseEnrollment, lti.NewParams(map[string]any{
		"lis_person_sourcedid": "sis-9",
	}))
	if out["lis_person_sourcedid"] != "sis-9" {
		t.Fatalf("defaults not applied for nil course: %v", out)
	}
}
