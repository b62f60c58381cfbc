package app

import (
	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/repos"
)

type Repos struct {
	InternalCourse  repos.InternalCourseRepo
	Configuration   repos.ConfigurationRepo
	ExternalCourse  repos.ExternalCourseRepo
	Enrollment      repos.ExternalCourseEnrollmentRepo
	Assignment      repos.ExternalCourseAssignmentRepo
	Problem         repos.ExternalCourseAssignmentProblemRepo
	EnrollmentGrade repos.EnrollmentGradeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		InternalCourse:  repos.NewInternalCourseRepo(db, log),
		Configuration:   repos.NewConfigurationRepo(db, log),
		ExternalCourse:  repos.NewExternalCourseRepo(db, log),
		Enrollment:      repos.NewExternalCourseEnrollmentRepo(db, log),
		Assignment:      repos.NewExternalCourseAssignmentRepo(db, log),
		Problem:         repos.NewExternalCourseAssignmentProblemRepo(db, log),
		EnrollmentGrade: repos.NewEnrollmentGradeRepo(db, log),
	}
}
