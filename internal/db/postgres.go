package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/types"
	"github.com/queriumcorp/rover-gradesync/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "gradesync", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

// AutoMigrateAll migrates the LTI cache tables. Parent tables migrate first
// so the cascade constraints resolve.
func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating LTI grade sync tables...")
	err := s.db.AutoMigrate(
		&types.Configuration{},
		&types.ConfigurationParam{},
		&types.InternalCourse{},
		&types.ExternalCourse{},
		&types.ExternalCourseEnrollment{},
		&types.ExternalCourseAssignment{},
		&types.ExternalCourseAssignmentProblem{},
		&types.EnrollmentGrade{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for LTI grade sync tables", "error", err)
		return err
	}
	return nil
}
