package app

import (
	"os"

	"gorm.io/gorm"

	redisclients "github.com/queriumcorp/rover-gradesync/internal/clients/redis"
	"github.com/queriumcorp/rover-gradesync/internal/gradesync"
	"github.com/queriumcorp/rover-gradesync/internal/host"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/provision"
	"github.com/queriumcorp/rover-gradesync/internal/registry"
	"github.com/queriumcorp/rover-gradesync/internal/utils"
	"github.com/queriumcorp/rover-gradesync/internal/willo"
)

type Services struct {
	Registry    registry.Registry
	Provisioner provision.Provisioner
	HostGrades  host.GradeService
	Willo       willo.Client
	Engine      gradesync.Engine
	Worker      *gradesync.Worker

	LaunchCache  redisclients.LaunchCache
	CourseLocker redisclients.CourseLocker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) (Services, error) {
	log.Info("Wiring services...")

	reg := registry.NewRegistry(r.InternalCourse, log)

	var staff host.StaffUserProvider
	if staffUser := utils.GetEnv("HOST_STAFF_USERNAME", "", log); staffUser != "" {
		staff = host.NewStaticStaffProvider(staffUser)
	}
	hostGrades := host.NewGradesClient(log, staff)
	willoClient := willo.NewClient(log)

	// Redis is optional in single-process deployments; the in-process lock
	// still guarantees one pass per course within this process.
	var (
		cache  redisclients.LaunchCache
		locker redisclients.CourseLocker
		locks  gradesync.CourseLocker
	)
	if os.Getenv("REDIS_ADDR") != "" {
		var err error
		cache, err = redisclients.NewLaunchCache(log)
		if err != nil {
			return Services{}, err
		}
		locker, err = redisclients.NewCourseLocker(log)
		if err != nil {
			return Services{}, err
		}
		locks = locker
	} else {
		log.Warn("REDIS_ADDR not set, using in-process course lock and no launch cache")
		locks = gradesync.NewMemoryLocker()
	}

	var provCache provision.LaunchCache
	if cache != nil {
		provCache = cache
	}
	provisioner := provision.NewProvisioner(
		db, reg, r.InternalCourse, r.ExternalCourse, r.Enrollment,
		provCache, cfg.BrokerDomains, log,
	)

	engine := gradesync.NewEngine(
		r.ExternalCourse, r.Enrollment, r.Assignment, r.Problem, r.EnrollmentGrade,
		hostGrades, willoClient, locks, cfg.Retry, log,
	)

	var worker *gradesync.Worker
	if cfg.WorkerEnabled {
		worker = gradesync.NewWorker(log, r.InternalCourse, engine, cfg.SyncInterval, cfg.WorkerConcurrency)
	}

	return Services{
		Registry:     reg,
		Provisioner:  provisioner,
		HostGrades:   hostGrades,
		Willo:        willoClient,
		Engine:       engine,
		Worker:       worker,
		LaunchCache:  cache,
		CourseLocker: locker,
	}, nil
}
