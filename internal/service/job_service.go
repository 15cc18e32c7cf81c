package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/events"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/interfaces"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

type NewJob struct {
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description" binding:"required,notblank"`
	Salary      string `json:"salary"`
}

type ApplicationForm struct {
	Experience  string `json:"experience"`
	Skills      string `json:"skills"`
	CoverLetter string `json:"cover_letter"`
}

type JobService struct {
	repo      interfaces.JobRepository
	publisher events.Publisher
	timeout   time.Duration
	now       func() time.Time
}

func NewJobService(repo interfaces.JobRepository, publisher events.Publisher) *JobService {
	return &JobService{
		repo:      repo,
		publisher: publisher,
		timeout:   config.AppConfig.StoreTimeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListJobs returns every job, newest first.
func (s *JobService) ListJobs(ctx context.Context) ([]*model.Job, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	jobs, err := s.repo.ListJobs(storeCtx)
	if err != nil {
		return nil, storeError(storeCtx, "list jobs", err)
	}
	if jobs == nil {
		jobs = []*model.Job{}
	}
	return jobs, nil
}

func (s *JobService) CreateJob(ctx context.Context, authorID string, input NewJob) (*model.Job, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.Validation("title is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, errors.Validation("description is required")
	}

	job := &model.Job{
		ID:           uuid.NewString(),
		Title:        input.Title,
		Description:  input.Description,
		Salary:       input.Salary,
		AuthorID:     authorID,
		Applications: 0,
		CreatedAt:    s.now(),
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()
	if err := s.repo.CreateJob(storeCtx, job); err != nil {
		return nil, storeError(storeCtx, "create job", err)
	}

	util.Logger.Info("job created", zap.String("job_id", job.ID), util.UserID(authorID))
	return job, nil
}

// ApplyForJob records a pending application and bumps the job's application counter.
func (s *JobService) ApplyForJob(ctx context.Context, jobID, userID string, form ApplicationForm) (*model.Application, error) {
	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	job, err := s.repo.GetJobByID(storeCtx, jobID)
	if err != nil {
		return nil, storeError(storeCtx, "find job", err)
	}
	if job.AuthorID == userID {
		return nil, errors.Validation("you cannot apply to your own job")
	}

	app := &model.Application{
		ID:          uuid.NewString(),
		JobID:       jobID,
		UserID:      userID,
		Experience:  form.Experience,
		Skills:      form.Skills,
		CoverLetter: form.CoverLetter,
		Status:      model.ApplicationStatusPending,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateApplication(storeCtx, app); err != nil {
		return nil, storeError(storeCtx, "create application", err)
	}

	util.Logger.Info("job application submitted", zap.String("job_id", jobID), util.UserID(userID))

	if s.publisher != nil && job.AuthorID != "" {
		publish(storeCtx, s.publisher, events.Event{
			Type:        events.JobApplied,
			ActorID:     userID,
			RecipientID: job.AuthorID,
			SubjectID:   jobID,
			Summary:     job.Title,
			OccurredAt:  app.CreatedAt,
		})
	}
	return app, nil
}
