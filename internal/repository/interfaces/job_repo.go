package interfaces

import (
	"context"

	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

type JobRepository interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, id string) (*model.Job, error)
	ListJobs(ctx context.Context) ([]*model.Job, error)
	// CreateApplication inserts the application and increments the job's counter in one transaction.
	CreateApplication(ctx context.Context, app *model.Application) error
}
