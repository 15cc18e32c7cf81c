package mysql

import (
	"context"
	"database/sql"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

type jobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *jobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) CreateJob(ctx context.Context, job *model.Job) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, title, description, salary, author_id, applications, created_at)
         VALUES (?, ?, ?, ?, ?, 0, ?)`,
		job.ID, job.Title, job.Description, job.Salary, job.AuthorID, job.CreatedAt)
	if err != nil {
		util.Logger.Error("failed to insert job", zap.Error(err))
	}
	return err
}

func (r *jobRepository) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, description, salary, author_id, applications, created_at FROM jobs WHERE id = ?`, id).
		Scan(&job.ID, &job.Title, &job.Description, &job.Salary, &job.AuthorID, &job.Applications, &job.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("job not found")
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) ListJobs(ctx context.Context) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, salary, author_id, applications, created_at
         FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*model.Job{}
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(&job.ID, &job.Title, &job.Description, &job.Salary, &job.AuthorID, &job.Applications, &job.CreatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) CreateApplication(ctx context.Context, app *model.Application) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE jobs SET applications = applications + 1 WHERE id = ?`, app.JobID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return errors.NotFound("job not found")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO job_applications (id, job_id, user_id, experience, skills, cover_letter, status, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.JobID, app.UserID, app.Experience, app.Skills, app.CoverLetter, app.Status, app.CreatedAt)
	if err != nil {
		util.Logger.Error("failed to insert application", zap.Error(err), zap.String("job_id", app.JobID))
		return err
	}

	return tx.Commit()
}
