package job

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/middleware"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
)

type JobHandler struct {
	jobs *service.JobService
}

func NewJobHandler(jobs *service.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.ListJobs(c.Request.Context())
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, gin.H{"jobs": jobs}, "")
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	var req service.NewJob
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "title and description are required", err))
		return
	}

	job, err := h.jobs.CreateJob(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccessWithStatus(c, http.StatusCreated, job, "job created")
}

func (h *JobHandler) Apply(c *gin.Context) {
	var form service.ApplicationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid application", err))
		return
	}

	app, err := h.jobs.ApplyForJob(c.Request.Context(), c.Param("id"), middleware.UserID(c), form)
	if err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccessWithStatus(c, http.StatusCreated, app, "application submitted")
}
