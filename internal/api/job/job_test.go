package job

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/middleware"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
)

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) CreateJob(ctx context.Context, job *model.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) GetJobByID(ctx context.Context, id string) (*model.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockJobRepository) ListJobs(ctx context.Context) ([]*model.Job, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Job), args.Error(1)
}

func (m *MockJobRepository) CreateApplication(ctx context.Context, app *model.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func setupRouter(repo *MockJobRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	util.RegisterValidators()

	handler := NewJobHandler(service.NewJobService(repo, nil))
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, c.GetHeader("X-User"))
		c.Next()
	})
	router.GET("/jobs", handler.ListJobs)
	router.POST("/jobs", handler.CreateJob)
	router.POST("/jobs/:id/apply", handler.Apply)
	return router
}

func do(router *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", user)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListJobs(t *testing.T) {
	repo := new(MockJobRepository)
	repo.On("ListJobs", mock.Anything).Return([]*model.Job{{ID: "j1", Title: "CTO"}}, nil)

	w := do(setupRouter(repo), http.MethodGet, "/jobs", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"CTO"`)
}

func TestListJobsStoreFailure(t *testing.T) {
	repo := new(MockJobRepository)
	repo.On("ListJobs", mock.Anything).Return(nil, assert.AnError)

	w := do(setupRouter(repo), http.MethodGet, "/jobs", "", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreateJob(t *testing.T) {
	repo := new(MockJobRepository)
	repo.On("CreateJob", mock.Anything, mock.MatchedBy(func(j *model.Job) bool {
		return j.Title == "CTO" && j.AuthorID == "ann"
	})).Return(nil)

	w := do(setupRouter(repo), http.MethodPost, "/jobs", "ann", `{"title":"CTO","description":"Build it","salary":"equity"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestCreateJobRequiresTitle(t *testing.T) {
	repo := new(MockJobRepository)

	w := do(setupRouter(repo), http.MethodPost, "/jobs", "ann", `{"title":"  ","description":"Build it"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "CreateJob", mock.Anything, mock.Anything)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		job    *model.Job
		err    error
		status int
	}{
		{"applied", &model.Job{ID: "j1", AuthorID: "ann"}, nil, http.StatusCreated},
		{"own job", &model.Job{ID: "j1", AuthorID: "bob"}, nil, http.StatusBadRequest},
		{"missing job", nil, errors.NotFound("job not found"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockJobRepository)
			repo.On("GetJobByID", mock.Anything, "j1").Return(tt.job, tt.err)
			repo.On("CreateApplication", mock.Anything, mock.Anything).Return(nil)

			w := do(setupRouter(repo), http.MethodPost, "/jobs/j1/apply", "bob", `{"experience":"5y","skills":"go","cover_letter":"hi"}`)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
