package user

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/middleware"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
)

// MockUserService is a testify mock of service.UserServiceInterface.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) user(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) SignUp(ctx context.Context, email, password, displayName string) (*model.User, error) {
	return m.user(m.Called(email, password, displayName))
}

func (m *MockUserService) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	return m.user(m.Called(email, password))
}

func (m *MockUserService) SignInWithProvider(ctx context.Context, provider, idToken string) (*model.User, error) {
	return m.user(m.Called(provider, idToken))
}

func (m *MockUserService) SignOut(ctx context.Context, token string) error {
	return m.Called(token).Error(0)
}

func (m *MockUserService) IsTokenRevoked(ctx context.Context, token string) (bool, error) {
	args := m.Called(token)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) CurrentUser(ctx context.Context, id string) (*model.User, error) {
	return m.user(m.Called(id))
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	return m.user(m.Called(id, update))
}

func (m *MockUserService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	return m.Called(id, currentPassword, newPassword).Error(0)
}

func (m *MockUserService) UpdateNotificationSettings(ctx context.Context, id string, settings model.NotificationSettings) error {
	return m.Called(id, settings).Error(0)
}

func (m *MockUserService) UploadAvatar(ctx context.Context, id string, file *multipart.FileHeader) (string, error) {
	args := m.Called(id, file.Filename)
	return args.String(0), args.Error(1)
}

func (m *MockUserService) RequestPasswordReset(ctx context.Context, email string) error {
	return m.Called(email).Error(0)
}

func (m *MockUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(token, newPassword).Error(0)
}

var _ service.UserServiceInterface = (*MockUserService)(nil)

func setupAuth(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	prev := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = "handler-test-secret"
	t.Cleanup(func() { config.AppConfig.JWTSecret = prev })
}

func postJSON(router http.Handler, path, body string, header ...string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignUpHandler(t *testing.T) {
	setupAuth(t)
	mockService := new(MockUserService)
	handler := NewAuthHandler(mockService)
	router := gin.New()
	router.POST("/signup", handler.SignUp)

	mockService.On("SignUp", "ann@example.com", "secret1", "Ann").Return(&model.User{ID: "u1", Email: "ann@example.com"}, nil).Once()
	w := postJSON(router, "/signup", `{"email":"ann@example.com","password":"secret1","display_name":"Ann"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Data struct {
			Token string     `json:"token"`
			User  model.User `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	userID, err := util.ValidateToken(resp.Data.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.NotContains(t, w.Body.String(), "password")

	mockService.On("SignUp", "ann@example.com", "secret1", "").
		Return(nil, errors.New(errors.ErrEmailInUse, "email-already-in-use")).Once()
	w = postJSON(router, "/signup", `{"email":"ann@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email-already-in-use")

	w = postJSON(router, "/signup", `{"email":"ann@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestSignInHandlerErrors(t *testing.T) {
	setupAuth(t)
	mockService := new(MockUserService)
	router := gin.New()
	router.POST("/signin", NewAuthHandler(mockService).SignIn)

	tests := []struct {
		code   errors.ErrorCode
		status int
	}{
		{errors.ErrWrongPassword, http.StatusUnauthorized},
		{errors.ErrUserNotFound, http.StatusNotFound},
		{errors.ErrTooManyRequests, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		mockService.On("SignIn", "ann@example.com", "pw").Return(nil, errors.New(tt.code, "failed")).Once()
		w := postJSON(router, "/signin", `{"email":"ann@example.com","password":"pw"}`)
		assert.Equal(t, tt.status, w.Code)
	}
}

func TestSignOutRequiresValidToken(t *testing.T) {
	setupAuth(t)
	mockService := new(MockUserService)
	router := gin.New()
	router.POST("/signout", middleware.AuthMiddleware(mockService), NewAuthHandler(mockService).SignOut)

	token, err := util.GenerateToken("u1")
	require.NoError(t, err)

	w := postJSON(router, "/signout", `{}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	mockService.On("IsTokenRevoked", token).Return(false, nil).Once()
	mockService.On("SignOut", token).Return(nil).Once()
	w = postJSON(router, "/signout", `{}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.On("IsTokenRevoked", token).Return(true, nil).Once()
	w = postJSON(router, "/signout", `{}`, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertExpectations(t)
}

func TestGetUserHidesPrivateFields(t *testing.T) {
	setupAuth(t)
	mockService := new(MockUserService)
	router := gin.New()
	router.GET("/users/:id", NewUserHandler(mockService).GetUser)

	mockService.On("CurrentUser", "u2").Return(&model.User{ID: "u2", Email: "bob@example.com", Bio: "builder"}, nil)

	req, _ := http.NewRequest(http.MethodGet, "/users/u2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "bob@example.com")
	assert.Contains(t, w.Body.String(), `"display_name":"Anonymous"`)
}
