package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
}

// SuccessResponse wraps the payload of every successful request.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

var errorStatusMap = map[ErrorCode]int{
	// system (1000-1999)
	ErrInternal: http.StatusInternalServerError,
	ErrDatabase: http.StatusInternalServerError,
	ErrCache:    http.StatusInternalServerError,
	ErrTimeout:  http.StatusGatewayTimeout,
	ErrUpstream: http.StatusBadGateway,

	// auth (2000-2999)
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrTokenExpired:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,

	// request (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusBadRequest,
	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceExists:   http.StatusConflict,
	ErrResourceConflict: http.StatusConflict,

	// identity (4000-4999)
	ErrUserNotFound:    http.StatusNotFound,
	ErrEmailInUse:      http.StatusConflict,
	ErrWeakPassword:    http.StatusBadRequest,
	ErrInvalidEmail:    http.StatusBadRequest,
	ErrWrongPassword:   http.StatusUnauthorized,
	ErrTooManyRequests: http.StatusTooManyRequests,
}

// StatusOf returns the HTTP status for err.
func StatusOf(err error) int {
	var appErr *AppError
	if !As(err, &appErr) {
		return http.StatusInternalServerError
	}
	if status, ok := errorStatusMap[appErr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError writes err as an ErrorResponse and records it on the gin context.
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *AppError
	if As(err, &appErr) {
		resp := ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
		}
		if appErr.Err != nil {
			resp.Error = appErr.Err.Error()
		}

		c.JSON(StatusOf(appErr), resp)
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    ErrInternal,
		Message: "Internal Server Error",
		Error:   err.Error(),
	})
}

// HandleSuccess writes data with a 200 status.
func HandleSuccess(c *gin.Context, data interface{}, message string) {
	HandleSuccessWithStatus(c, http.StatusOK, data, message)
}

// HandleSuccessWithStatus writes data with the given status.
func HandleSuccessWithStatus(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, SuccessResponse{
		Code:    status,
		Message: message,
		Data:    data,
	})
}
