package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/middleware"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

// AuthHandler serves sign up, sign in and sign out.
type AuthHandler struct {
	userService service.UserServiceInterface
}

func NewAuthHandler(userService service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		credentials
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request body", err))
		return
	}

	user, err := h.userService.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		util.Logger.Warn("sign up failed", zap.Error(err))
		errors.HandleError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user, "account created")
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request body", err))
		return
	}

	user, err := h.userService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user, "signed in")
}

// SignInWithProvider exchanges a provider identity token for a session.
func (h *AuthHandler) SignInWithProvider(c *gin.Context) {
	var req struct {
		Provider string `json:"provider" binding:"required"`
		IDToken  string `json:"id_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request body", err))
		return
	}

	user, err := h.userService.SignInWithProvider(c.Request.Context(), req.Provider, req.IDToken)
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	h.respondWithToken(c, http.StatusOK, user, "signed in")
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	token := c.GetString(middleware.ContextToken)
	if err := h.userService.SignOut(c.Request.Context(), token); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "Signed out successfully")
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInvalidEmail, "invalid-email", err))
		return
	}

	if err := h.userService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "password reset email sent")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrValidation, "invalid request body", err))
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		errors.HandleError(c, err)
		return
	}
	errors.HandleSuccess(c, nil, "password updated")
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *model.User, message string) {
	token, err := util.GenerateToken(user.ID)
	if err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "failed to issue token", err))
		return
	}

	errors.HandleSuccessWithStatus(c, status, gin.H{
		"token": token,
		"user":  user,
	}, message)
}
