package user

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/service"
)

// PublicProfile is what other users see of an account.
type PublicProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserHandler serves other users' public profiles, e.g. to open a chat.
type UserHandler struct {
	userService service.UserServiceInterface
}

func NewUserHandler(userService service.UserServiceInterface) *UserHandler {
	return &UserHandler{userService}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.CurrentUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		errors.HandleError(c, err)
		return
	}

	display := user.Display()
	errors.HandleSuccess(c, PublicProfile{
		ID:          user.ID,
		DisplayName: display.Name,
		PhotoURL:    display.PhotoURL,
		Bio:         user.Bio,
		CreatedAt:   user.CreatedAt,
	}, "")
}
