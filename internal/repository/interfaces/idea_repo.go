package interfaces

import (
	"context"

	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
)

type IdeaRepository interface {
	SaveGeneratedIdea(ctx context.Context, idea *model.GeneratedIdea) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*model.GeneratedIdea, error)
}
