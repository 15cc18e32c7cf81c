package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/metrics"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/interfaces"
	"github.com/zack12Ali/sb1-a2fvdq/internal/util"
	"go.uber.org/zap"
)

const ideaHistoryLimit = 20

// IdeaGenerator produces a startup idea for a prompt.
type IdeaGenerator interface {
	Generate(ctx context.Context, prompt string) (*model.Idea, error)
}

type IdeaService struct {
	generator IdeaGenerator
	repo      interfaces.IdeaRepository
	timeout   time.Duration
	now       func() time.Time
}

// NewIdeaService creates the service. repo may be nil, in which case ideas are not kept.
func NewIdeaService(generator IdeaGenerator, repo interfaces.IdeaRepository) *IdeaService {
	return &IdeaService{
		generator: generator,
		repo:      repo,
		timeout:   config.AppConfig.StoreTimeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Generate asks the webhook for an idea and keeps it in userID's history. Failing to keep
// it does not fail the call.
func (s *IdeaService) Generate(ctx context.Context, userID, prompt string) (*model.Idea, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.Validation("prompt is required")
	}

	start := time.Now()
	idea, err := s.generator.Generate(ctx, prompt)
	metrics.WebhookDuration.WithLabelValues(outcome(err)).Observe(time.Since(start).Seconds())
	if err != nil {
		util.Logger.Warn("idea generation failed", zap.Error(err), util.UserID(userID))
		return nil, err
	}

	if s.repo != nil {
		storeCtx, cancel := storeContext(ctx, s.timeout)
		defer cancel()
		saved := &model.GeneratedIdea{
			ID:              uuid.NewString(),
			UserID:          userID,
			Prompt:          prompt,
			StartupIdea:     idea.StartupIdea,
			Recommendations: idea.Recommendations,
			Timestamp:       s.now(),
		}
		if err := s.repo.SaveGeneratedIdea(storeCtx, saved); err != nil {
			util.Logger.Error("failed to save generated idea", zap.Error(err), util.UserID(userID))
		}
	}
	return idea, nil
}

// History returns userID's most recent generated ideas.
func (s *IdeaService) History(ctx context.Context, userID string) ([]*model.GeneratedIdea, error) {
	if s.repo == nil {
		return []*model.GeneratedIdea{}, nil
	}

	storeCtx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	ideas, err := s.repo.ListByUser(storeCtx, userID, ideaHistoryLimit)
	if err != nil {
		return nil, storeError(storeCtx, "list ideas", err)
	}
	if ideas == nil {
		ideas = []*model.GeneratedIdea{}
	}
	return ideas, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errors.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
