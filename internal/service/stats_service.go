package service

import (
	"context"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/config"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/interfaces"
)

type StatsService struct {
	userRepo interfaces.UserRepository
	postRepo interfaces.PostRepository
	timeout  time.Duration
}

func NewStatsService(userRepo interfaces.UserRepository, postRepo interfaces.PostRepository) *StatsService {
	return &StatsService{
		userRepo: userRepo,
		postRepo: postRepo,
		timeout:  config.AppConfig.StoreTimeout,
	}
}

// GetCommunityStats counts users plus the posts, comments and likes on the feed.
func (s *StatsService) GetCommunityStats(ctx context.Context) (*model.CommunityStats, error) {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	var stats model.CommunityStats
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, storeError(ctx, "count users", err)
	}
	stats.TotalUsers = users

	if err := s.postRepo.CountActivity(ctx, &stats); err != nil {
		return nil, storeError(ctx, "count community activity", err)
	}
	return &stats, nil
}
