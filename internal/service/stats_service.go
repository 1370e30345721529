package service

import (
	"context"

	"sharesmallbiz/internal/cache"
	"sharesmallbiz/internal/repository"
)

// EngagementStats is the aggregate snapshot served by the stats endpoint.
type EngagementStats struct {
	TotalUsers    int64            `json:"total_users"`
	TotalPosts    int64            `json:"total_posts"`
	TotalLikes    int64            `json:"total_likes"`
	TotalComments int64            `json:"total_comments"`
	PostsByType   map[string]int64 `json:"posts_by_type"`
}

// StatsService aggregates platform-wide engagement counts. Results are
// cached briefly since every count is a full-table aggregate.
type StatsService struct {
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	engagementRepo repository.EngagementRepository
}

func NewStatsService(userRepo repository.UserRepository, postRepo repository.PostRepository, engagementRepo repository.EngagementRepository) *StatsService {
	return &StatsService{userRepo: userRepo, postRepo: postRepo, engagementRepo: engagementRepo}
}

func (s *StatsService) GetEngagementStats(ctx context.Context) (*EngagementStats, error) {
	var stats EngagementStats
	err := cache.Aside(ctx, cache.StatsKey(), &stats, cache.StatsTTL, func() error {
		return s.computeStats(ctx, &stats)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *StatsService) computeStats(ctx context.Context, stats *EngagementStats) error {
	var err error
	if stats.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return err
	}
	if stats.TotalPosts, err = s.postRepo.Count(ctx); err != nil {
		return err
	}
	if stats.TotalLikes, err = s.engagementRepo.TotalLikes(ctx); err != nil {
		return err
	}
	if stats.TotalComments, err = s.engagementRepo.TotalComments(ctx); err != nil {
		return err
	}
	if stats.PostsByType, err = s.postRepo.CountByType(ctx); err != nil {
		return err
	}
	return nil
}
