package service

import (
	"context"

	"sharesmallbiz/internal/models"
	"sharesmallbiz/internal/repository"
)

const maxCommentLen = 2000

// EngagementService implements likes and comments on posts. Counter updates
// happen inside the repository transaction, so the counts it returns reflect
// the state after the mutation.
type EngagementService struct {
	engagementRepo repository.EngagementRepository
	postRepo       repository.PostRepository
}

func NewEngagementService(engagementRepo repository.EngagementRepository, postRepo repository.PostRepository) *EngagementService {
	return &EngagementService{engagementRepo: engagementRepo, postRepo: postRepo}
}

// LikePost records a like and returns the post's new like count. Liking a
// post twice is a conflict.
func (s *EngagementService) LikePost(ctx context.Context, postID, userID uint) (int, error) {
	return s.engagementRepo.Like(ctx, postID, userID)
}

// UnlikePost removes a like and returns the post's new like count. Unliking
// a post that was never liked is a conflict.
func (s *EngagementService) UnlikePost(ctx context.Context, postID, userID uint) (int, error) {
	return s.engagementRepo.Unlike(ctx, postID, userID)
}

// AddComment attaches a comment to a post and returns it with the author
// loaded.
func (s *EngagementService) AddComment(ctx context.Context, postID, userID uint, content string) (*models.Comment, error) {
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.engagementRepo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return s.engagementRepo.GetComment(ctx, comment.ID)
}

// ListComments returns a post's comments in chronological order. The post
// must exist.
func (s *EngagementService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.engagementRepo.ListComments(ctx, postID)
}

// DeleteComment removes a comment. The comment author and the post author
// may both delete it.
func (s *EngagementService) DeleteComment(ctx context.Context, postID, commentID, userID uint) error {
	comment, err := s.engagementRepo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return models.NewNotFoundError("Comment", commentID)
	}

	if comment.UserID != userID {
		post, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.UserID != userID {
			return models.NewForbiddenError("You can only delete your own comments")
		}
	}

	return s.engagementRepo.DeleteComment(ctx, commentID)
}
