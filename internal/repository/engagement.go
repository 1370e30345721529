// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"

	"sharesmallbiz/internal/cache"
	"sharesmallbiz/internal/models"
	"sharesmallbiz/internal/observability"

	"gorm.io/gorm"
)

// Counter update statements. The increment/decrement happens in SQL so two
// concurrent mutations cannot lose an update, and the decrement is clamped
// at zero.
const (
	incrLikes    = "likes_count + 1"
	decrLikes    = "CASE WHEN likes_count > 0 THEN likes_count - 1 ELSE 0 END"
	incrComments = "comments_count + 1"
	decrComments = "CASE WHEN comments_count > 0 THEN comments_count - 1 ELSE 0 END"
)

// EngagementRepository tracks individual like and comment events and keeps
// the owning post's denormalized counters in sync. Every mutation updates
// the counter in the same transaction as the like/comment row.
type EngagementRepository interface {
	Like(ctx context.Context, postID, userID uint) (int, error)
	Unlike(ctx context.Context, postID, userID uint) (int, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id uint) error
	CountLikes(ctx context.Context, postID uint) (int64, error)
	CountComments(ctx context.Context, postID uint) (int64, error)
	TotalLikes(ctx context.Context) (int64, error)
	TotalComments(ctx context.Context) (int64, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new EngagementRepository
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// Like records a like for the (post, user) pair and increments the post's
// likes counter. Returns the new counter value, or Conflict if the pair
// already exists.
func (r *engagementRepository) Like(ctx context.Context, postID, userID uint) (int, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "like", "likes")
	defer span.End()
	defer observability.TrackQuery("like", "likes")()

	var likesCount int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewInternalError(err)
		}

		like := models.Like{PostID: postID, UserID: userID}
		if err := tx.Create(&like).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewConflictError("Post already liked")
			}
			return models.NewInternalError(err)
		}

		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Update("likes_count", gorm.Expr(incrLikes)).Error; err != nil {
			return models.NewInternalError(err)
		}

		return tx.Model(&models.Post{}).
			Select("likes_count").
			Where("id = ?", postID).
			Scan(&likesCount).Error
	})
	if err != nil {
		observability.RecordEngagement("like", "rejected")
		return 0, err
	}

	observability.RecordEngagement("like", "ok")
	cache.InvalidatePost(ctx, postID)
	cache.InvalidateStats(ctx)
	return likesCount, nil
}

// Unlike removes the like for the (post, user) pair and decrements the
// post's likes counter, clamped at zero. Returns Conflict if the pair does
// not exist.
func (r *engagementRepository) Unlike(ctx context.Context, postID, userID uint) (int, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "unlike", "likes")
	defer span.End()
	defer observability.TrackQuery("unlike", "likes")()

	var likesCount int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Post not liked")
		}

		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Update("likes_count", gorm.Expr(decrLikes)).Error; err != nil {
			return models.NewInternalError(err)
		}

		return tx.Model(&models.Post{}).
			Select("likes_count").
			Where("id = ?", postID).
			Scan(&likesCount).Error
	})
	if err != nil {
		observability.RecordEngagement("unlike", "rejected")
		return 0, err
	}

	observability.RecordEngagement("unlike", "ok")
	cache.InvalidatePost(ctx, postID)
	cache.InvalidateStats(ctx)
	return likesCount, nil
}

// AddComment inserts the comment and increments the parent post's comments
// counter in the same transaction.
func (r *engagementRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "add_comment", "comments")
	defer span.End()
	defer observability.TrackQuery("create", "comments")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", comment.PostID)
			}
			return models.NewInternalError(err)
		}

		if err := tx.Create(comment).Error; err != nil {
			return models.NewInternalError(err)
		}

		return tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			Update("comments_count", gorm.Expr(incrComments)).Error
	})
	if err != nil {
		observability.RecordEngagement("comment", "rejected")
		return err
	}

	observability.RecordEngagement("comment", "ok")
	cache.InvalidatePost(ctx, comment.PostID)
	cache.InvalidateStats(ctx)
	return nil
}

func (r *engagementRepository) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// ListComments returns the post's comments in chronological thread order.
func (r *engagementRepository) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

// DeleteComment removes the comment and decrements the parent post's
// comments counter, clamped at zero.
func (r *engagementRepository) DeleteComment(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "comments")()

	var postID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.First(&comment, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Comment", id)
			}
			return models.NewInternalError(err)
		}
		postID = comment.PostID

		if err := tx.Delete(&models.Comment{}, id).Error; err != nil {
			return models.NewInternalError(err)
		}

		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			Update("comments_count", gorm.Expr(decrComments)).Error
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, postID)
	cache.InvalidateStats(ctx)
	return nil
}

func (r *engagementRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *engagementRepository) CountComments(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *engagementRepository) TotalLikes(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *engagementRepository) TotalComments(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
