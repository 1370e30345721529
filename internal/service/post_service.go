package service

import (
	"context"
	"fmt"

	"sharesmallbiz/internal/models"
	"sharesmallbiz/internal/observability"
	"sharesmallbiz/internal/repository"
)

const maxTitleLen = 200

// PostService implements the post repository operations and the enrichment
// of posts with viewer-specific state.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

// CreatePostInput carries the fields accepted when creating a post.
type CreatePostInput struct {
	UserID               uint
	Title                string
	Content              string
	ImageURL             string
	PostType             string
	Tags                 []string
	IsCollaboration      bool
	CollaborationDetails *models.CollaborationDetails
}

// UpdatePostInput carries a partial post update. Nil fields are left
// untouched.
type UpdatePostInput struct {
	PostID               uint
	UserID               uint
	Title                *string
	Content              *string
	ImageURL             *string
	PostType             *string
	Tags                 []string
	IsCollaboration      *bool
	CollaborationDetails *models.CollaborationDetails
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	}

	postType := in.PostType
	if postType == "" {
		postType = models.PostTypeDiscussion
	}
	if !models.ValidPostType(postType) {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid post type: %s", postType))
	}

	post := &models.Post{
		UserID:               in.UserID,
		Title:                in.Title,
		Content:              in.Content,
		ImageURL:             in.ImageURL,
		PostType:             postType,
		Tags:                 models.StringList(in.Tags),
		IsCollaboration:      in.IsCollaboration,
		CollaborationDetails: in.CollaborationDetails,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostsCreated.WithLabelValues(postType).Inc()

	// Reload to pick up the preloaded author for the response body.
	return s.postRepo.GetByID(ctx, post.ID)
}

// GetPost returns one post with its author and, when viewerID is nonzero,
// the viewer's liked flag filled in.
func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewerID != 0 {
		liked, err := s.postRepo.IsLiked(ctx, viewerID, post.ID)
		if err != nil {
			return nil, err
		}
		post.Liked = liked
	}
	return post, nil
}

// ListPosts returns a page of posts, newest first, with the viewer's liked
// flags resolved in a single query.
func (s *PostService) ListPosts(ctx context.Context, filter repository.ListFilter, viewerID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if viewerID != 0 && len(posts) > 0 {
		ids := make([]uint, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		likedIDs, err := s.postRepo.GetLikedPostIDs(ctx, viewerID, ids)
		if err != nil {
			return nil, err
		}
		likedSet := make(map[uint]struct{}, len(likedIDs))
		for _, id := range likedIDs {
			likedSet[id] = struct{}{}
		}
		for _, p := range posts {
			_, p.Liked = likedSet[p.ID]
		}
	}
	return posts, nil
}

// ListUserPosts returns a user's posts, verifying the author exists first.
func (s *PostService) ListUserPosts(ctx context.Context, authorID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return nil, err
	}
	filter := repository.ListFilter{AuthorID: authorID, Limit: limit, Offset: offset}
	return s.ListPosts(ctx, filter, viewerID)
}

// UpdatePost shallow-merges the provided fields. Only the author may update
// a post.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Title != nil {
		if len(*in.Title) > maxTitleLen {
			return nil, models.NewValidationError("Title too long (max 200 characters)")
		}
		post.Title = *in.Title
	}
	if in.Content != nil {
		if *in.Content == "" {
			return nil, models.NewValidationError("Content is required")
		}
		post.Content = *in.Content
	}
	if in.ImageURL != nil {
		post.ImageURL = *in.ImageURL
	}
	if in.PostType != nil {
		if !models.ValidPostType(*in.PostType) {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid post type: %s", *in.PostType))
		}
		post.PostType = *in.PostType
	}
	if in.Tags != nil {
		post.Tags = models.StringList(in.Tags)
	}
	if in.IsCollaboration != nil {
		post.IsCollaboration = *in.IsCollaboration
	}
	if in.CollaborationDetails != nil {
		post.CollaborationDetails = in.CollaborationDetails
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post along with its comments and likes. Only the
// author may delete a post.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}
