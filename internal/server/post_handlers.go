package server

import (
	"sharesmallbiz/internal/models"
	"sharesmallbiz/internal/repository"
	"sharesmallbiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title                string                       `json:"title"`
		Content              string                       `json:"content"`
		ImageURL             string                       `json:"image_url"`
		PostType             string                       `json:"post_type"`
		Tags                 []string                     `json:"tags"`
		IsCollaboration      bool                         `json:"is_collaboration"`
		CollaborationDetails *models.CollaborationDetails `json:"collaboration_details"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:               currentUserID(c),
		Title:                req.Title,
		Content:              req.Content,
		ImageURL:             req.ImageURL,
		PostType:             req.PostType,
		Tags:                 req.Tags,
		IsCollaboration:      req.IsCollaboration,
		CollaborationDetails: req.CollaborationDetails,
	})
	if err != nil {
		return models.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	authorID := c.QueryInt("author_id", 0)
	if authorID < 0 {
		return models.Respond(c, models.NewValidationError("Invalid author ID"))
	}
	filter := repository.ListFilter{
		PostType: c.Query("post_type", c.Query("type")),
		AuthorID: uint(authorID),
		Tag:      c.Query("tag"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}
	if filter.PostType != "" && !models.ValidPostType(filter.PostType) {
		return models.Respond(c,
			models.NewValidationError("Invalid post type: "+filter.PostType))
	}

	posts, err := s.postService.ListPosts(c.Context(), filter, viewerID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id, viewerID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title                *string                      `json:"title"`
		Content              *string                      `json:"content"`
		ImageURL             *string                      `json:"image_url"`
		PostType             *string                      `json:"post_type"`
		Tags                 []string                     `json:"tags"`
		IsCollaboration      *bool                        `json:"is_collaboration"`
		CollaborationDetails *models.CollaborationDetails `json:"collaboration_details"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		PostID:               id,
		UserID:               currentUserID(c),
		Title:                req.Title,
		Content:              req.Content,
		ImageURL:             req.ImageURL,
		PostType:             req.PostType,
		Tags:                 req.Tags,
		IsCollaboration:      req.IsCollaboration,
		CollaborationDetails: req.CollaborationDetails,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), id, currentUserID(c)); err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
