package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sharesmallbiz/internal/config"
	"sharesmallbiz/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		Port:      "0",
		JWTSecret: "test-secret-used-only-in-unit-tests",
		Env:       "test",
	}

	s, err := NewServerWithDeps(cfg, db, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return s, app, db
}

func registerTestUser(t *testing.T, db *gorm.DB, s *Server, username string) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := &models.User{
		Username:      username,
		Email:         username + "@example.com",
		Password:      string(hashed),
		BusinessScore: models.DefaultBusinessScore,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return user, token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	_ = resp.Body.Close()
	return resp, respBody
}

func TestRegisterAndLoginFlow(t *testing.T) {
	t.Parallel()

	_, app, _ := setupTestServer(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "smallbizowner",
		"email":    "owner@example.com",
		"password": "Password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.StatusCode, body)
	}

	var created struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if created.Token == "" {
		t.Fatal("expected token in register response")
	}
	if created.User.BusinessScore != models.DefaultBusinessScore {
		t.Fatalf("expected default business score, got %d", created.User.BusinessScore)
	}
	if strings.Contains(strings.ToLower(string(body)), `"password"`) {
		t.Fatalf("password leaked in response: %s", body)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "smallbizowner",
		"password": "Password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "smallbizowner",
		"password": "WrongPassword1",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.StatusCode)
	}
}

func TestRegisterConflictPrecedence(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	registerTestUser(t, db, s, "taken")

	// Username and email both collide; the username conflict is reported.
	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "taken",
		"email":    "taken@example.com",
		"password": "Password123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "Username already taken") {
		t.Fatalf("expected username conflict message, got %s", body)
	}

	resp, body = doJSON(t, app, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "different",
		"email":    "taken@example.com",
		"password": "Password123",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "Email already registered") {
		t.Fatalf("expected email conflict message, got %s", body)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	_, app, _ := setupTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodPost, "/api/posts/1/like"},
		{http.MethodGet, "/api/messages/threads"},
	}
	for _, p := range paths {
		resp, _ := doJSON(t, app, p.method, p.path, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", p.method, p.path, resp.StatusCode)
		}
	}
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	author, _ := registerTestUser(t, db, s, "author")
	_, likerToken := registerTestUser(t, db, s, "liker")

	post := &models.Post{UserID: author.ID, Title: "t", Content: "c", PostType: models.PostTypeDiscussion}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	likePath := fmt.Sprintf("/api/posts/%d/like", post.ID)

	resp, body := doJSON(t, app, http.MethodPost, likePath, likerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("like: expected 200, got %d: %s", resp.StatusCode, body)
	}
	var likeResp struct {
		Success    bool `json:"success"`
		LikesCount int  `json:"likes_count"`
	}
	if err := json.Unmarshal(body, &likeResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !likeResp.Success || likeResp.LikesCount != 1 {
		t.Fatalf("expected success with likes_count 1, got %+v", likeResp)
	}

	// Duplicate like is a conflict.
	resp, _ = doJSON(t, app, http.MethodPost, likePath, likerToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate like: expected 409, got %d", resp.StatusCode)
	}

	resp, body = doJSON(t, app, http.MethodDelete, likePath, likerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlike: expected 200, got %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &likeResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if likeResp.LikesCount != 0 {
		t.Fatalf("expected likes_count 0 after unlike, got %d", likeResp.LikesCount)
	}

	// Unlike without a like is a conflict.
	resp, _ = doJSON(t, app, http.MethodDelete, likePath, likerToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double unlike: expected 409, got %d", resp.StatusCode)
	}
}

func TestGetPostsPagination(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	author, _ := registerTestUser(t, db, s, "author")

	for i := 0; i < 25; i++ {
		post := &models.Post{
			UserID:   author.ID,
			Title:    fmt.Sprintf("post %02d", i),
			Content:  "c",
			PostType: models.PostTypeDiscussion,
		}
		if err := db.Create(post).Error; err != nil {
			t.Fatalf("create post %d: %v", i, err)
		}
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/posts?limit=20", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var page []models.Post
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(page) != 20 {
		t.Fatalf("expected 20 posts, got %d", len(page))
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/posts?limit=20&offset=20", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("expected 5 posts on second page, got %d", len(page))
	}
}

func TestAuthorPasswordNeverSerialized(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	author, authorToken := registerTestUser(t, db, s, "author")
	_, commenterToken := registerTestUser(t, db, s, "commenter")

	resp, body := doJSON(t, app, http.MethodPost, "/api/posts", authorToken, fiber.Map{
		"title":   "hello",
		"content": "my first post",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d: %s", resp.StatusCode, body)
	}
	if strings.Contains(strings.ToLower(string(body)), `"password"`) {
		t.Fatalf("password leaked in post response: %s", body)
	}

	var post models.Post
	if err := json.Unmarshal(body, &post); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if post.User.ID != author.ID {
		t.Fatalf("expected author embedded in post response")
	}

	resp, body = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", post.ID), commenterToken,
		fiber.Map{"content": "nice"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("comment: expected 201, got %d: %s", resp.StatusCode, body)
	}
	if strings.Contains(strings.ToLower(string(body)), `"password"`) {
		t.Fatalf("password leaked in comment response: %s", body)
	}

	// The comment listing embeds authors too.
	resp, body = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/posts/%d/comments", post.ID), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list comments: expected 200, got %d", resp.StatusCode)
	}
	if strings.Contains(strings.ToLower(string(body)), `"password"`) {
		t.Fatalf("password leaked in comment listing: %s", body)
	}
}

func TestDeletePostCascades(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	author, authorToken := registerTestUser(t, db, s, "author")
	_, otherToken := registerTestUser(t, db, s, "other")

	post := &models.Post{UserID: author.ID, Title: "t", Content: "c", PostType: models.PostTypeDiscussion}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, token := registerTestUser(t, db, s, fmt.Sprintf("liker%d", i))
		resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("like %d failed: %d", i, resp.StatusCode)
		}
	}
	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, http.MethodPost,
			fmt.Sprintf("/api/posts/%d/comments", post.ID), authorToken,
			fiber.Map{"content": fmt.Sprintf("comment %d", i)})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("comment %d failed: %d", i, resp.StatusCode)
		}
	}

	// A non-author cannot delete the post.
	resp, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), otherToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-author delete, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), authorToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for author delete, got %d", resp.StatusCode)
	}

	var likeCount, commentCount int64
	if err := db.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount).Error; err != nil {
		t.Fatalf("count likes: %v", err)
	}
	if err := db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount).Error; err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if likeCount != 0 || commentCount != 0 {
		t.Fatalf("expected cascade to remove engagement, got %d likes %d comments", likeCount, commentCount)
	}

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted post, got %d", resp.StatusCode)
	}
}

func TestViewerLikedFlagOnFeed(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	author, _ := registerTestUser(t, db, s, "author")
	_, viewerToken := registerTestUser(t, db, s, "viewer")

	liked := &models.Post{UserID: author.ID, Title: "liked", Content: "c", PostType: models.PostTypeDiscussion}
	plain := &models.Post{UserID: author.ID, Title: "plain", Content: "c", PostType: models.PostTypeDiscussion}
	for _, p := range []*models.Post{liked, plain} {
		if err := db.Create(p).Error; err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", liked.ID), viewerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("like failed: %d", resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/posts", viewerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("feed: expected 200, got %d", resp.StatusCode)
	}
	var posts []models.Post
	if err := json.Unmarshal(body, &posts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	flags := make(map[uint]bool, len(posts))
	for _, p := range posts {
		flags[p.ID] = p.Liked
	}
	if !flags[liked.ID] {
		t.Fatal("expected liked flag on liked post")
	}
	if flags[plain.ID] {
		t.Fatal("expected no liked flag on other post")
	}

	// Anonymous viewers never see a liked flag.
	resp, body = doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("anonymous feed: expected 200, got %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &posts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, p := range posts {
		if p.Liked {
			t.Fatalf("anonymous viewer saw liked flag on post %d", p.ID)
		}
	}
}

func TestMessagingFlow(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	alice, aliceToken := registerTestUser(t, db, s, "alice")
	bob, bobToken := registerTestUser(t, db, s, "bob")

	resp, body := doJSON(t, app, http.MethodPost, "/api/messages", aliceToken, fiber.Map{
		"recipient_id": bob.ID,
		"content":      "hi bob",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: expected 201, got %d: %s", resp.StatusCode, body)
	}

	resp, body = doJSON(t, app, http.MethodGet, "/api/messages/threads", bobToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("threads: expected 200, got %d", resp.StatusCode)
	}
	var threads []models.MessageThread
	if err := json.Unmarshal(body, &threads); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(threads) != 1 || threads[0].UnreadCount != 1 {
		t.Fatalf("expected one thread with one unread, got %+v", threads)
	}

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/messages/%d", alice.ID), bobToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("conversation: expected 200, got %d", resp.StatusCode)
	}
	var messages []models.Message
	if err := json.Unmarshal(body, &messages); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != "hi bob" {
		t.Fatalf("unexpected conversation: %+v", messages)
	}

	// Reading the conversation marked it read.
	resp, body = doJSON(t, app, http.MethodGet, "/api/messages/threads", bobToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("threads: expected 200, got %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &threads); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(threads) != 1 || threads[0].UnreadCount != 0 {
		t.Fatalf("expected zero unread after reading, got %+v", threads)
	}
}

func TestEngagementStats(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	author, authorToken := registerTestUser(t, db, s, "author")

	post := &models.Post{UserID: author.ID, Title: "t", Content: "c", PostType: models.PostTypeMarketing}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	resp, _ := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/posts/%d/like", post.ID), authorToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("like: %d", resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodGet, "/api/stats/engagement", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}

	var stats struct {
		TotalUsers  int64            `json:"total_users"`
		TotalPosts  int64            `json:"total_posts"`
		TotalLikes  int64            `json:"total_likes"`
		PostsByType map[string]int64 `json:"posts_by_type"`
	}
	if err := json.Unmarshal(body, &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.TotalUsers != 1 || stats.TotalPosts != 1 || stats.TotalLikes != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.PostsByType[models.PostTypeMarketing] != 1 {
		t.Fatalf("expected one marketing post, got %+v", stats.PostsByType)
	}
}

func TestUpdateProfilePartialMerge(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	user, token := registerTestUser(t, db, s, "owner")

	if err := db.Model(user).Updates(map[string]any{
		"full_name":     "Original Name",
		"business_name": "Original Biz",
	}).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	resp, body := doJSON(t, app, http.MethodPut, "/api/users/me", token, fiber.Map{
		"business_name": "New Biz",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", resp.StatusCode, body)
	}

	var updated models.User
	if err := json.Unmarshal(body, &updated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if updated.BusinessName != "New Biz" {
		t.Fatalf("expected updated business name, got %q", updated.BusinessName)
	}
	if updated.FullName != "Original Name" {
		t.Fatalf("expected untouched full name, got %q", updated.FullName)
	}
}

func TestInvalidPostIDIs400(t *testing.T) {
	t.Parallel()

	_, app, _ := setupTestServer(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/posts/banana", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestNegativeAuthorFilterIs400(t *testing.T) {
	t.Parallel()

	s, app, db := setupTestServer(t)
	author, _ := registerTestUser(t, db, s, "author")

	resp, body := doJSON(t, app, http.MethodGet, "/api/posts?author_id=-1", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.StatusCode, body)
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if errResp.Code != models.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %q", errResp.Code)
	}

	// A valid author filter still works.
	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts?author_id=%d", author.ID), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for valid author filter, got %d", resp.StatusCode)
	}
}
