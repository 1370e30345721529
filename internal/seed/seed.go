// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	"sharesmallbiz/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var businessTypes = []string{
	"restaurant", "retail", "consulting", "construction", "marketing",
	"accounting", "landscaping", "photography", "bakery", "fitness",
	"salon", "auto repair", "cleaning", "catering", "design",
}

var postTags = []string{
	"smallbiz", "networking", "growth", "local", "marketing",
	"hiring", "partnership", "funding", "tips", "community",
}

// Run populates the database with fake users, posts, comments, and likes.
// Like and comment counters are written consistently with the rows created.
func Run(db *gorm.DB, opts Options) error {
	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return fmt.Errorf("clean failed: %w", err)
		}
	}

	// All seeded accounts share one password so the hash is computed once.
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users, err := seedUsers(db, opts.NumUsers, string(hashed))
	if err != nil {
		return fmt.Errorf("seeding users failed: %w", err)
	}
	log.Printf("Created %d users", len(users))

	posts, err := seedPosts(db, users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("seeding posts failed: %w", err)
	}
	log.Printf("Created %d posts", len(posts))

	if err := seedEngagement(db, users, posts); err != nil {
		return fmt.Errorf("seeding engagement failed: %w", err)
	}
	log.Println("Seeded likes and comments")

	if err := seedMessages(db, users); err != nil {
		return fmt.Errorf("seeding messages failed: %w", err)
	}
	log.Println("Seeded messages")

	return nil
}

func clean(db *gorm.DB) error {
	// Delete children before parents.
	for _, model := range []any{
		&models.Message{}, &models.Like{}, &models.Comment{}, &models.Post{}, &models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedUsers(db *gorm.DB, count int, passwordHash string) ([]models.User, error) {
	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i)
		user := models.User{
			Username:      username,
			Email:         fmt.Sprintf("%s@%s", username, gofakeit.DomainName()),
			Password:      passwordHash,
			FullName:      name,
			BusinessName:  gofakeit.Company(),
			BusinessType:  businessTypes[rand.Intn(len(businessTypes))],
			Location:      fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.StateAbr()),
			Bio:           gofakeit.Sentence(12),
			Website:       fmt.Sprintf("https://%s", gofakeit.DomainName()),
			BusinessScore: models.DefaultBusinessScore,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func seedPosts(db *gorm.DB, users []models.User, count int) ([]models.Post, error) {
	types := []string{
		models.PostTypeDiscussion, models.PostTypeDiscussion,
		models.PostTypeMarketing, models.PostTypeOpportunity,
		models.PostTypeCollaboration,
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		postType := types[rand.Intn(len(types))]

		tags := make(models.StringList, 0, 3)
		for _, t := range postTags {
			if rand.Intn(4) == 0 && len(tags) < 3 {
				tags = append(tags, t)
			}
		}

		post := models.Post{
			UserID:   author.ID,
			Title:    gofakeit.Sentence(6),
			Content:  gofakeit.Paragraph(1, 3, 12, " "),
			PostType: postType,
			Tags:     tags,
		}
		if postType == models.PostTypeCollaboration {
			post.IsCollaboration = true
			post.CollaborationDetails = &models.CollaborationDetails{
				Offers: models.StringList{gofakeit.BuzzWord(), gofakeit.BuzzWord()},
			}
		}
		if err := db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func seedEngagement(db *gorm.DB, users []models.User, posts []models.Post) error {
	for i := range posts {
		post := &posts[i]

		// Pick a distinct subset of users as likers.
		numLikes := rand.Intn(len(users)/2 + 1)
		perm := rand.Perm(len(users))
		for _, idx := range perm[:numLikes] {
			like := models.Like{PostID: post.ID, UserID: users[idx].ID}
			if err := db.Create(&like).Error; err != nil {
				return err
			}
		}

		numComments := rand.Intn(5)
		for j := 0; j < numComments; j++ {
			comment := models.Comment{
				PostID:  post.ID,
				UserID:  users[rand.Intn(len(users))].ID,
				Content: gofakeit.Sentence(10),
			}
			if err := db.Create(&comment).Error; err != nil {
				return err
			}
		}

		err := db.Model(post).Updates(map[string]any{
			"likes_count":    numLikes,
			"comments_count": numComments,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func seedMessages(db *gorm.DB, users []models.User) error {
	if len(users) < 2 {
		return nil
	}
	numMessages := len(users) * 2
	for i := 0; i < numMessages; i++ {
		sender := users[rand.Intn(len(users))]
		recipient := users[rand.Intn(len(users))]
		if sender.ID == recipient.ID {
			continue
		}
		message := models.Message{
			SenderID:    sender.ID,
			RecipientID: recipient.ID,
			Content:     gofakeit.Sentence(8),
			IsRead:      rand.Intn(2) == 0,
		}
		if err := db.Create(&message).Error; err != nil {
			return err
		}
	}
	return nil
}
