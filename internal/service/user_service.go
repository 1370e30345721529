// Package service contains the business rules of the content store.
package service

import (
	"context"

	"sharesmallbiz/internal/models"
	"sharesmallbiz/internal/repository"
	"sharesmallbiz/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements the user directory: registration, login, and
// profile maintenance.
type UserService struct {
	userRepo repository.UserRepository
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	FullName     string
	BusinessName string
	BusinessType string
	Location     string
	Website      string
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched; provided fields are shallow-merged into the stored record.
type UpdateProfileInput struct {
	UserID       uint
	FullName     *string
	BusinessName *string
	BusinessType *string
	Location     *string
	Avatar       *string
	Bio          *string
	Website      *string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register creates a new user. Username availability is checked before
// email, matching the conflict precedence clients rely on.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.Website != "" {
		if err := validation.ValidateWebsite(in.Website); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Username already taken")
	}

	existing, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:      in.Username,
		Email:         in.Email,
		Password:      string(hashed),
		FullName:      in.FullName,
		BusinessName:  in.BusinessName,
		BusinessType:  in.BusinessType,
		Location:      in.Location,
		Website:       in.Website,
		Connections:   0,
		BusinessScore: models.DefaultBusinessScore,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates by username and password. Unknown usernames and wrong
// passwords produce the same error, so a caller cannot probe which accounts
// exist.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("Invalid credentials")
	}

	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

// UpdateProfile shallow-merges the provided fields into the stored user.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500

	if in.FullName != nil {
		user.FullName = *in.FullName
	}
	if in.BusinessName != nil {
		user.BusinessName = *in.BusinessName
	}
	if in.BusinessType != nil {
		user.BusinessType = *in.BusinessType
	}
	if in.Location != nil {
		user.Location = *in.Location
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Website != nil {
		if *in.Website != "" {
			if err := validation.ValidateWebsite(*in.Website); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
		}
		user.Website = *in.Website
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
