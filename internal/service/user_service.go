package service

import (
	"context"
	"log/slog"
	"strings"

	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/repository"
	"pantry/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// MsgInvalidCredentials is the message returned for every failed token request.
const MsgInvalidCredentials = "Unable to authenticate with provided credentials"

// PasswordHashCost is the bcrypt cost used for new password hashes.
var PasswordHashCost = bcrypt.DefaultCost

type UserService struct {
	userRepo repository.UserRepository
	images   *ImageService
}

// CreateUserInput carries registration fields.
type CreateUserInput struct {
	Email    string
	Password string
	Name     string
	IsStaff  bool
}

// UpdateProfileInput carries a partial profile update; nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID   uint
	Email    *string
	Password *string
	Name     *string
}

func NewUserService(userRepo repository.UserRepository, images *ImageService) *UserService {
	return &UserService{userRepo: userRepo, images: images}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hashed), nil
}

// CreateUser validates every field before touching the database, so a rejected
// request never persists a row.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := validation.NormalizeEmail(in.Email)

	errs := models.FieldErrors{}
	if err := validation.ValidateEmail(email); err != nil {
		errs.Add("email", err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		errs.Add("password", err.Error())
	}
	if err := validation.ValidateRequiredText(in.Name); err != nil {
		errs.Add("name", err.Error())
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewFieldError("email", "user with this email already exists.")
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Name:     strings.TrimSpace(in.Name),
		IsActive: true,
		IsStaff:  in.IsStaff,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user created", slog.Uint64("new_user_id", uint64(user.ID)))
	return user, nil
}

// Authenticate checks credentials. Every failure yields the same validation error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := models.NewFieldError("non_field_errors", MsgInvalidCredentials)

	email = validation.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, invalid
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateProfile applies the supplied fields; a new password is re-hashed.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	errs := models.FieldErrors{}
	var email string
	if in.Email != nil {
		email = validation.NormalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			errs.Add("email", err.Error())
		}
	}
	if in.Password != nil {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			errs.Add("password", err.Error())
		}
	}
	if in.Name != nil {
		if err := validation.ValidateRequiredText(*in.Name); err != nil {
			errs.Add("name", err.Error())
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if in.Email != nil && email != user.Email {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != user.ID {
			return nil, models.NewFieldError("email", "user with this email already exists.")
		}
		user.Email = email
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Password != nil {
		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UploadImage stores a new profile image. The previous files are removed only
// after the user row points at the new image.
func (s *UserService) UploadImage(ctx context.Context, userID uint, in UploadImageInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	rel, err := s.images.Store(ctx, ImageKindUser, in)
	if err != nil {
		return nil, err
	}

	previous := user.Image
	user.Image = rel
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.images.Remove(ctx, rel)
		return nil, err
	}
	s.images.Remove(ctx, previous)
	return user, nil
}

// ImageURL returns the public URL of the user's image, or "" when unset.
func (s *UserService) ImageURL(user *models.User) string {
	return s.images.URL(user.Image)
}
