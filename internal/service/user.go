package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/auth"
	"github.com/sakif/foodgram/internal/media"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// RegisterInput is the body of a sign-up request.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

// SetPasswordInput is the body of a password change.
type SetPasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

// UserService manages accounts and their public profiles.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	images    ImageStore
	pageSize  int
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	images ImageStore,
	pageSize int,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		images:    images,
		pageSize:  pageSize,
		logger:    logger,
	}
}

// Register creates an account. Email and username must be unused.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.Profile, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("email", "a user with this email already exists")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.Int64("id", user.ID), slog.String("username", user.Username))

	return s.users.GetProfile(ctx, user.ID, 0)
}

// Profile returns user id as viewerID sees it.
func (s *UserService) Profile(ctx context.Context, id, viewerID int64) (*model.Profile, error) {
	return s.users.GetProfile(ctx, id, viewerID)
}

// Me returns the caller's own profile.
func (s *UserService) Me(ctx context.Context, userID int64) (*model.Profile, error) {
	if userID == 0 {
		return nil, apperror.Unauthorized("authentication required")
	}
	return s.users.GetProfile(ctx, userID, userID)
}

// List pages through all users ordered by username.
func (s *UserService) List(ctx context.Context, viewerID int64, req PageRequest) (Page[model.Profile], error) {
	page := req.normalize(s.pageSize)
	profiles, total, err := s.users.ListProfiles(ctx, viewerID, page.listOptions())
	if err != nil {
		return Page[model.Profile]{}, fmt.Errorf("listing users: %w", err)
	}
	return newPage(profiles, total, page), nil
}

// SetAvatar stores a new avatar image and returns its URL. The previous
// image file is removed.
func (s *UserService) SetAvatar(ctx context.Context, userID int64, data string) (string, error) {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(data) == "" {
		return "", apperror.ValidationFailed("avatar", "this field is required")
	}

	url, err := s.images.SaveDataURL(media.KindAvatar, data)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) || errors.Is(err, media.ErrTooLarge) {
			return "", apperror.ValidationFailed("avatar", "upload a valid base64-encoded image")
		}
		return "", fmt.Errorf("storing avatar: %w", err)
	}

	if err := s.users.UpdateAvatar(ctx, userID, url); err != nil {
		s.removeImage(url)
		return "", err
	}
	if user.Avatar != "" {
		s.removeImage(user.Avatar)
	}
	return url, nil
}

// DeleteAvatar clears the avatar. Clearing an unset avatar is NotFound.
func (s *UserService) DeleteAvatar(ctx context.Context, userID int64) error {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == "" {
		return apperror.NotFoundMessage("no avatar is set")
	}
	if err := s.users.UpdateAvatar(ctx, userID, ""); err != nil {
		return err
	}
	s.removeImage(user.Avatar)
	return nil
}

// SetPassword changes the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID int64, in SetPasswordInput) error {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := validateStruct(in); err != nil {
		return err
	}
	if err := s.checkPassword(user, in.CurrentPassword); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(in.NewPassword)
	if err != nil {
		return apperror.ValidationFailed("new_password", err.Error())
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", slog.Int64("id", userID))
	return nil
}

// DeleteAccount removes the caller's account after confirming the password.
// Recipes, follows, favorites and shopping-list entries cascade.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64, currentPassword string) error {
	user, err := s.requireUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.checkPassword(user, currentPassword); err != nil {
		return err
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	if user.Avatar != "" {
		s.removeImage(user.Avatar)
	}

	s.logger.Info("user deleted", slog.Int64("id", userID), slog.String("username", user.Username))
	return nil
}

func (s *UserService) requireUser(ctx context.Context, userID int64) (*model.User, error) {
	if userID == 0 {
		return nil, apperror.Unauthorized("authentication required")
	}
	return s.users.GetUserByID(ctx, userID)
}

// checkPassword verifies a confirmation password. Accounts created through
// GitHub have no password and cannot confirm with one.
func (s *UserService) checkPassword(user *model.User, password string) error {
	if user.PasswordHash == "" {
		return apperror.ValidationFailed("current_password", "this account has no password set")
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return apperror.ValidationFailed("current_password", "incorrect password")
		}
		return fmt.Errorf("verifying password: %w", err)
	}
	return nil
}

func (s *UserService) removeImage(url string) {
	if err := s.images.Delete(url); err != nil {
		s.logger.Warn("failed to remove image", slog.String("url", url), slog.String("error", err.Error()))
	}
}
