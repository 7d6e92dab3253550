package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/foodgram/internal/apperror"
	"github.com/sakif/foodgram/internal/model"
	"github.com/sakif/foodgram/internal/repository"
)

// FollowService manages subscriptions between users.
type FollowService struct {
	follows  repository.FollowRepository
	users    repository.UserRepository
	recipes  repository.RecipeRepository
	pageSize int
	logger   *slog.Logger
}

func NewFollowService(
	follows repository.FollowRepository,
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	pageSize int,
	logger *slog.Logger,
) *FollowService {
	return &FollowService{
		follows:  follows,
		users:    users,
		recipes:  recipes,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Follow subscribes followerID to authorID and returns the author as the
// follower now sees them. recipesLimit caps the embedded recipe list
// (<= 0 means all).
func (s *FollowService) Follow(ctx context.Context, followerID, authorID int64, recipesLimit int) (*model.AuthorDetail, error) {
	if followerID == 0 {
		return nil, apperror.Unauthorized("authentication required")
	}
	if followerID == authorID {
		return nil, apperror.ValidationFailed("author", "you cannot subscribe to yourself")
	}
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return nil, err
	}

	following, err := s.follows.IsFollowing(ctx, followerID, authorID)
	if err != nil {
		return nil, fmt.Errorf("checking follow: %w", err)
	}
	if following {
		return nil, apperror.Conflict("author", fmt.Sprintf("already subscribed to user %d", authorID))
	}

	if err := s.follows.CreateFollow(ctx, followerID, authorID); err != nil {
		return nil, err
	}

	s.logger.Info("follow created", slog.Int64("follower", followerID), slog.Int64("author", authorID))

	profile, err := s.users.GetProfile(ctx, authorID, followerID)
	if err != nil {
		return nil, err
	}
	return s.authorDetail(ctx, *profile, recipesLimit)
}

// Unfollow removes the subscription; NotFound if there was none.
func (s *FollowService) Unfollow(ctx context.Context, followerID, authorID int64) error {
	if followerID == 0 {
		return apperror.Unauthorized("authentication required")
	}
	if followerID == authorID {
		return apperror.ValidationFailed("author", "you cannot unsubscribe from yourself")
	}
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return err
	}

	if err := s.follows.DeleteFollow(ctx, followerID, authorID); err != nil {
		return err
	}

	s.logger.Info("follow removed", slog.Int64("follower", followerID), slog.Int64("author", authorID))
	return nil
}

// Following pages through the authors followerID follows, each with their
// newest recipes capped at recipesLimit and their total recipe count.
func (s *FollowService) Following(ctx context.Context, followerID int64, recipesLimit int, req PageRequest) (Page[model.AuthorDetail], error) {
	if followerID == 0 {
		return Page[model.AuthorDetail]{}, apperror.Unauthorized("authentication required")
	}
	page := req.normalize(s.pageSize)

	profiles, total, err := s.follows.ListFollowing(ctx, followerID, page.listOptions())
	if err != nil {
		return Page[model.AuthorDetail]{}, fmt.Errorf("listing subscriptions: %w", err)
	}

	authors := make([]model.AuthorDetail, 0, len(profiles))
	for _, p := range profiles {
		detail, err := s.authorDetail(ctx, p, recipesLimit)
		if err != nil {
			return Page[model.AuthorDetail]{}, err
		}
		authors = append(authors, *detail)
	}
	return newPage(authors, total, page), nil
}

func (s *FollowService) authorDetail(ctx context.Context, p model.Profile, recipesLimit int) (*model.AuthorDetail, error) {
	recipes, count, err := s.recipes.ListAuthorRecipes(ctx, p.ID, recipesLimit)
	if err != nil {
		return nil, fmt.Errorf("listing recipes of user %d: %w", p.ID, err)
	}
	return &model.AuthorDetail{Profile: p, Recipes: recipes, RecipesCount: count}, nil
}
