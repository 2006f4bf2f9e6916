package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/repository"
)

const MaxNicknameLength = 60

// UserService handles profile reads and the one mutable profile field, the
// display name. Email and Slack ID always come from the identity provider.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Login get-or-creates the local account for a provider identity. Called
// only from the OAuth callback after eligibility checks have passed.
func (s *UserService) Login(ctx context.Context, email, nickname, slackID string) (*model.User, error) {
	user := &model.User{
		Email:    email,
		Nickname: nickname,
		SlackID:  slackID,
	}
	if err := s.users.GetOrCreate(ctx, user); err != nil {
		return nil, fmt.Errorf("logging in %s: %w", email, err)
	}
	return user, nil
}

// UpdateNickname changes the caller's display name.
func (s *UserService) UpdateNickname(ctx context.Context, caller *model.SessionUser, nickname string) (*model.User, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, apperror.ValidationFailed("nickname", "nickname is required")
	}
	if len(nickname) > MaxNicknameLength {
		return nil, apperror.ValidationFailed("nickname",
			fmt.Sprintf("nickname must be %d characters or less", MaxNicknameLength))
	}

	if err := s.users.UpdateNickname(ctx, caller.ID, nickname); err != nil {
		return nil, err
	}

	s.logger.Info("nickname updated", slog.String("userID", caller.ID))

	user := caller.User
	user.Nickname = nickname
	return &user, nil
}
