// Package service contains the business rules: role resolution, the project
// lifecycle, the marketplace, and the catalog. Services accept plain values
// and return domain errors from apperror; they know nothing about HTTP.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/repository"
)

// SessionService maps an authenticated session onto a user record augmented
// with role flags. Roles come from the configured allow-lists, never from
// the user row:
//
//	is_admin:    session email or Slack ID appears in the admin list
//	is_reviewer: Slack ID appears in the reviewer list, or is_admin
//
// All matching is case-insensitive.
type SessionService struct {
	users     repository.UserRepository
	admins    map[string]bool
	reviewers map[string]bool
	logger    *slog.Logger
}

func NewSessionService(users repository.UserRepository, adminList, reviewerList []string, logger *slog.Logger) *SessionService {
	return &SessionService{
		users:     users,
		admins:    toSet(adminList),
		reviewers: toSet(reviewerList),
		logger:    logger,
	}
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			set[strings.ToLower(v)] = true
		}
	}
	return set
}

// Resolve returns the session user for a token subject, or nil when the
// session references a user that no longer exists (the caller should clear
// the stale cookie). An empty userID is simply an anonymous request.
func (s *SessionService) Resolve(ctx context.Context, userID string) (*model.SessionUser, error) {
	if userID == "" {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("session references missing user", slog.String("userID", userID))
			return nil, nil
		}
		return nil, err
	}

	isAdmin := s.admins[strings.ToLower(user.Email)] || s.admins[strings.ToLower(user.SlackID)]
	return &model.SessionUser{
		User:       *user,
		IsAdmin:    isAdmin,
		IsReviewer: isAdmin || s.reviewers[strings.ToLower(user.SlackID)],
	}, nil
}

// Require is Resolve for protected routes: a missing or stale session is an
// Unauthorized error instead of nil.
func (s *SessionService) Require(ctx context.Context, userID string) (*model.SessionUser, error) {
	su, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	if su == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	return su, nil
}
