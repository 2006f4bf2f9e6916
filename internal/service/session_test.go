package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/model"
)

func TestResolve_AnonymousIsNil(t *testing.T) {
	svc := NewSessionService(newMockUserRepo(), nil, nil, testLogger())

	su, err := svc.Resolve(context.Background(), "")
	if err != nil || su != nil {
		t.Fatalf("Resolve(\"\") = (%v, %v), want (nil, nil)", su, err)
	}
}

func TestResolve_StaleSessionIsNil(t *testing.T) {
	svc := NewSessionService(newMockUserRepo(), nil, nil, testLogger())

	su, err := svc.Resolve(context.Background(), "user-gone")
	if err != nil {
		t.Fatalf("stale session must not error: %v", err)
	}
	if su != nil {
		t.Fatalf("expected nil user for stale session, got %+v", su)
	}
}

func TestResolve_RoleFlags(t *testing.T) {
	users := newMockUserRepo()
	users.add(model.User{ID: "u1", Email: "Admin@Example.com", SlackID: "U111"})
	users.add(model.User{ID: "u2", Email: "rev@example.com", SlackID: "U222"})
	users.add(model.User{ID: "u3", Email: "plain@example.com", SlackID: "U333"})
	users.add(model.User{ID: "u4", Email: "slackadmin@example.com", SlackID: "U444"})

	svc := NewSessionService(users,
		[]string{"admin@example.com", "u444"}, // email or Slack ID, any case
		[]string{"U222"},
		testLogger(),
	)

	tests := []struct {
		userID     string
		isAdmin    bool
		isReviewer bool
	}{
		{"u1", true, true},   // admin by email, case-insensitive
		{"u2", false, true},  // reviewer by Slack ID
		{"u3", false, false}, // nobody
		{"u4", true, true},   // admin by Slack ID; admins review too
	}

	for _, tt := range tests {
		su, err := svc.Resolve(context.Background(), tt.userID)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", tt.userID, err)
		}
		if su.IsAdmin != tt.isAdmin || su.IsReviewer != tt.isReviewer {
			t.Errorf("Resolve(%s) roles = (admin=%v, reviewer=%v), want (admin=%v, reviewer=%v)",
				tt.userID, su.IsAdmin, su.IsReviewer, tt.isAdmin, tt.isReviewer)
		}
	}
}

func TestRequire_MissingSessionUnauthorized(t *testing.T) {
	svc := NewSessionService(newMockUserRepo(), nil, nil, testLogger())

	if _, err := svc.Require(context.Background(), ""); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Require(\"\"): expected unauthorized, got %v", err)
	}
	if _, err := svc.Require(context.Background(), "user-gone"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Require(stale): expected unauthorized, got %v", err)
	}
}
