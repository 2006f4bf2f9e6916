package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/model"
)

func TestLogin_GetOrCreate(t *testing.T) {
	users := newMockUserRepo()
	svc := NewUserService(users, testLogger())

	first, err := svc.Login(context.Background(), "kid@example.com", "Kid", "U123")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if first.ID == "" {
		t.Fatal("first login did not assign an ID")
	}

	second, err := svc.Login(context.Background(), "kid@example.com", "Renamed", "U123")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second login created a new user: %s vs %s", second.ID, first.ID)
	}
}

func TestUpdateNickname(t *testing.T) {
	users := newMockUserRepo()
	users.add(model.User{ID: "user-1", Email: "kid@example.com", Nickname: "Kid"})
	svc := NewUserService(users, testLogger())

	caller := &model.SessionUser{User: model.User{ID: "user-1", Nickname: "Kid"}}

	updated, err := svc.UpdateNickname(context.Background(), caller, "  New Name  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Nickname != "New Name" {
		t.Errorf("nickname = %q, want trimmed %q", updated.Nickname, "New Name")
	}

	if _, err := svc.UpdateNickname(context.Background(), caller, "   "); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("blank nickname: expected validation error, got %v", err)
	}
	if _, err := svc.UpdateNickname(context.Background(), caller, strings.Repeat("x", MaxNicknameLength+1)); !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("overlong nickname: expected validation error, got %v", err)
	}
	if _, err := svc.UpdateNickname(context.Background(), nil, "name"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("nil caller: expected unauthorized, got %v", err)
	}
}
