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

// CatalogService manages the static FAQ and reward catalogs. Reads are
// public; writes are admin-only and limited to create and delete.
type CatalogService struct {
	faqs    repository.FAQRepository
	rewards repository.RewardRepository
	logger  *slog.Logger
}

func NewCatalogService(faqs repository.FAQRepository, rewards repository.RewardRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		faqs:    faqs,
		rewards: rewards,
		logger:  logger,
	}
}

func (s *CatalogService) ListFAQs(ctx context.Context) ([]model.FAQ, error) {
	return s.faqs.ListFAQs(ctx)
}

func (s *CatalogService) CreateFAQ(ctx context.Context, caller *model.SessionUser, question, answer string) (*model.FAQ, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return nil, apperror.ValidationFailed("question", "question is required")
	}
	if answer == "" {
		return nil, apperror.ValidationFailed("answer", "answer is required")
	}

	faq := &model.FAQ{Question: question, Answer: answer}
	if err := s.faqs.CreateFAQ(ctx, faq); err != nil {
		return nil, fmt.Errorf("creating faq: %w", err)
	}

	s.logger.Info("faq created", slog.String("id", faq.ID), slog.String("by", caller.ID))
	return faq, nil
}

func (s *CatalogService) DeleteFAQ(ctx context.Context, caller *model.SessionUser, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.faqs.DeleteFAQ(ctx, id); err != nil {
		return err
	}
	s.logger.Info("faq deleted", slog.String("id", id), slog.String("by", caller.ID))
	return nil
}

func (s *CatalogService) ListRewards(ctx context.Context) ([]model.Reward, error) {
	return s.rewards.ListRewards(ctx)
}

func (s *CatalogService) CreateReward(ctx context.Context, caller *model.SessionUser, name, description string, cost float64, imageURL string) (*model.Reward, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "reward name is required")
	}
	if cost <= 0 {
		return nil, apperror.ValidationFailed("cost", "reward cost must be positive")
	}

	reward := &model.Reward{
		Name:        name,
		Description: strings.TrimSpace(description),
		Cost:        cost,
		ImageURL:    strings.TrimSpace(imageURL),
	}
	if err := s.rewards.CreateReward(ctx, reward); err != nil {
		return nil, fmt.Errorf("creating reward: %w", err)
	}

	s.logger.Info("reward created", slog.String("id", reward.ID), slog.String("by", caller.ID))
	return reward, nil
}

func (s *CatalogService) DeleteReward(ctx context.Context, caller *model.SessionUser, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.rewards.DeleteReward(ctx, id); err != nil {
		return err
	}
	s.logger.Info("reward deleted", slog.String("id", id), slog.String("by", caller.ID))
	return nil
}

func requireAdmin(caller *model.SessionUser) error {
	if caller == nil {
		return apperror.Unauthorized("authentication required")
	}
	if !caller.IsAdmin {
		return apperror.Forbidden("admins only")
	}
	return nil
}
