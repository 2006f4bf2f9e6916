package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/hackatime"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/repository"
)

// HoursEpsilon is the drift below which a recomputed hour total is not
// persisted. Keeps the listing endpoint from rewriting rows on every read
// over float noise.
const HoursEpsilon = 0.01

const MaxTitleLength = 100

// HoursSource fetches per-user tracked sub-project stats. Implemented by
// hackatime.Client; tests substitute a fake.
type HoursSource interface {
	ProjectStats(ctx context.Context, slackID string) ([]hackatime.ProjectStat, error)
}

// Notifier delivers lifecycle notifications. Implemented by slack.Notifier;
// failures are logged by this service and never affect the transition that
// triggered them.
type Notifier interface {
	ProjectShipped(ctx context.Context, project *model.Project, owner *model.User) error
	ProjectRejected(ctx context.Context, project *model.Project, owner *model.User, reason string) error
}

// ProjectService owns the submission lifecycle and its authorization rules.
type ProjectService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	hours    HoursSource
	notifier Notifier
	logger   *slog.Logger
}

func NewProjectService(
	projects repository.ProjectRepository,
	users repository.UserRepository,
	hours HoursSource,
	notifier Notifier,
	logger *slog.Logger,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		users:    users,
		hours:    hours,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateProjectInput carries the owner-settable content fields.
type CreateProjectInput struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DemoLink        string `json:"demoLink"`
	RepoLink        string `json:"repoLink"`
	TrackedProjects string `json:"trackedProjects"`
}

// Create inserts a new project for the caller with status Building and zero
// hours. The requested tracker names must not be linked to any other project
// the caller owns.
func (s *ProjectService) Create(ctx context.Context, caller *model.SessionUser, input CreateProjectInput) (*model.Project, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "project title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("project title must be %d characters or less", MaxTitleLength))
	}

	tracked := strings.Join(model.SplitTrackerNames(input.TrackedProjects), ", ")
	if err := s.checkTrackerConflicts(ctx, caller.ID, "", tracked); err != nil {
		return nil, err
	}

	project := &model.Project{
		UserID:          caller.ID,
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		DemoLink:        strings.TrimSpace(input.DemoLink),
		RepoLink:        strings.TrimSpace(input.RepoLink),
		TrackedProjects: tracked,
		Status:          model.StatusBuilding,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		s.logger.Error("failed to create project",
			slog.String("userID", caller.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("id", project.ID),
		slog.String("userID", caller.ID),
	)

	return project, nil
}

// Get returns one project. Only the owner or an admin may read it.
func (s *ProjectService) Get(ctx context.Context, caller *model.SessionUser, id string) (*model.Project, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != caller.ID && !caller.IsAdmin {
		return nil, apperror.Forbidden("not your project")
	}
	return project, nil
}

// ProjectView is a project plus its HH:MM:SS duration rendering, as returned
// by the owner listing.
type ProjectView struct {
	model.Project
	Duration string `json:"duration"`
}

// ListMine returns the caller's projects. Projects still Building get a live
// hours recompute from the time tracker, persisted when the drift exceeds
// HoursEpsilon; submitted and shipped projects keep their frozen totals. A
// stats fetch failure is logged and the stored values stand — the sync is
// best-effort by design.
func (s *ProjectService) ListMine(ctx context.Context, caller *model.SessionUser) ([]ProjectView, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}

	projects, err := s.projects.ListByUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	var stats []hackatime.ProjectStat
	statsLoaded := false
	for i := range projects {
		p := &projects[i]
		if p.Status.Frozen() || p.TrackedProjects == "" {
			continue
		}

		if !statsLoaded {
			stats, err = s.hours.ProjectStats(ctx, caller.SlackID)
			if err != nil {
				s.logger.Warn("hours sync failed, keeping stored values",
					slog.String("userID", caller.ID),
					slog.String("error", err.Error()),
				)
				break
			}
			statsLoaded = true
		}

		live := hackatime.Hours(hackatime.SumSeconds(stats, p.TrackerNames()))
		if math.Abs(live-p.Hours) > HoursEpsilon {
			if err := s.projects.UpdateHours(ctx, p.ID, live); err != nil {
				s.logger.Error("failed to persist recomputed hours",
					slog.String("projectID", p.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			p.Hours = live
		}
	}

	views := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, ProjectView{
			Project:  p,
			Duration: model.FormatDuration(p.Hours),
		})
	}
	return views, nil
}

// ListPublic returns the owner-stripped listing, optionally filtered by a
// normalized status keyword and/or a Slack ID.
func (s *ProjectService) ListPublic(ctx context.Context, statusKeyword, slackID string) ([]model.PublicProject, error) {
	var filter repository.PublicFilter
	if statusKeyword != "" {
		status, ok := model.ParseStatus(statusKeyword)
		if !ok {
			return nil, apperror.ValidationFailed("status",
				fmt.Sprintf("unknown status %q", statusKeyword))
		}
		filter.Status = status
	}
	filter.SlackID = strings.TrimSpace(slackID)

	projects, err := s.projects.ListPublic(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing public projects: %w", err)
	}
	return projects, nil
}

// UpdateProjectInput carries a partial update. Nil means "field not present
// in the request" — the distinction matters because a reviewer sending any
// non-status field is rejected outright.
type UpdateProjectInput struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	DemoLink        *string `json:"demoLink"`
	RepoLink        *string `json:"repoLink"`
	TrackedProjects *string `json:"trackedProjects"`
	Status          *string `json:"status"`
}

func (in *UpdateProjectInput) hasContentFields() bool {
	return in.Title != nil || in.Description != nil || in.DemoLink != nil ||
		in.RepoLink != nil || in.TrackedProjects != nil
}

// Update applies a partial update under the role rules:
//
//   - admin: unrestricted.
//   - reviewer (non-admin): may change only status; any other field → 403.
//   - owner: 403 while the project is Pending Review or Shipped; otherwise
//     may change content fields and tracker names, never status.
//
// When the update moves the status to Pending Review the accrued hours are
// recomputed from the tracker, best-effort.
func (s *ProjectService) Update(ctx context.Context, caller *model.SessionUser, id string, input UpdateProjectInput) (*model.Project, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isOwner := project.UserID == caller.ID

	switch {
	case caller.IsAdmin:
		// Unrestricted.
	case caller.IsReviewer:
		if input.hasContentFields() {
			return nil, apperror.Forbidden("reviewers may only change status")
		}
	case isOwner:
		if project.Status.Frozen() {
			return nil, apperror.Forbidden(
				fmt.Sprintf("project is %s and can no longer be edited", project.Status))
		}
		if input.Status != nil {
			return nil, apperror.Forbidden("owners may not change status directly")
		}
	default:
		return nil, apperror.Forbidden("not your project")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "project title is required")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("project title must be %d characters or less", MaxTitleLength))
		}
		project.Title = title
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.DemoLink != nil {
		project.DemoLink = strings.TrimSpace(*input.DemoLink)
	}
	if input.RepoLink != nil {
		project.RepoLink = strings.TrimSpace(*input.RepoLink)
	}
	if input.TrackedProjects != nil {
		tracked := strings.Join(model.SplitTrackerNames(*input.TrackedProjects), ", ")
		if err := s.checkTrackerConflicts(ctx, project.UserID, project.ID, tracked); err != nil {
			return nil, err
		}
		project.TrackedProjects = tracked
	}

	wasPending := project.Status == model.StatusPendingReview
	if input.Status != nil {
		status, ok := model.ParseStatus(*input.Status)
		if !ok {
			return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", *input.Status))
		}
		project.Status = status
	}

	if project.Status == model.StatusPendingReview && !wasPending {
		s.syncHours(ctx, project)
	}

	if err := s.projects.Update(ctx, project); err != nil {
		s.logger.Error("failed to update project",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.logger.Info("project updated", slog.String("id", id), slog.String("by", caller.ID))
	return project, nil
}

// Submit moves the caller's own Building project into Pending Review,
// recomputing its hours from the tracker on the way. From here on the hours
// are frozen until a reviewer acts.
func (s *ProjectService) Submit(ctx context.Context, caller *model.SessionUser, id string) (*model.Project, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != caller.ID && !caller.IsAdmin {
		return nil, apperror.Forbidden("not your project")
	}
	if project.Status != model.StatusBuilding {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("only Building projects can be submitted (current: %s)", project.Status))
	}

	project.Status = model.StatusPendingReview
	s.syncHours(ctx, project)

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("submitting project: %w", err)
	}

	s.logger.Info("project submitted for review",
		slog.String("id", id),
		slog.Float64("hours", project.Hours),
	)
	return project, nil
}

// Delete removes a project. Owners may delete while the project is still
// Building; once it is under review or shipped only an admin can.
func (s *ProjectService) Delete(ctx context.Context, caller *model.SessionUser, id string) error {
	if caller == nil {
		return apperror.Unauthorized("authentication required")
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if project.UserID != caller.ID && !caller.IsAdmin {
		return apperror.Forbidden("not your project")
	}
	if !caller.IsAdmin && project.Status.Frozen() {
		return apperror.Forbidden(
			fmt.Sprintf("project is %s and can no longer be deleted", project.Status))
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("project deleted", slog.String("id", id), slog.String("by", caller.ID))
	return nil
}

// SetStatus is the admin-only direct status override. It bypasses the
// transition rules entirely — no state is terminal for admins.
func (s *ProjectService) SetStatus(ctx context.Context, caller *model.SessionUser, id string, statusKeyword string) (*model.Project, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	if !caller.IsAdmin {
		return nil, apperror.Forbidden("admins only")
	}

	status, ok := model.ParseStatus(statusKeyword)
	if !ok {
		return nil, apperror.ValidationFailed("status", fmt.Sprintf("unknown status %q", statusKeyword))
	}

	if err := s.projects.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	s.logger.Info("project status overridden",
		slog.String("id", id),
		slog.String("status", string(status)),
		slog.String("by", caller.ID),
	)
	return s.projects.GetByID(ctx, id)
}

// Approve ships a Pending Review project. The owner gets a DM and the ship
// channel gets an announcement; a notification failure is logged but never
// rolls back the transition.
func (s *ProjectService) Approve(ctx context.Context, caller *model.SessionUser, id string) (*model.Project, error) {
	project, err := s.reviewTransition(ctx, caller, id, model.StatusShipped)
	if err != nil {
		return nil, err
	}

	owner, ownerErr := s.users.GetByID(ctx, project.UserID)
	if ownerErr != nil {
		s.logger.Error("shipped notification skipped: owner lookup failed",
			slog.String("projectID", id),
			slog.String("error", ownerErr.Error()),
		)
		return project, nil
	}
	if s.notifier == nil {
		return project, nil
	}
	if err := s.notifier.ProjectShipped(ctx, project, owner); err != nil {
		s.logger.Warn("shipped notification failed",
			slog.String("projectID", id),
			slog.String("error", err.Error()),
		)
	}

	return project, nil
}

// Reject sends a Pending Review project back to Building and DMs the owner
// with the reviewer's reason. No channel-wide post.
func (s *ProjectService) Reject(ctx context.Context, caller *model.SessionUser, id, reason string) (*model.Project, error) {
	project, err := s.reviewTransition(ctx, caller, id, model.StatusBuilding)
	if err != nil {
		return nil, err
	}

	owner, ownerErr := s.users.GetByID(ctx, project.UserID)
	if ownerErr != nil {
		s.logger.Error("rejected notification skipped: owner lookup failed",
			slog.String("projectID", id),
			slog.String("error", ownerErr.Error()),
		)
		return project, nil
	}
	if s.notifier == nil {
		return project, nil
	}
	if err := s.notifier.ProjectRejected(ctx, project, owner, reason); err != nil {
		s.logger.Warn("rejected notification failed",
			slog.String("projectID", id),
			slog.String("error", err.Error()),
		)
	}

	return project, nil
}

// reviewTransition applies a reviewer decision: caller must be a reviewer or
// admin, and the project must currently be Pending Review.
func (s *ProjectService) reviewTransition(ctx context.Context, caller *model.SessionUser, id string, to model.Status) (*model.Project, error) {
	if caller == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	if !caller.IsReviewer {
		return nil, apperror.Forbidden("reviewers only")
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status != model.StatusPendingReview {
		return nil, apperror.ValidationFailed("status",
			fmt.Sprintf("project is %s, not Pending Review", project.Status))
	}

	project.Status = to
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("applying review decision: %w", err)
	}

	s.logger.Info("review decision applied",
		slog.String("id", id),
		slog.String("status", string(to)),
		slog.String("by", caller.ID),
	)
	return project, nil
}

// checkTrackerConflicts enforces the disjointness invariant: no tracker name
// may back two of the same user's projects. excludeProjectID skips the
// project being edited.
func (s *ProjectService) checkTrackerConflicts(ctx context.Context, userID, excludeProjectID, tracked string) error {
	names := model.SplitTrackerNames(tracked)
	if len(names) == 0 {
		return nil
	}

	inUse, err := s.projects.TrackerNamesInUse(ctx, userID, excludeProjectID)
	if err != nil {
		return fmt.Errorf("checking tracker names: %w", err)
	}

	for _, name := range names {
		if _, taken := inUse[name]; taken {
			return apperror.ValidationFailed("trackedProjects",
				fmt.Sprintf("tracker %q is already linked to another of your projects", name))
		}
	}
	return nil
}

// syncHours recomputes the project's accrued hours from the tracker. Failures
// are swallowed after logging; the stored value stands.
func (s *ProjectService) syncHours(ctx context.Context, project *model.Project) {
	names := project.TrackerNames()
	if len(names) == 0 {
		return
	}

	owner, err := s.users.GetByID(ctx, project.UserID)
	if err != nil {
		s.logger.Warn("hours sync skipped: owner lookup failed",
			slog.String("projectID", project.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	stats, err := s.hours.ProjectStats(ctx, owner.SlackID)
	if err != nil {
		s.logger.Warn("hours sync failed, keeping stored value",
			slog.String("projectID", project.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	project.Hours = hackatime.Hours(hackatime.SumSeconds(stats, names))
}
