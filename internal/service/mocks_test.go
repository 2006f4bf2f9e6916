package service

// Hand-written in-memory mocks for the repository interfaces. They keep the
// service tests fast and let us trigger failure paths (stats outage, missing
// rows) that are awkward to reproduce with a real database.

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/hackatime"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- users ---

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(u model.User) {
	stored := u
	m.users[u.ID] = &stored
}

func (m *mockUserRepo) GetOrCreate(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			*user = *u
			return nil
		}
	}
	user.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) UpdateNickname(_ context.Context, id, nickname string) error {
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.Nickname = nickname
	return nil
}

// --- projects ---

type mockProjectRepo struct {
	projects map[string]*model.Project
	order    []string // insertion order, stands in for created_at ASC
	nextID   int

	hoursUpdates map[string]float64 // project ID → last persisted hours
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{
		projects:     make(map[string]*model.Project),
		hoursUpdates: make(map[string]float64),
	}
}

func (m *mockProjectRepo) add(p model.Project) {
	stored := p
	m.projects[p.ID] = &stored
	m.order = append(m.order, p.ID)
}

func (m *mockProjectRepo) Create(_ context.Context, project *model.Project) error {
	m.nextID++
	project.ID = fmt.Sprintf("proj-%d", m.nextID)
	if project.Status == "" {
		project.Status = model.StatusBuilding
	}
	stored := *project
	m.projects[project.ID] = &stored
	m.order = append(m.order, project.ID)
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, apperror.NotFound("project", id)
	}
	result := *p
	return &result, nil
}

func (m *mockProjectRepo) ListByUser(_ context.Context, userID string) ([]model.Project, error) {
	var result []model.Project
	for _, id := range m.order {
		if p := m.projects[id]; p != nil && p.UserID == userID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProjectRepo) ListPublic(_ context.Context, filter repository.PublicFilter) ([]model.PublicProject, error) {
	var result []model.PublicProject
	for _, id := range m.order {
		p := m.projects[id]
		if p == nil {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		result = append(result, model.PublicProject{
			ID:     p.ID,
			Title:  p.Title,
			Hours:  p.Hours,
			Status: p.Status,
		})
	}
	return result, nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *model.Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return apperror.NotFound("project", project.ID)
	}
	stored := *project
	m.projects[project.ID] = &stored
	return nil
}

func (m *mockProjectRepo) UpdateHours(_ context.Context, id string, hours float64) error {
	p, ok := m.projects[id]
	if !ok {
		return apperror.NotFound("project", id)
	}
	p.Hours = hours
	m.hoursUpdates[id] = hours
	return nil
}

func (m *mockProjectRepo) UpdateStatus(_ context.Context, id string, status model.Status) error {
	p, ok := m.projects[id]
	if !ok {
		return apperror.NotFound("project", id)
	}
	p.Status = status
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.projects[id]; !ok {
		return apperror.NotFound("project", id)
	}
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepo) TrackerNamesInUse(_ context.Context, userID, excludeProjectID string) (map[string]string, error) {
	inUse := make(map[string]string)
	for _, p := range m.projects {
		if p.UserID != userID || p.ID == excludeProjectID {
			continue
		}
		for _, name := range p.TrackerNames() {
			inUse[name] = p.ID
		}
	}
	return inUse, nil
}

// --- orders ---

type mockOrderRepo struct {
	orders  map[string]*model.Order
	balance float64
	nextID  int

	debitErr error // forced CreateWithDebit failure
}

func newMockOrderRepo(balance float64) *mockOrderRepo {
	return &mockOrderRepo{
		orders:  make(map[string]*model.Order),
		balance: balance,
	}
}

func (m *mockOrderRepo) CreateWithDebit(_ context.Context, order *model.Order) (float64, error) {
	if m.debitErr != nil {
		return 0, m.debitErr
	}
	if m.balance < order.TotalCost {
		return 0, apperror.ValidationFailed("quantity",
			fmt.Sprintf("insufficient balance: need %.2f hours, have %.2f", order.TotalCost, m.balance))
	}
	m.nextID++
	order.ID = fmt.Sprintf("order-%d", m.nextID)
	if order.Status == "" {
		order.Status = model.OrderPending
	}
	m.balance -= order.TotalCost
	stored := *order
	m.orders[order.ID] = &stored
	return m.balance, nil
}

func (m *mockOrderRepo) Balance(_ context.Context, _ string) (float64, error) {
	return m.balance, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, apperror.NotFound("order", id)
	}
	result := *o
	return &result, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	var result []model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]model.Order, error) {
	var result []model.Order
	for _, o := range m.orders {
		result = append(result, *o)
	}
	return result, nil
}

func (m *mockOrderRepo) Update(_ context.Context, order *model.Order) error {
	if _, ok := m.orders[order.ID]; !ok {
		return apperror.NotFound("order", order.ID)
	}
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

// --- catalog ---

type mockCatalogRepo struct {
	faqs    map[string]*model.FAQ
	rewards map[string]*model.Reward
	nextID  int
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{
		faqs:    make(map[string]*model.FAQ),
		rewards: make(map[string]*model.Reward),
	}
}

func (m *mockCatalogRepo) CreateFAQ(_ context.Context, faq *model.FAQ) error {
	m.nextID++
	faq.ID = fmt.Sprintf("faq-%d", m.nextID)
	stored := *faq
	m.faqs[faq.ID] = &stored
	return nil
}

func (m *mockCatalogRepo) ListFAQs(_ context.Context) ([]model.FAQ, error) {
	var result []model.FAQ
	for _, f := range m.faqs {
		result = append(result, *f)
	}
	return result, nil
}

func (m *mockCatalogRepo) DeleteFAQ(_ context.Context, id string) error {
	if _, ok := m.faqs[id]; !ok {
		return apperror.NotFound("faq", id)
	}
	delete(m.faqs, id)
	return nil
}

func (m *mockCatalogRepo) CreateReward(_ context.Context, reward *model.Reward) error {
	m.nextID++
	reward.ID = fmt.Sprintf("reward-%d", m.nextID)
	stored := *reward
	m.rewards[reward.ID] = &stored
	return nil
}

func (m *mockCatalogRepo) GetReward(_ context.Context, id string) (*model.Reward, error) {
	r, ok := m.rewards[id]
	if !ok {
		return nil, apperror.NotFound("reward", id)
	}
	result := *r
	return &result, nil
}

func (m *mockCatalogRepo) ListRewards(_ context.Context) ([]model.Reward, error) {
	var result []model.Reward
	for _, r := range m.rewards {
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockCatalogRepo) DeleteReward(_ context.Context, id string) error {
	if _, ok := m.rewards[id]; !ok {
		return apperror.NotFound("reward", id)
	}
	delete(m.rewards, id)
	return nil
}

// --- time tracker + notifier fakes ---

type fakeHoursSource struct {
	stats []hackatime.ProjectStat
	err   error
	calls int
}

func (f *fakeHoursSource) ProjectStats(_ context.Context, _ string) ([]hackatime.ProjectStat, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type shipRecord struct {
	projectID string
	ownerID   string
}

type rejectRecord struct {
	projectID string
	reason    string
}

type fakeNotifier struct {
	shipped  []shipRecord
	rejected []rejectRecord
	err      error
}

func (f *fakeNotifier) ProjectShipped(_ context.Context, project *model.Project, owner *model.User) error {
	f.shipped = append(f.shipped, shipRecord{projectID: project.ID, ownerID: owner.ID})
	return f.err
}

func (f *fakeNotifier) ProjectRejected(_ context.Context, project *model.Project, _ *model.User, reason string) error {
	f.rejected = append(f.rejected, rejectRecord{projectID: project.ID, reason: reason})
	return f.err
}

// Compile-time checks that the mocks satisfy the repository interfaces.
var (
	_ repository.UserRepository    = (*mockUserRepo)(nil)
	_ repository.ProjectRepository = (*mockProjectRepo)(nil)
	_ repository.OrderRepository   = (*mockOrderRepo)(nil)
	_ repository.FAQRepository     = (*mockCatalogRepo)(nil)
	_ repository.RewardRepository  = (*mockCatalogRepo)(nil)
	_ HoursSource                  = (*fakeHoursSource)(nil)
	_ Notifier                     = (*fakeNotifier)(nil)
)
