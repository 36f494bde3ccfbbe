package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// =====================
// Clock / IDGenerator
// =====================

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

type seqIDs struct {
	ids []string
	i   int
}

func (g *seqIDs) NewID() string {
	id := g.ids[g.i%len(g.ids)]
	g.i++
	return id
}

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders    repo.OrderRepository
	auditLogs repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository       { return r.orders }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

// =====================
// Order repository fake（version付き）
// =====================

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]model.Order

	// 次のUpdateで返すエラー
	updateErr error
	updates   int
}

func newFakeOrderRepo(orders ...model.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[string]model.Order{}}
	for _, o := range orders {
		if o.Version == 0 {
			o.Version = 1
		}
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (r *fakeOrderRepo) FindByGatewayOrderID(_ context.Context, gw string) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.GatewayOrderID != nil && *o.GatewayOrderID == gw {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (r *fakeOrderRepo) List(_ context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Order{}
	for _, o := range r.orders {
		if f.ReadyToShip && !o.ReadyToShip() {
			continue
		}
		if f.Status != "" && string(o.Status) != f.Status {
			continue
		}
		if f.PaymentStatus != "" && string(o.PaymentStatus) != f.PaymentStatus {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) Create(_ context.Context, o model.Order) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	return o, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o model.Order, expectedVersion int64) (model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return model.Order{}, r.updateErr
	}
	cur, ok := r.orders[o.ID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return model.Order{}, repo.ErrConflict
	}
	o.Version = expectedVersion + 1
	r.orders[o.ID] = o
	r.updates++
	return o, nil
}

func (r *fakeOrderRepo) AttachGatewayOrder(_ context.Context, id string, gw string, expectedVersion int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repo.ErrNotFound
	}
	if o.Version != expectedVersion {
		return repo.ErrConflict
	}
	o.GatewayOrderID = &gw
	o.UpdatedAt = at
	o.Version = expectedVersion + 1
	r.orders[id] = o
	return nil
}

var _ repo.OrderRepository = (*fakeOrderRepo)(nil)

// =====================
// Audit log mock
// =====================

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Payment gateway mock
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateOrder(ctx context.Context, req usecase.GatewayOrderRequest) (usecase.GatewayOrder, error) {
	args := m.Called(ctx, req)
	o, _ := args.Get(0).(usecase.GatewayOrder)
	return o, args.Error(1)
}

// =====================
// Role provider / cache mocks
// =====================

type RoleProviderMock struct{ mock.Mock }

func (m *RoleProviderMock) RoleFor(ctx context.Context, userID int64) (usecase.RoleInfo, bool, error) {
	args := m.Called(ctx, userID)
	info, _ := args.Get(0).(usecase.RoleInfo)
	return info, args.Bool(1), args.Error(2)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// helpers
// =====================

func strPtr(s string) *string { return &s }

func newTx(orders repo.OrderRepository, audit repo.AuditLogRepository) *TxManagerMock {
	tx := &TxManagerMock{Repos: &TxReposMock{orders: orders, auditLogs: audit}}
	tx.On("WithinTx", mock.Anything).Return(nil)
	return tx
}

func pendingOrder(id string, at time.Time) model.Order {
	return model.Order{
		ID:            id,
		OrderNumber:   "ORD-20260301-" + id,
		Customer:      model.Customer{Name: "Asha", Email: "asha@example.com"},
		Items:         []model.OrderItem{{ProductID: "p1", Title: "Mug", PriceCents: 2500, Quantity: 2}},
		SubtotalCents: 5000,
		TotalCents:    5000,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
		StatusHistory: []model.StatusHistoryEntry{{Status: model.OrderStatusPending, Timestamp: at, Note: "Order placed"}},
		Version:       1,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}
