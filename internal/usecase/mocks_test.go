package usecase_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"techshop/internal/domain/model"
	"techshop/internal/metrics"
	repo "techshop/internal/repository"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =====================
// TxManager / TxRepos
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	carts     repo.CartRepository
	orders    repo.OrderRepository
	products  repo.ProductRepository
	inventory repo.InventoryRepository
	auditLogs repo.AuditLogRepository
}

func (r *TxReposMock) Carts() repo.CartRepository          { return r.carts }
func (r *TxReposMock) Orders() repo.OrderRepository        { return r.orders }
func (r *TxReposMock) Products() repo.ProductRepository    { return r.products }
func (r *TxReposMock) Inventory() repo.InventoryRepository { return r.inventory }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository  { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetCart(ctx context.Context, filter repo.CartFilter) ([]model.Cart, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.Cart)
	return items, args.Error(1)
}

func (m *CartRepoMock) GetCartProduct(ctx context.Context, userID string) ([]repo.CartProduct, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]repo.CartProduct)
	return items, args.Error(1)
}

func (m *CartRepoMock) Create(ctx context.Context, cart model.Cart) (model.Cart, error) {
	args := m.Called(ctx, cart)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Update(ctx context.Context, cart model.Cart) (*model.Cart, error) {
	args := m.Called(ctx, cart)
	c, _ := args.Get(0).(*model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Delete(ctx context.Context, cart model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *CartRepoMock) LockByUserID(ctx context.Context, userID string) ([]model.Cart, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Cart)
	return items, args.Error(1)
}

func (m *CartRepoMock) ClearByUserID(ctx context.Context, userID string, productIDs ...string) error {
	args := m.Called(ctx, userID, productIDs)
	return args.Error(0)
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) UpdateState(ctx context.Context, orderID string, state model.OrderState) (model.Order, error) {
	args := m.Called(ctx, orderID, state)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) GetAll(ctx context.Context) ([]repo.OrderDataTableRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repo.OrderDataTableRow)
	return rows, args.Error(1)
}

func (m *OrderRepoMock) GetAllWithDiscountOrderByDescending(ctx context.Context) ([]repo.OrderWithDiscountRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]repo.OrderWithDiscountRow)
	return rows, args.Error(1)
}

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID string) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) GetAllByIDOrderByDescending(ctx context.Context, orderID string) ([]repo.OrderLineRow, error) {
	args := m.Called(ctx, orderID)
	rows, _ := args.Get(0).([]repo.OrderLineRow)
	return rows, args.Error(1)
}

func (m *OrderRepoMock) GetByUserID(ctx context.Context, userID string) ([]repo.UserOrderRow, error) {
	args := m.Called(ctx, userID)
	rows, _ := args.Get(0).([]repo.UserOrderRow)
	return rows, args.Error(1)
}

func (m *OrderRepoMock) FindDiscountByCode(ctx context.Context, code string) (model.Discount, error) {
	args := m.Called(ctx, code)
	d, _ := args.Get(0).(model.Discount)
	return d, args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, productID string) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) AttachCategory(ctx context.Context, productID string, categoryID string) error {
	args := m.Called(ctx, productID, categoryID)
	return args.Error(0)
}

func (m *ProductRepoMock) AddImage(ctx context.Context, image model.Image) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) AdjustStock(ctx context.Context, productID string, delta int64) error {
	args := m.Called(ctx, productID, delta)
	return args.Error(0)
}

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID string, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, l model.AuditLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Helpers
// =====================

type seqIDGen struct {
	ids []string
	n   int
}

func (g *seqIDGen) NewID() string {
	id := g.ids[g.n%len(g.ids)]
	g.n++
	return id
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestMetrics() *metrics.ShopMetrics {
	return metrics.NewShopMetricsWithRegisterer(prometheus.NewRegistry())
}

func newTestLogger() *log.Entry {
	l := log.New()
	l.SetOutput(io.Discard)
	return log.NewEntry(l)
}

// HTTPErrorの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
