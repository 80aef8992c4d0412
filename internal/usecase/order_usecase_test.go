package usecase_test

import (
	"context"
	"testing"

	"techshop/internal/domain/model"
	repo "techshop/internal/repository"
	"techshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	tx     *TxManagerMock
	carts  *CartRepoMock
	orders *OrderRepoMock
	uc     *usecase.OrderUsecase
}

func newOrderFixture() orderFixture {
	f := orderFixture{
		tx:     new(TxManagerMock),
		carts:  new(CartRepoMock),
		orders: new(OrderRepoMock),
	}
	f.tx.Repos = &TxReposMock{carts: f.carts, orders: f.orders}
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.uc = usecase.NewOrderUsecase(f.tx, f.orders, &seqIDGen{ids: []string{"o-1"}}, fixedClock{t: testNow}, newTestMetrics(), newTestLogger())
	return f
}

func validPlaceOrderInput() usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		Name:    "Taro",
		Phone:   "090-0000-0000",
		Email:   "taro@example.com",
		Address: "Tokyo",
		Payment: "COD",
	}
}

// ロック済みのカート行
func lockedRows(userID string, lines ...repo.CartProduct) []model.Cart {
	rows := make([]model.Cart, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, model.Cart{UserID: userID, ProductID: l.Product.ProductID, Quantity: l.Quantity})
	}
	return rows
}

func TestOrderUsecase_PlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name string
		mod  func(in *usecase.PlaceOrderInput)
		want string
	}{
		{"name", func(in *usecase.PlaceOrderInput) { in.Name = " " }, "invalid name"},
		{"phone", func(in *usecase.PlaceOrderInput) { in.Phone = "" }, "invalid phone"},
		{"address", func(in *usecase.PlaceOrderInput) { in.Address = "" }, "invalid address"},
		{"payment", func(in *usecase.PlaceOrderInput) { in.Payment = "" }, "invalid payment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			in := validPlaceOrderInput()
			tt.mod(&in)

			_, err := f.uc.PlaceOrder(context.Background(), "u1", in)
			assertErrContains(t, err, tt.want)
			f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
		})
	}
}

func TestOrderUsecase_PlaceOrder_EmptyCart(t *testing.T) {
	f := newOrderFixture()
	f.carts.On("LockByUserID", mock.Anything, "u1").Return([]model.Cart{}, nil)
	f.carts.On("GetCartProduct", mock.Anything, "u1").Return([]repo.CartProduct{}, nil)

	_, err := f.uc.PlaceOrder(context.Background(), "u1", validPlaceOrderInput())
	assertErrContains(t, err, "cart empty")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_CreatesOrderAndClearsCart(t *testing.T) {
	f := newOrderFixture()
	lines := []repo.CartProduct{cartLine("p1", "10.00", 2), cartLine("p2", "2.50", 1)}
	f.carts.On("LockByUserID", mock.Anything, "u1").Return(lockedRows("u1", lines...), nil)
	f.carts.On("GetCartProduct", mock.Anything, "u1").Return(lines, nil)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.OrderID == "o-1" &&
			o.UserID == "u1" &&
			o.State == model.OrderStatePending &&
			o.Total.Equal(decimal.RequireFromString("22.50")) &&
			o.DiscountID == nil &&
			len(o.Details) == 2 &&
			o.Details[0].OrderID == "o-1" &&
			o.Details[0].Quantity == 2
	})).Return(model.Order{
		OrderID: "o-1",
		UserID:  "u1",
		State:   model.OrderStatePending,
		Total:   decimal.RequireFromString("22.50"),
		Details: []model.OrderDetail{
			{OrderID: "o-1", ProductID: "p1", Quantity: 2},
			{OrderID: "o-1", ProductID: "p2", Quantity: 1},
		},
	}, nil)
	f.carts.On("ClearByUserID", mock.Anything, "u1", []string{"p1", "p2"}).Return(nil)

	out, err := f.uc.PlaceOrder(context.Background(), "u1", validPlaceOrderInput())
	require.NoError(t, err)
	assert.Equal(t, "o-1", out.OrderID)
	assert.Equal(t, "PENDING", out.State)
	assert.Len(t, out.Items, 2)

	f.orders.AssertExpectations(t)
	f.carts.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_AppliesDiscount(t *testing.T) {
	f := newOrderFixture()
	line := cartLine("p1", "33.33", 1)
	f.carts.On("LockByUserID", mock.Anything, "u1").Return(lockedRows("u1", line), nil)
	f.carts.On("GetCartProduct", mock.Anything, "u1").Return([]repo.CartProduct{line}, nil)
	f.orders.On("FindDiscountByCode", mock.Anything, "SALE10").Return(model.Discount{DiscountID: "d1", Code: "SALE10", Rate: 10}, nil)

	var created model.Order
	f.orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(model.Order)
	}).Return(model.Order{OrderID: "o-1"}, nil)
	f.carts.On("ClearByUserID", mock.Anything, "u1", []string{"p1"}).Return(nil)

	in := validPlaceOrderInput()
	in.DiscountCode = "SALE10"

	_, err := f.uc.PlaceOrder(context.Background(), "u1", in)
	require.NoError(t, err)

	// 33.33 * 90 / 100 = 29.997 -> 30.00
	assert.True(t, decimal.RequireFromString("30.00").Equal(created.Total), "total=%s", created.Total)
	require.NotNil(t, created.DiscountID)
	assert.Equal(t, "d1", *created.DiscountID)
}

// ロックした時点の数量で注文し、ロック後に増えた行は消さない
func TestOrderUsecase_PlaceOrder_UsesLockedRows(t *testing.T) {
	f := newOrderFixture()
	f.carts.On("LockByUserID", mock.Anything, "u1").Return([]model.Cart{
		{UserID: "u1", ProductID: "p1", Quantity: 2},
	}, nil)
	f.carts.On("GetCartProduct", mock.Anything, "u1").Return([]repo.CartProduct{
		cartLine("p1", "10.00", 5),
		cartLine("p2", "1.00", 1),
	}, nil)

	var created model.Order
	f.orders.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(model.Order)
	}).Return(model.Order{OrderID: "o-1"}, nil)
	f.carts.On("ClearByUserID", mock.Anything, "u1", []string{"p1"}).Return(nil)

	_, err := f.uc.PlaceOrder(context.Background(), "u1", validPlaceOrderInput())
	require.NoError(t, err)

	require.Len(t, created.Details, 1)
	assert.Equal(t, "p1", created.Details[0].ProductID)
	assert.Equal(t, int64(2), created.Details[0].Quantity)
	assert.True(t, decimal.RequireFromString("20.00").Equal(created.Total))
	f.carts.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_UnknownDiscount(t *testing.T) {
	f := newOrderFixture()
	line := cartLine("p1", "1.00", 1)
	f.carts.On("LockByUserID", mock.Anything, "u1").Return(lockedRows("u1", line), nil)
	f.carts.On("GetCartProduct", mock.Anything, "u1").Return([]repo.CartProduct{line}, nil)
	f.orders.On("FindDiscountByCode", mock.Anything, "NOPE").Return(model.Discount{}, repo.ErrNotFound)

	in := validPlaceOrderInput()
	in.DiscountCode = "NOPE"

	_, err := f.uc.PlaceOrder(context.Background(), "u1", in)
	assertErrContains(t, err, "invalid discount code")
	f.carts.AssertNotCalled(t, "ClearByUserID", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_GetMyOrder_OtherUserIsNotFound(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{OrderID: "o-1", UserID: "someone"}, nil)

	_, err := f.uc.GetMyOrder(context.Background(), "u1", "o-1")
	assertErrContains(t, err, "not found")
}

func TestOrderUsecase_GetMyOrderLines(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("FindByID", mock.Anything, "o-1").Return(model.Order{OrderID: "o-1", UserID: "u1"}, nil)
	f.orders.On("GetAllByIDOrderByDescending", mock.Anything, "o-1").Return([]repo.OrderLineRow{
		{ID: 2, OrderID: "o-1", ProductID: "p2"},
		{ID: 1, OrderID: "o-1", ProductID: "p1"},
	}, nil)

	rows, err := f.uc.GetMyOrderLines(context.Background(), "u1", "o-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), rows[0].ID)
}

func TestOrderUsecase_ListMyOrders(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByUserID", mock.Anything, "u1").Return([]repo.UserOrderRow{{OrderID: "o-1", ItemCount: 3}}, nil)

	rows, err := f.uc.ListMyOrders(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rows[0].ItemCount)

	_, err = f.uc.ListMyOrders(context.Background(), "")
	assertErrContains(t, err, "unauthorized")
}
