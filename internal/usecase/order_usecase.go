package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"techshop/internal/domain/model"
	"techshop/internal/metrics"
	repo "techshop/internal/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type OrderUsecase struct {
	tx      repo.TransactionManager
	orders  repo.OrderRepository
	idGen   IDGenerator
	clock   Clock
	metrics *metrics.ShopMetrics
	logger  *log.Entry
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	idGen IDGenerator,
	clock Clock,
	m *metrics.ShopMetrics,
	logger *log.Entry,
) *OrderUsecase {
	return &OrderUsecase{
		tx:      tx,
		orders:  orders,
		idGen:   idGen,
		clock:   clock,
		metrics: m,
		logger:  logger.WithField("usecase", "order"),
	}
}

type PlaceOrderInput struct {
	Name         string
	Phone        string
	Email        string
	Address      string
	Note         string
	Payment      string
	DiscountCode string
}

type OrderItemOutput struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderOutput struct {
	OrderID    string            `json:"order_id"`
	UserID     string            `json:"user_id"`
	Name       string            `json:"name"`
	Phone      string            `json:"phone"`
	Email      string            `json:"email"`
	Address    string            `json:"address"`
	Note       string            `json:"note"`
	Payment    string            `json:"payment"`
	State      string            `json:"state"`
	Total      decimal.Decimal   `json:"total"`
	DiscountID *string           `json:"discount_id"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
}

// カートの中身から注文を作る。
// 在庫はカートに入れた時点で引かれているので、ここではカートを空にするだけ
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (OrderOutput, error) {
	if userID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)
	address := strings.TrimSpace(in.Address)
	payment := strings.TrimSpace(in.Payment)
	if name == "" || len(name) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if phone == "" || len(phone) > 30 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid phone")
	}
	if address == "" || len(address) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address")
	}
	if payment == "" || len(payment) > 50 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid payment")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//先にカート行をロック。確定までの数量変更・削除は待たせる
		locked, err := r.Carts().LockByUserID(ctx, userID)
		if err != nil {
			return dbError(u.logger, "lock cart", err)
		}
		lockedQty := make(map[string]int64, len(locked))
		for _, c := range locked {
			lockedQty[c.ProductID] = c.Quantity
		}

		all, err := r.Carts().GetCartProduct(ctx, userID)
		if err != nil {
			return dbError(u.logger, "get cart product", err)
		}
		//ロック後に追加された行は今回の注文に含めない
		lines := make([]repo.CartProduct, 0, len(all))
		productIDs := make([]string, 0, len(all))
		for _, l := range all {
			qty, ok := lockedQty[l.Product.ProductID]
			if !ok {
				continue
			}
			l.Quantity = qty
			lines = append(lines, l)
			productIDs = append(productIDs, l.Product.ProductID)
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//割引コード
		var discountID *string
		var rate int64
		if code := strings.TrimSpace(in.DiscountCode); code != "" {
			d, err := r.Orders().FindDiscountByCode(ctx, code)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid discount code")
			}
			if err != nil {
				return dbError(u.logger, "find discount", err)
			}
			discountID = &d.DiscountID
			rate = clampRate(d.Rate)
		}

		now := u.clock.Now()
		orderID := u.idGen.NewID()

		//明細（単価はこの時点の価格）
		details := make([]model.OrderDetail, 0, len(lines))
		subtotal := decimal.Zero
		for _, l := range lines {
			details = append(details, model.OrderDetail{
				OrderID:   orderID,
				ProductID: l.Product.ProductID,
				Quantity:  l.Quantity,
				Price:     l.Product.Price,
				CreatedAt: now,
			})
			subtotal = subtotal.Add(l.Product.Price.Mul(decimal.NewFromInt(l.Quantity)))
		}

		created, err := r.Orders().Create(ctx, model.Order{
			OrderID:    orderID,
			UserID:     userID,
			Name:       name,
			Phone:      phone,
			Email:      strings.TrimSpace(in.Email),
			Address:    address,
			Note:       in.Note,
			Payment:    payment,
			State:      model.OrderStatePending,
			Total:      applyDiscount(subtotal, rate),
			DiscountID: discountID,
			CreatedAt:  now,
			UpdatedAt:  now,
			Details:    details,
		})
		if err != nil {
			return dbError(u.logger, "create order", err)
		}

		if err := r.Carts().ClearByUserID(ctx, userID, productIDs...); err != nil {
			return dbError(u.logger, "clear cart", err)
		}

		out = toOrderOutput(created)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	u.metrics.RecordOrderPlaced()
	u.logger.WithFields(log.Fields{"order_id": out.OrderID, "user_id": userID}).Info("order placed")
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]repo.UserOrderRow, error) {
	if userID == "" {
		return []repo.UserOrderRow{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	rows, err := u.orders.GetByUserID(ctx, userID)
	if err != nil {
		return []repo.UserOrderRow{}, dbError(u.logger, "list orders by user", err)
	}
	return rows, nil
}

func (u *OrderUsecase) GetMyOrder(ctx context.Context, userID string, orderID string) (OrderOutput, error) {
	o, err := u.findOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return OrderOutput{}, err
	}
	return toOrderOutput(o), nil
}

// 注文明細を新しい順で返す
func (u *OrderUsecase) GetMyOrderLines(ctx context.Context, userID string, orderID string) ([]repo.OrderLineRow, error) {
	if _, err := u.findOwnedOrder(ctx, userID, orderID); err != nil {
		return []repo.OrderLineRow{}, err
	}

	rows, err := u.orders.GetAllByIDOrderByDescending(ctx, orderID)
	if err != nil {
		return []repo.OrderLineRow{}, dbError(u.logger, "list order lines", err)
	}
	return rows, nil
}

func (u *OrderUsecase) findOwnedOrder(ctx context.Context, userID string, orderID string) (model.Order, error) {
	if userID == "" {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(orderID) == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Order{}, dbError(u.logger, "find order", err)
	}
	//他人の注文は「存在しない扱い」にする
	if o.UserID != userID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return o, nil
}

func clampRate(rate int64) int64 {
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// 割引後の金額（小数2桁で丸め）
func applyDiscount(subtotal decimal.Decimal, rate int64) decimal.Decimal {
	if rate == 0 {
		return subtotal
	}
	return subtotal.
		Mul(decimal.NewFromInt(100 - rate)).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

func toOrderOutput(o model.Order) OrderOutput {
	items := make([]OrderItemOutput, 0, len(o.Details))
	for _, d := range o.Details {
		items = append(items, OrderItemOutput{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			Price:     d.Price,
		})
	}

	return OrderOutput{
		OrderID:    o.OrderID,
		UserID:     o.UserID,
		Name:       o.Name,
		Phone:      o.Phone,
		Email:      o.Email,
		Address:    o.Address,
		Note:       o.Note,
		Payment:    o.Payment,
		State:      string(o.State),
		Total:      o.Total,
		DiscountID: o.DiscountID,
		CreatedAt:  o.CreatedAt,
		Items:      items,
	}
}
