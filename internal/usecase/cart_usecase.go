package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"techshop/internal/domain/model"
	"techshop/internal/metrics"
	repo "techshop/internal/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

// CartUsecase は /cart の業務ロジックです。
// 在庫(quantity_pr)の増減はCartRepository側で行います。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	metrics     *metrics.ShopMetrics
	currency    currency.Unit
	logger      *log.Entry
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
	m *metrics.ShopMetrics,
	cur currency.Unit,
	logger *log.Entry,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		metrics:     m,
		currency:    cur,
		logger:      logger.WithField("usecase", "cart"),
	}
}

type CartItemResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Category  *model.Category `json:"category"`
	Supplier  *model.Supplier `json:"supplier"`
	ImageURL  string          `json:"image_url"`
}

type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Total    decimal.Decimal    `json:"total"`
	Currency string             `json:"currency"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart はカート取得（空なら空のitems）。
func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, userID)
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, dbError(u.logger, "find product", err)
	}

	existing, err := u.cartRepo.GetCart(ctx, repo.CartFilter{UserID: userID, ProductID: productID})
	if err != nil {
		return CartResponse{}, dbError(u.logger, "get cart", err)
	}

	if len(existing) == 0 {
		// 新規（在庫はこの時点の残りで判定）
		if in.Quantity > p.Stock {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}
		if _, err := u.cartRepo.Create(ctx, model.Cart{
			UserID:    userID,
			ProductID: productID,
			Quantity:  in.Quantity,
		}); err != nil {
			return CartResponse{}, u.mapCartWriteError("create cart", err)
		}
		u.metrics.RecordCartOperation(metrics.CartOpAdd)
	} else {
		// 既存ありだったら数量を増やす
		newQty := existing[0].Quantity + in.Quantity
		if _, err := u.cartRepo.Update(ctx, model.Cart{
			UserID:    userID,
			ProductID: productID,
			Quantity:  newQty,
		}); err != nil {
			return CartResponse{}, u.mapCartWriteError("add to cart", err)
		}
		u.metrics.RecordCartOperation(metrics.CartOpUpdate)
	}
	u.metrics.RecordStockDelta(-in.Quantity)

	return u.buildCartResponse(ctx, userID)
}

// 数量変更。0は削除扱い（在庫も戻す）
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID string, productID string, in UpdateCartItemInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(productID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	if in.Quantity == 0 {
		return u.DeleteCartItem(ctx, userID, productID)
	}

	existing, err := u.cartRepo.GetCart(ctx, repo.CartFilter{UserID: userID, ProductID: productID})
	if err != nil {
		return CartResponse{}, dbError(u.logger, "get cart", err)
	}
	if len(existing) == 0 {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if _, err := u.cartRepo.Update(ctx, model.Cart{
		UserID:    userID,
		ProductID: productID,
		Quantity:  in.Quantity,
	}); err != nil {
		return CartResponse{}, u.mapCartWriteError("update cart", err)
	}
	u.metrics.RecordCartOperation(metrics.CartOpUpdate)
	u.metrics.RecordStockDelta(existing[0].Quantity - in.Quantity)

	return u.buildCartResponse(ctx, userID)
}

// 明細削除
func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID string, productID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(productID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	existing, err := u.cartRepo.GetCart(ctx, repo.CartFilter{UserID: userID, ProductID: productID})
	if err != nil {
		return CartResponse{}, dbError(u.logger, "get cart", err)
	}
	if len(existing) == 0 {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartRepo.Delete(ctx, existing[0]); err != nil {
		return CartResponse{}, u.mapCartWriteError("delete cart", err)
	}
	u.metrics.RecordCartOperation(metrics.CartOpRemove)
	u.metrics.RecordStockDelta(existing[0].Quantity)

	return u.buildCartResponse(ctx, userID)
}

func (u *CartUsecase) mapCartWriteError(op string, err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrNegativeStock):
		return NewHTTPError(http.StatusBadRequest, "stock exceeded")
	case errors.Is(err, repo.ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	return dbError(u.logger, op, err)
}

// カートの表示用レスポンスを作る。
func (u *CartUsecase) buildCartResponse(ctx context.Context, userID string) (CartResponse, error) {
	lines, err := u.cartRepo.GetCartProduct(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError(u.logger, "get cart product", err)
	}

	items := make([]CartItemResponse, 0, len(lines))
	total := decimal.Zero

	for _, l := range lines {
		subtotal := l.Product.Price.Mul(decimal.NewFromInt(l.Quantity))

		item := CartItemResponse{
			ProductID: l.Product.ProductID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			Quantity:  l.Quantity,
			Subtotal:  subtotal,
			Category:  l.Category,
			Supplier:  l.Supplier,
		}
		if l.Image != nil {
			item.ImageURL = l.Image.URL
		}
		items = append(items, item)

		total = total.Add(subtotal)
	}

	return CartResponse{Items: items, Total: total, Currency: u.currency.String()}, nil
}
