package repository

import (
	"context"

	"techshop/internal/domain/model"
)

// カート行の絞り込み。空文字は条件なし
type CartFilter struct {
	UserID    string
	ProductID string
}

// カート1行分の表示用（商品＋カテゴリ＋仕入先＋画像）
// 複数該当する場合は先頭の1件だけ。無ければnil
type CartProduct struct {
	Product  model.Product   `json:"product"`
	Quantity int64           `json:"quantity"`
	Category *model.Category `json:"category"`
	Supplier *model.Supplier `json:"supplier"`
	Image    *model.Image    `json:"image"`
}

// カートの保存・取得と、それに伴う在庫(quantity_pr)の増減
type CartRepository interface {
	GetCart(ctx context.Context, filter CartFilter) ([]model.Cart, error)
	GetCartProduct(ctx context.Context, userID string) ([]CartProduct, error)

	// ユーザーのカート行を FOR UPDATE で取得（注文確定中の数量変更を待たせる）
	LockByUserID(ctx context.Context, userID string) ([]model.Cart, error)

	// 追加した数量だけ在庫を減らす（不足チェックはしない）
	Create(ctx context.Context, cart model.Cart) (model.Cart, error)

	// 数量0なら行を削除してnilを返す（在庫は戻さない）
	// それ以外は 在庫 + 旧数量 - 新数量 がマイナスなら ErrNegativeStock
	Update(ctx context.Context, cart model.Cart) (*model.Cart, error)

	// 削除した行の数量だけ在庫を戻す
	Delete(ctx context.Context, cart model.Cart) error

	// 注文確定後にカートを空にする（在庫はそのまま）
	// productIDs を渡した場合はその商品の行だけ消す
	ClearByUserID(ctx context.Context, userID string, productIDs ...string) error
}
