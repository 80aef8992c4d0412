package repository

import (
	"context"
	"time"

	"techshop/internal/domain/model"
	repo "techshop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// carts JOIN products の1行
type cartProductRow struct {
	ProductID       string
	Name            string
	NameSerial      string
	Detail          string
	Price           decimal.Decimal
	QuantityPr      int64
	GuaranteePeriod int
	SupplierID      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CartQuantity    int64
}

type productCategoryRow struct {
	ProductID    string
	CategoryID   string
	CategoryName string
}

// カート行を条件で取得
func (r *CartGormRepository) GetCart(ctx context.Context, filter repo.CartFilter) ([]model.Cart, error) {
	q := r.db.WithContext(ctx).Model(&model.Cart{})

	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}

	var carts []model.Cart
	if err := q.Order("created_at asc").Order("product_id asc").Find(&carts).Error; err != nil {
		return []model.Cart{}, err
	}
	return carts, nil
}

// ユーザーのカートを商品・カテゴリ・仕入先・画像付きで返す
func (r *CartGormRepository) GetCartProduct(ctx context.Context, userID string) ([]repo.CartProduct, error) {
	db := r.db.WithContext(ctx)

	var rows []cartProductRow
	err := db.Table("carts").
		Select("products.product_id, products.name, products.name_serial, products.detail, products.price, " +
			"products.quantity_pr, products.guarantee_period, products.supplier_id, " +
			"products.created_at, products.updated_at, carts.quantity AS cart_quantity").
		Joins("JOIN products ON products.product_id = carts.product_id").
		Where("carts.user_id = ?", userID).
		Order("carts.created_at asc").
		Order("carts.product_id asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.CartProduct{}, err
	}
	if len(rows) == 0 {
		return []repo.CartProduct{}, nil
	}

	productIDs := make([]string, 0, len(rows))
	supplierIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		productIDs = append(productIDs, row.ProductID)
		if row.SupplierID != "" {
			supplierIDs = append(supplierIDs, row.SupplierID)
		}
	}

	//カテゴリ（商品ごとに category_id が一番小さいもの）
	var catRows []productCategoryRow
	err = db.Table("product_categories").
		Select("product_categories.product_id, categories.category_id, categories.category_name").
		Joins("JOIN categories ON categories.category_id = product_categories.category_id").
		Where("product_categories.product_id IN ?", productIDs).
		Order("product_categories.product_id asc").
		Order("categories.category_id asc").
		Scan(&catRows).Error
	if err != nil {
		return []repo.CartProduct{}, err
	}
	categories := make(map[string]*model.Category, len(catRows))
	for _, c := range catRows {
		if _, ok := categories[c.ProductID]; ok {
			continue
		}
		categories[c.ProductID] = &model.Category{CategoryID: c.CategoryID, CategoryName: c.CategoryName}
	}

	//仕入先
	suppliers := make(map[string]*model.Supplier)
	if len(supplierIDs) > 0 {
		var list []model.Supplier
		if err := db.Where("supplier_id IN ?", supplierIDs).Find(&list).Error; err != nil {
			return []repo.CartProduct{}, err
		}
		for i := range list {
			suppliers[list[i].SupplierID] = &list[i]
		}
	}

	//画像（商品ごとに一番古いもの）
	var imgs []model.Image
	err = db.Where("product_id IN ?", productIDs).
		Order("created_at asc").
		Order("image_id asc").
		Find(&imgs).Error
	if err != nil {
		return []repo.CartProduct{}, err
	}
	images := make(map[string]*model.Image, len(imgs))
	for i := range imgs {
		if _, ok := images[imgs[i].ProductID]; ok {
			continue
		}
		images[imgs[i].ProductID] = &imgs[i]
	}

	out := make([]repo.CartProduct, 0, len(rows))
	for _, row := range rows {
		out = append(out, repo.CartProduct{
			Product: model.Product{
				ProductID:       row.ProductID,
				Name:            row.Name,
				NameSerial:      row.NameSerial,
				Detail:          row.Detail,
				Price:           row.Price,
				Stock:           row.QuantityPr,
				GuaranteePeriod: row.GuaranteePeriod,
				SupplierID:      row.SupplierID,
				CreatedAt:       row.CreatedAt,
				UpdatedAt:       row.UpdatedAt,
			},
			Quantity: row.CartQuantity,
			Category: categories[row.ProductID],
			Supplier: suppliers[row.SupplierID],
			Image:    images[row.ProductID],
		})
	}
	return out, nil
}

// カート行を作成し、その数量だけ在庫を減らす
func (r *CartGormRepository) Create(ctx context.Context, cart model.Cart) (model.Cart, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&cart).Error; err != nil {
			return err
		}

		//在庫不足でもそのまま減らす（マイナス可）
		return NewInventoryGormRepository(tx).AdjustStock(ctx, cart.ProductID, -cart.Quantity)
	})
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// 数量変更。0なら削除
func (r *CartGormRepository) Update(ctx context.Context, cart model.Cart) (*model.Cart, error) {
	if cart.Quantity < 0 {
		return nil, repo.ErrInvalidQuantity
	}

	if cart.Quantity == 0 {
		//行だけ削除。在庫は戻さない（戻す場合はDeleteを使う）
		res := r.db.WithContext(ctx).
			Where("user_id = ? AND product_id = ?", cart.UserID, cart.ProductID).
			Delete(&model.Cart{})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, repo.ErrNotFound
		}
		return nil, nil
	}

	var updated model.Cart
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findCartForUpdate(tx, cart.UserID, cart.ProductID)
		if err != nil {
			return err
		}

		var p model.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ?", cart.ProductID).
			First(&p).Error; err != nil {
			if isNotFound(err) {
				return repo.ErrNotFound
			}
			return err
		}

		// 在庫 + 旧数量 - 新数量
		newStock := p.Stock + current.Quantity - cart.Quantity
		if newStock < 0 {
			return repo.ErrNegativeStock
		}

		res := tx.Model(&model.Cart{}).
			Where("user_id = ? AND product_id = ?", cart.UserID, cart.ProductID).
			Update("quantity", cart.Quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		if err := NewInventoryGormRepository(tx).SetStock(ctx, cart.ProductID, newStock); err != nil {
			return err
		}

		return tx.Where("user_id = ? AND product_id = ?", cart.UserID, cart.ProductID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// カート行を削除し、保存されていた数量だけ在庫を戻す
func (r *CartGormRepository) Delete(ctx context.Context, cart model.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := findCartForUpdate(tx, cart.UserID, cart.ProductID)
		if err != nil {
			return err
		}

		if err := NewInventoryGormRepository(tx).AdjustStock(ctx, current.ProductID, current.Quantity); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND product_id = ?", current.UserID, current.ProductID).
			Delete(&model.Cart{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// ユーザーのカート行をロックして取得
func (r *CartGormRepository) LockByUserID(ctx context.Context, userID string) ([]model.Cart, error) {
	var carts []model.Cart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("created_at asc").
		Order("product_id asc").
		Find(&carts).Error
	if err != nil {
		return []model.Cart{}, err
	}
	return carts, nil
}

// ユーザーのカートを削除（在庫は戻さない）
func (r *CartGormRepository) ClearByUserID(ctx context.Context, userID string, productIDs ...string) error {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if len(productIDs) > 0 {
		q = q.Where("product_id IN ?", productIDs)
	}
	return q.Delete(&model.Cart{}).Error
}

// 行ロック付きでカート行を取得
func findCartForUpdate(tx *gorm.DB, userID, productID string) (model.Cart, error) {
	var c model.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&c).Error
	if isNotFound(err) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return c, nil
}
