package repository

import (
	"context"

	"techshop/internal/domain/model"
	repo "techshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// 注文と明細を作成
func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) UpdateState(ctx context.Context, orderID string, state model.OrderState) (model.Order, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("state", state)

	if res.Error != nil {
		return model.Order{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Order{}, repo.ErrNotFound
	}
	return r.FindByID(ctx, orderID)
}

// 管理画面のテーブル用
func (r *OrderGormRepository) GetAll(ctx context.Context) ([]repo.OrderDataTableRow, error) {
	var rows []repo.OrderDataTableRow
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("order_id, user_id, name, phone, total, state, created_at").
		Order("created_at desc").
		Order("order_id desc").
		Scan(&rows).Error
	if err != nil {
		return []repo.OrderDataTableRow{}, err
	}
	return rows, nil
}

// 割引コード・率を付けて新しい順（割引なしの注文も含む）
func (r *OrderGormRepository) GetAllWithDiscountOrderByDescending(ctx context.Context) ([]repo.OrderWithDiscountRow, error) {
	var rows []repo.OrderWithDiscountRow
	err := r.db.WithContext(ctx).Table("orders").
		Select("orders.order_id, orders.user_id, orders.name, orders.total, orders.state, orders.created_at, " +
			"discounts.code AS discount_code, discounts.rate AS discount_rate").
		Joins("LEFT JOIN discounts ON discounts.discount_id = orders.discount_id").
		Order("orders.created_at desc").
		Order("orders.order_id desc").
		Scan(&rows).Error
	if err != nil {
		return []repo.OrderWithDiscountRow{}, err
	}
	return rows, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Where("order_id = ?", orderID).
		First(&o).Error
	if isNotFound(err) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 注文行だけロックし、明細は別クエリで読む
func (r *OrderGormRepository) FindByIDForUpdate(ctx context.Context, orderID string) (model.Order, error) {
	db := r.db.WithContext(ctx)

	var o model.Order
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&o).Error
	if isNotFound(err) {
		return model.Order{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}

	if err := db.Where("order_id = ?", orderID).Order("id asc").Find(&o.Details).Error; err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// 注文明細を商品名付きで新しい順
func (r *OrderGormRepository) GetAllByIDOrderByDescending(ctx context.Context, orderID string) ([]repo.OrderLineRow, error) {
	var rows []repo.OrderLineRow
	err := r.db.WithContext(ctx).Table("order_details").
		Select("order_details.id, order_details.order_id, order_details.product_id, " +
			"COALESCE(products.name, '') AS product_name, order_details.quantity, order_details.price, order_details.created_at").
		Joins("LEFT JOIN products ON products.product_id = order_details.product_id").
		Where("order_details.order_id = ?", orderID).
		Order("order_details.created_at desc").
		Order("order_details.id desc").
		Scan(&rows).Error
	if err != nil {
		return []repo.OrderLineRow{}, err
	}
	return rows, nil
}

// ユーザーの注文一覧（明細行数付き）
func (r *OrderGormRepository) GetByUserID(ctx context.Context, userID string) ([]repo.UserOrderRow, error) {
	var rows []repo.UserOrderRow
	err := r.db.WithContext(ctx).Table("orders").
		Select("orders.order_id, orders.state, orders.total, orders.created_at, COUNT(order_details.id) AS item_count").
		Joins("LEFT JOIN order_details ON order_details.order_id = orders.order_id").
		Where("orders.user_id = ?", userID).
		Group("orders.order_id").
		Order("orders.created_at desc").
		Order("orders.order_id desc").
		Scan(&rows).Error
	if err != nil {
		return []repo.UserOrderRow{}, err
	}
	return rows, nil
}

func (r *OrderGormRepository) FindDiscountByCode(ctx context.Context, code string) (model.Discount, error) {
	var d model.Discount
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&d).Error
	if isNotFound(err) {
		return model.Discount{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Discount{}, err
	}
	return d, nil
}
