package repository

import (
	"context"
	"strings"

	"techshop/internal/domain/model"
	repo "techshop/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 検索/カテゴリ/ソート/ページング付きで返す。
func (r *ProductGormRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	// q nameとname_serialを対象
	if strings.TrimSpace(q.Q) != "" {
		like := "%" + strings.TrimSpace(q.Q) + "%"
		tx = tx.Where("name ILIKE ? OR name_serial ILIKE ?", like, like)
	}

	if q.CategoryID != "" {
		tx = tx.Where("product_id IN (?)",
			r.db.Model(&model.ProductCategory{}).Select("product_id").Where("category_id = ?", q.CategoryID))
	}

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	//sort
	switch q.Sort {
	case "price_asc":
		tx = tx.Order("price asc").Order("product_id asc")
	case "price_desc":
		tx = tx.Order("price desc").Order("product_id desc")
	default:
		tx = tx.Order("created_at desc").Order("product_id desc")
	}

	offset := (q.Page - 1) * q.Limit
	if err := tx.Offset(offset).Limit(q.Limit).Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, productID string) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&p).Error
	if isNotFound(err) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品にカテゴリを紐づける（既にあれば何もしない）
func (r *ProductGormRepository) AttachCategory(ctx context.Context, productID string, categoryID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return repo.ErrNotFound
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.ProductCategory{ProductID: productID, CategoryID: categoryID}).Error
}

// 商品画像の追加
func (r *ProductGormRepository) AddImage(ctx context.Context, image model.Image) error {
	return r.db.WithContext(ctx).Create(&image).Error
}
