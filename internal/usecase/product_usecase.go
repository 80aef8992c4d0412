package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"techshop/internal/domain/model"
	repo "techshop/internal/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ProductUsecase struct {
	tx          repo.TransactionManager
	productRepo repo.ProductRepository
	idGen       IDGenerator
	clock       Clock
	logger      *log.Entry
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	idGen IDGenerator,
	clock Clock,
	logger *log.Entry,
) *ProductUsecase {
	return &ProductUsecase{
		tx:          tx,
		productRepo: productRepo,
		idGen:       idGen,
		clock:       clock,
		logger:      logger.WithField("usecase", "product"),
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	CategoryID string
	Sort       string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		CategoryID: strings.TrimSpace(in.CategoryID),
		Sort:       in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, dbError(u.logger, "list products", err)
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, dbError(u.logger, "find product", err)
	}
	return p, nil
}

type AdminCreateProductInput struct {
	Name            string
	NameSerial      string
	Detail          string
	Price           decimal.Decimal
	Stock           int64
	GuaranteePeriod int
	SupplierID      string
	CategoryIDs     []string
	ImageURLs       []string
}

// 商品・カテゴリ紐付け・画像をまとめて作成
func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID string, in AdminCreateProductInput) (model.Product, error) {
	if adminUserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price.IsNegative() {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if in.GuaranteePeriod < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "guarantee_period must be >= 0")
	}

	var created model.Product

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()
		p, err := r.Products().Create(ctx, model.Product{
			ProductID:       u.idGen.NewID(),
			Name:            name,
			NameSerial:      strings.TrimSpace(in.NameSerial),
			Detail:          in.Detail,
			Price:           in.Price.Round(2),
			Stock:           in.Stock,
			GuaranteePeriod: in.GuaranteePeriod,
			SupplierID:      strings.TrimSpace(in.SupplierID),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return dbError(u.logger, "create product", err)
		}

		for _, cid := range in.CategoryIDs {
			err := r.Products().AttachCategory(ctx, p.ProductID, strings.TrimSpace(cid))
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "invalid category")
			}
			if err != nil {
				return dbError(u.logger, "attach category", err)
			}
		}

		for _, url := range in.ImageURLs {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			if err := r.Products().AddImage(ctx, model.Image{
				ImageID:   u.idGen.NewID(),
				ProductID: p.ProductID,
				URL:       url,
				CreatedAt: now,
			}); err != nil {
				return dbError(u.logger, "add image", err)
			}
		}

		created = p
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	u.logger.WithFields(log.Fields{"product_id": created.ProductID, "actor": adminUserID}).Info("product created")
	return created, nil
}

// 在庫の現在値を更新して監査ログを残す
func (u *ProductUsecase) AdminUpdateStock(ctx context.Context, adminUserID string, productID string, newStock int64) error {
	if adminUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(productID) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(u.logger, "find product", err)
		}

		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return dbError(u.logger, "set stock", err)
		}

		//「誰が」「何を」「どの対象に」「どう変えたか」を残す
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   productID,
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.Stock),
			AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(u.logger, "create audit log", err)
		}
		return nil
	})
}
