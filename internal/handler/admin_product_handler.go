package handler

import (
	"net/http"

	"techshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// ProductCreateRequest は商品登録の入力。price は "12.50" 形式の文字列か数値
type ProductCreateRequest struct {
	Name            string          `json:"name"`
	NameSerial      string          `json:"name_serial"`
	Detail          string          `json:"detail"`
	Price           decimal.Decimal `json:"price"`
	Stock           int64           `json:"quantity_pr"`
	GuaranteePeriod int             `json:"guarantee_period"`
	SupplierID      string          `json:"supplier_id"`
	CategoryIDs     []string        `json:"category_ids"`
	ImageURLs       []string        `json:"image_urls"`
}

// StockUpdateRequest は在庫更新の入力です。
type StockUpdateRequest struct {
	Stock int64 `json:"stock"`
}

type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// admin は AuthJWT + AdminRoleGuard 済みのグループ
func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id/stock", h.updateStock)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	p, err := h.uc.AdminCreateProduct(
		c.Request().Context(),
		adminID,
		usecase.AdminCreateProductInput{
			Name:            req.Name,
			NameSerial:      req.NameSerial,
			Detail:          req.Detail,
			Price:           req.Price,
			Stock:           req.Stock,
			GuaranteePeriod: req.GuaranteePeriod,
			SupplierID:      req.SupplierID,
			CategoryIDs:     req.CategoryIDs,
			ImageURLs:       req.ImageURLs,
		},
	)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateStock(c echo.Context) error {
	var req StockUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.AdminUpdateStock(c.Request().Context(), adminID, c.Param("id"), req.Stock); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}
