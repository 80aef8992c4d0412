package server

import (
	"net/http"

	"techshop/internal/config"
	"techshop/internal/handler"
	"techshop/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Handlers struct {
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, logger *log.Entry, h Handlers) {
	auth := middleware.AuthJWT(cfg, logger)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, handler.SuccessResponse{Message: "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, auth)
	h.Order.RegisterRoutes(e, auth)

	admin := e.Group("/admin")
	admin.Use(auth)
	admin.Use(middleware.AdminRoleGuard())

	h.AdminOrder.RegisterRoutes(admin)
	h.AdminProduct.RegisterRoutes(admin)
}
