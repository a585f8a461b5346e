package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/shop-service/docs"
	"github.com/MikeMC777/shop-service/internal/auth"
	"github.com/MikeMC777/shop-service/internal/cart"
	"github.com/MikeMC777/shop-service/internal/checkout"
	"github.com/MikeMC777/shop-service/internal/httpx"
	"github.com/MikeMC777/shop-service/internal/order"
	"github.com/MikeMC777/shop-service/internal/product"
	"github.com/MikeMC777/shop-service/internal/user"
)

type deps struct {
	log            *slog.Logger
	metrics        *httpx.ServerMetrics
	tokens         httpx.TokenVerifier
	users          *user.Service
	products       product.Repository
	orders         order.Repository
	carts          cart.Registry
	checkout       *checkout.Service
	requestTimeout time.Duration
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		httpx.RequestID(),
		httpx.Logger(d.log),
		d.metrics.Middleware(),
		httpx.Timeout(d.requestTimeout),
	)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(d.metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	a := r.Group("/auth")
	a.POST("/register", registerHandler(d.users))
	a.POST("/login", loginHandler(d.users))

	r.GET("/products", listProductsHandler(d.products))
	r.GET("/products/:id", getProductHandler(d.products))

	authed := r.Group("/", httpx.Authenticate(d.tokens))

	admin := authed.Group("/products", httpx.Require(auth.CapManageCatalog))
	admin.POST("", createProductHandler(d.products))
	admin.PUT("/:id", updateProductHandler(d.products))
	admin.DELETE("/:id", deleteProductHandler(d.products))

	shop := authed.Group("/", httpx.Require(auth.CapShop))
	shop.GET("/cart", getCartHandler(d.carts))
	shop.POST("/cart", addToCartHandler(d.carts))
	shop.DELETE("/cart/:productId", removeFromCartHandler(d.carts))
	shop.POST("/checkout", checkoutHandler(d.checkout, d.metrics))
	shop.GET("/orders", listOrdersHandler(d.orders))
	shop.GET("/orders/:id", getOrderHandler(d.orders))

	return r
}
