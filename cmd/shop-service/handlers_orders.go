package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/auth"
	"github.com/MikeMC777/shop-service/internal/checkout"
	"github.com/MikeMC777/shop-service/internal/httpx"
	"github.com/MikeMC777/shop-service/internal/order"
)

// checkoutHandler godoc
// @Summary      Check out my cart
// @Description  Prices the cart at current catalog prices, records the order and empties the cart.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  order.Order
// @Failure      400  {object}  httpx.ErrorBody  "cart is empty"
// @Failure      500  {object}  httpx.ErrorBody
// @Failure      503  {object}  httpx.ErrorBody
// @Router       /checkout [post]
func checkoutHandler(svc *checkout.Service, m *httpx.ServerMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := callerID(c)
		if !ok {
			return
		}
		o, err := svc.Checkout(c.Request.Context(), uid)
		switch {
		case errors.Is(err, apperr.ErrEmptyCart):
			m.Checkouts.WithLabelValues("empty").Inc()
		case err != nil:
			m.Checkouts.WithLabelValues("failed").Inc()
		default:
			m.Checkouts.WithLabelValues("placed").Inc()
		}
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

// listOrdersHandler godoc
// @Summary   List my orders
// @Tags      orders
// @Produce   json
// @Security  BearerAuth
// @Param     limit   query     int  false  "page size (default 20, max 100)"
// @Param     offset  query     int  false  "offset"
// @Success   200     {object}  order.ListResponse
// @Router    /orders [get]
func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := callerID(c)
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		offset, _ := strconv.Atoi(c.Query("offset"))
		limit, offset = order.ClampPage(limit, offset)
		items, err := repo.ListByUser(c.Request.Context(), uid, limit, offset)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		if items == nil {
			items = []order.Order{}
		}
		c.JSON(http.StatusOK, order.ListResponse{Limit: limit, Offset: offset, Items: items})
	}
}

// getOrderHandler godoc
// @Summary      Get an order
// @Description  Customers see their own orders only; admins see any.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "order id"
// @Success      200  {object}  order.Order
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /orders/{id} [get]
func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := httpx.PrincipalFrom(c)
		if !ok {
			httpx.Abort(c, apperr.ErrAuthentication)
			return
		}
		o, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		// someone else's order is reported as missing
		if o.UserID != p.UserID && !p.Can(auth.CapViewAllOrders) {
			httpx.Abort(c, order.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
