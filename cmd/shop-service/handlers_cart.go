package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/cart"
	"github.com/MikeMC777/shop-service/internal/httpx"
)

func callerID(c *gin.Context) (string, bool) {
	p, ok := httpx.PrincipalFrom(c)
	if !ok {
		httpx.Abort(c, apperr.ErrAuthentication)
		return "", false
	}
	return p.UserID, true
}

func cartView(entries []cart.Entry) cart.View {
	if entries == nil {
		entries = []cart.Entry{}
	}
	return cart.View{Items: entries}
}

// getCartHandler godoc
// @Summary   Show my cart
// @Tags      cart
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  cart.View
// @Failure   401  {object}  httpx.ErrorBody
// @Router    /cart [get]
func getCartHandler(carts cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := callerID(c)
		if !ok {
			return
		}
		entries, err := carts.Get(c.Request.Context(), uid)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, cartView(entries))
	}
}

// addToCartHandler godoc
// @Summary      Add to my cart
// @Description  Adds quantity to the product's entry, creating it if needed.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      cart.AddRequest  true  "entry"
// @Success      200   {object}  cart.View
// @Failure      400   {object}  httpx.ErrorBody
// @Failure      503   {object}  httpx.ErrorBody
// @Router       /cart [post]
func addToCartHandler(carts cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := callerID(c)
		if !ok {
			return
		}
		var in cart.AddRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Abort(c, err)
			return
		}
		entries, err := carts.Add(c.Request.Context(), uid, in.ProductID, in.Quantity)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, cartView(entries))
	}
}

// removeFromCartHandler godoc
// @Summary   Remove a product from my cart
// @Tags      cart
// @Produce   json
// @Security  BearerAuth
// @Param     productId  path      string  true  "product id"
// @Success   200        {object}  cart.View
// @Router    /cart/{productId} [delete]
func removeFromCartHandler(carts cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := callerID(c)
		if !ok {
			return
		}
		entries, err := carts.Remove(c.Request.Context(), uid, c.Param("productId"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, cartView(entries))
	}
}
