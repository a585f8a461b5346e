package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/shop-service/internal/httpx"
	prod "github.com/MikeMC777/shop-service/internal/product"
)

// listProductsHandler godoc
// @Summary      List products
// @Description  Filters by case-insensitive name substring and exact category. Most expensive first.
// @Tags         products
// @Produce      json
// @Param        search    query     string  false  "name contains"
// @Param        category  query     string  false  "exact category"
// @Success      200       {object}  product.ListResponse
// @Failure      503       {object}  httpx.ErrorBody
// @Router       /products [get]
func listProductsHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := prod.Query{Search: c.Query("search"), Category: c.Query("category")}
		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		if items == nil {
			items = []prod.Product{}
		}
		c.JSON(http.StatusOK, prod.ListResponse{Search: q.Search, Category: q.Category, Items: items})
	}
}

// getProductHandler godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "product id"
// @Success      200  {object}  product.Product
// @Failure      404  {object}  httpx.ErrorBody
// @Router       /products/{id} [get]
func getProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// createProductHandler godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      product.CreateProductRequest  true  "product"
// @Success      201   {object}  product.Product
// @Failure      400   {object}  httpx.ErrorBody
// @Failure      401   {object}  httpx.ErrorBody
// @Failure      403   {object}  httpx.ErrorBody
// @Router       /products [post]
func createProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in prod.CreateProductRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Abort(c, err)
			return
		}
		if err := in.Validate(); err != nil {
			httpx.Abort(c, err)
			return
		}
		p := &prod.Product{
			ID:       uuid.NewString(),
			SKU:      strings.TrimSpace(in.SKU),
			Name:     strings.TrimSpace(in.Name),
			Price:    in.Price,
			Category: strings.TrimSpace(in.Category),
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// updateProductHandler godoc
// @Summary      Update a product
// @Description  Partial update: omitted fields keep their value.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                        true  "product id"
// @Param        body  body      product.UpdateProductRequest  true  "fields to change"
// @Success      200   {object}  product.Product
// @Failure      400   {object}  httpx.ErrorBody
// @Failure      403   {object}  httpx.ErrorBody
// @Failure      404   {object}  httpx.ErrorBody
// @Router       /products/{id} [put]
func updateProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in prod.UpdateProductRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Abort(c, err)
			return
		}
		patch, err := in.Patch()
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		p, err := repo.Update(c.Request.Context(), c.Param("id"), patch)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// deleteProductHandler godoc
// @Summary      Delete a product
// @Description  Idempotent: deleting a missing product also returns 204.
// @Tags         products
// @Security     BearerAuth
// @Param        id   path  string  true  "product id"
// @Success      204
// @Failure      403  {object}  httpx.ErrorBody
// @Router       /products/{id} [delete]
func deleteProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := repo.Delete(c.Request.Context(), c.Param("id")); err != nil {
			httpx.Abort(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
