package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/shop-service/internal/httpx"
	"github.com/MikeMC777/shop-service/internal/user"
)

// registerHandler godoc
// @Summary      Register a user
// @Description  Creates a customer account. Emails are unique.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      user.RegisterRequest  true  "new account"
// @Success      201   {object}  user.User
// @Failure      400   {object}  httpx.ErrorBody
// @Router       /auth/register [post]
func registerHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.RegisterRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Abort(c, err)
			return
		}
		u, err := users.Register(c.Request.Context(), in)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, u)
	}
}

// loginHandler godoc
// @Summary      Log in
// @Description  Verifies credentials and returns a bearer token valid for one hour.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      user.LoginRequest  true  "credentials"
// @Success      200   {object}  user.LoginResponse
// @Failure      400   {object}  httpx.ErrorBody
// @Failure      401   {object}  httpx.ErrorBody
// @Router       /auth/login [post]
func loginHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in user.LoginRequest
		if err := httpx.BindJSON(c, &in); err != nil {
			httpx.Abort(c, err)
			return
		}
		resp, err := users.Login(c.Request.Context(), in)
		if err != nil {
			httpx.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
