package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/user"
)

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc user.ServiceInterface) {
	g.POST("/login", login(svc))
	g.POST("/token-refresh", refreshToken(svc), jwt)
	g.POST("/password-change", changePassword(svc), jwt)
	g.GET("/me", currentUser(svc), jwt)

	ug := g.Group("/users", jwt, adminRequired)
	ug.GET("", queryUsers(svc))
	ug.POST("", createUser(svc))
	ug.GET("/:id", getUser(svc))
	ug.PUT("/:id", updateUser(svc))
	ug.DELETE("/:id", deleteUser(svc))
}

func currentUser(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := getContextUser(ctx, svc, ctx.Request().Context())
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, usr)
	}
}

func changePassword(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(user.ChangePassword)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(); err != nil {
			return err
		}

		usr, err := getContextUser(ctx, svc, ctx.Request().Context())
		if err != nil {
			return err
		}
		if err := usr.CheckPassword(data.OldPassword); err != nil {
			return errAuthenticationFailed
		}
		if _, err := svc.SetPassword(ctx.Request().Context(), usr, data.Password); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}

func queryUsers(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		filter := new(user.QueryFilter)
		if err := ctx.Bind(filter); err != nil {
			return err
		}
		users, err := svc.Filter(ctx.Request().Context(), *filter)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, users)
	}
}

func createUser(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(user.NewUser)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(); err != nil {
			return err
		}
		usr, err := svc.Create(ctx.Request().Context(), *data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, usr)
	}
}

func getUser(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		return ctx.JSON(http.StatusOK, usr)
	}
}

func updateUser(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(user.UpdateUser)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(); err != nil {
			return err
		}
		usr, err := svc.Update(ctx.Request().Context(), ctx.Param("id"), *data)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		return ctx.JSON(http.StatusOK, usr)
	}
}

func deleteUser(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}
