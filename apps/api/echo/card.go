package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/card"
	"github.com/durusapp/durus/core/user"
)

func registerCardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc card.ServiceInterface) {
	cg := g.Group("/cards", jwt)
	cg.GET("", queryCards(svc))
	cg.GET("/:uid", getCard(svc))

	write := rolesRequired(user.RoleSecretary)
	cg.POST("", createCard(svc), write)
	cg.DELETE("/:id", deleteCard(svc), write)
}

func queryCards(svc card.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cards, err := svc.QueryAll(ctx.Request().Context())
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, cards)
	}
}

func getCard(svc card.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		c, err := svc.GetByUID(ctx.Request().Context(), ctx.Param("uid"))
		if err != nil {
			if errors.Cause(err) == card.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		return ctx.JSON(http.StatusOK, c)
	}
}

func createCard(svc card.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(card.NewCard)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(svc); err != nil {
			return err
		}
		c, err := svc.Create(ctx.Request().Context(), *data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, c)
	}
}

func deleteCard(svc card.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}
