package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/durusapp/durus/core/ledger"
	"github.com/durusapp/durus/core/user"
)

func registerLedgerAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc ledger.ServiceInterface) {
	tg := g.Group("/transactions", jwt, rolesRequired(user.RoleAccountant))
	tg.GET("", queryTransactions(svc))
	tg.POST("", recordTransaction(svc))
	tg.GET("/report", financialReport(svc))
}

func queryTransactions(svc ledger.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		filter := new(ledger.QueryFilter)
		if err := ctx.Bind(filter); err != nil {
			return err
		}
		txns, err := svc.Query(ctx.Request().Context(), filter)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, txns)
	}
}

func recordTransaction(svc ledger.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(ledger.NewTransaction)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(); err != nil {
			return err
		}

		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		t, err := svc.Record(ctx.Request().Context(), *data, claims.Subject)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, t)
	}
}

func financialReport(svc ledger.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var year int
		if y := ctx.QueryParam("year"); y != "" {
			parsed, err := strconv.Atoi(y)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "year must be a number")
			}
			year = parsed
		}
		report, err := svc.Report(ctx.Request().Context(), year)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, report)
	}
}
