package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/durusapp/durus/core/attendance"
	"github.com/durusapp/durus/core/user"
)

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.ServiceInterface) {
	ag := g.Group("/attendance", jwt)
	ag.GET("", queryAttendance(svc))
	ag.POST("", recordAttendance(svc), rolesRequired(user.RoleSecretary, user.RoleTeacher))
}

func queryAttendance(svc attendance.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		filter := new(attendance.QueryFilter)
		if err := ctx.Bind(filter); err != nil {
			return err
		}
		entries, err := svc.Query(ctx.Request().Context(), filter)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, entries)
	}
}

func recordAttendance(svc attendance.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(attendance.NewAttendance)
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
		a, err := svc.Record(ctx.Request().Context(), *data, claims.Subject)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, a)
	}
}
