package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/classroom"
	"github.com/durusapp/durus/core/user"
)

func registerClassroomAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc classroom.ServiceInterface) {
	cg := g.Group("/classrooms", jwt)
	cg.GET("", queryClassrooms(svc))
	cg.GET("/:id", getClassroom(svc))
	cg.POST("", createClassroom(svc), rolesRequired(user.RoleSecretary))
}

func queryClassrooms(svc classroom.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		classrooms, err := svc.QueryAll(ctx.Request().Context())
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, classrooms)
	}
}

func getClassroom(svc classroom.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		c, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == classroom.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		return ctx.JSON(http.StatusOK, c)
	}
}

func createClassroom(svc classroom.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(classroom.NewClassroom)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(); err != nil {
			return err
		}
		c, err := svc.Create(ctx.Request().Context(), *data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, c)
	}
}
