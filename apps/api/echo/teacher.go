package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/teacher"
)

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	tg := g.Group("/teachers", jwt)
	tg.GET("", queryTeachers(deps.TeacherSvc))
	tg.GET("/:id", getTeacher(deps.TeacherSvc))

	tg.POST("", createTeacher(deps.TeacherSvc), adminRequired)
	tg.PUT("/:id", updateTeacher(deps.TeacherSvc), adminRequired)
	tg.DELETE("/:id", deleteTeacher(deps), adminRequired)
}

func queryTeachers(svc teacher.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		teachers, err := svc.QueryAll(ctx.Request().Context())
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, teachers)
	}
}

func getTeacher(svc teacher.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		t, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == teacher.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		return ctx.JSON(http.StatusOK, t)
	}
}

func createTeacher(svc teacher.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(teacher.NewTeacher)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(); err != nil {
			return err
		}
		t, err := svc.Create(ctx.Request().Context(), *data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, t)
	}
}

func updateTeacher(svc teacher.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		orig, err := svc.GetByID(reqCtx, ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == teacher.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}

		data := new(teacher.UpdateTeacher)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(orig); err != nil {
			return err
		}
		t, err := svc.Update(reqCtx, orig.ID, *data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, t)
	}
}

// deleteTeacher detaches the teacher from their classes before removal;
// the classes themselves are kept.
func deleteTeacher(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		id := ctx.Param("id")

		if _, err := deps.TeacherSvc.GetByID(reqCtx, id); err != nil {
			if errors.Cause(err) == teacher.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		if err := deps.ClassSvc.UnsetTeacher(reqCtx, id); err != nil {
			return err
		}
		if err := deps.TeacherSvc.Delete(reqCtx, id); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}
