package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/student"
	"github.com/durusapp/durus/core/user"
)

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	cg := g.Group("/classes", jwt)
	cg.GET("", queryClasses(deps.ClassSvc))
	cg.GET("/:id", getClass(deps.ClassSvc))

	write := rolesRequired(user.RoleSecretary)
	cg.POST("", createClass(deps.ClassSvc), write)
	cg.PUT("/:id", updateClass(deps.ClassSvc), write)
	cg.DELETE("/:id", deleteClass(deps), write)
	cg.POST("/:id/students/:studentID", enrollStudent(deps), write)
	cg.DELETE("/:id/students/:studentID", unenrollStudent(deps), write)
}

func queryClasses(svc class.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		filter := new(class.QueryFilter)
		if err := ctx.Bind(filter); err != nil {
			return err
		}
		classes, err := svc.Query(ctx.Request().Context(), filter)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, classes)
	}
}

func getClass(svc class.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		c, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == class.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		return ctx.JSON(http.StatusOK, c)
	}
}

func createClass(svc class.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(class.NewClass)
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

func updateClass(svc class.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		orig, err := svc.GetByID(reqCtx, ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == class.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}

		data := new(class.UpdateClass)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(orig); err != nil {
			return err
		}
		c, err := svc.Update(reqCtx, orig.ID, *data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, c)
	}
}

// deleteClass removes the class along with its payment history and
// attendance entries. Enrollment links go with it.
func deleteClass(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		id := ctx.Param("id")

		cls, err := deps.ClassSvc.GetByID(reqCtx, id)
		if err != nil {
			if errors.Cause(err) == class.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}

		if err := deps.PaymentSvc.DeleteByClass(reqCtx, cls.ID); err != nil {
			return err
		}
		if err := deps.AttendanceSvc.DeleteByClass(reqCtx, cls.ID); err != nil {
			return err
		}
		for _, studentID := range cls.StudentIDs {
			if err := deps.ClassSvc.RemoveStudent(reqCtx, cls.ID, studentID); err != nil {
				return err
			}
		}
		if err := deps.ClassSvc.Delete(reqCtx, cls.ID); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}

// enrollStudent links the student to the class and bills every month from
// their registration through the billing horizon. Re-enrolling only fills
// gaps in the schedule.
func enrollStudent(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()

		cls, err := deps.ClassSvc.GetByID(reqCtx, ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == class.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		st, err := deps.StudentSvc.GetByID(reqCtx, ctx.Param("studentID"))
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}

		if !st.IsEnrolledIn(cls.ID) {
			if err := deps.ClassSvc.AddStudent(reqCtx, cls.ID, st.ID); err != nil {
				return err
			}
		}

		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}
		payments, err := deps.PaymentSvc.GenerateSchedule(reqCtx, st, cls, time.Now(), claims.Subject)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, payments)
	}
}

// unenrollStudent unlinks the student and drops their open payments for
// the class; paid payments stay on record.
func unenrollStudent(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		classID, studentID := ctx.Param("id"), ctx.Param("studentID")

		if err := deps.ClassSvc.RemoveStudent(reqCtx, classID, studentID); err != nil {
			return err
		}
		if err := deps.PaymentSvc.DeleteOpen(reqCtx, studentID, classID); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}
