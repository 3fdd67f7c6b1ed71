package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/student"
	"github.com/durusapp/durus/core/user"
)

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	sg := g.Group("/students", jwt)
	sg.GET("", queryStudents(deps.StudentSvc))
	sg.GET("/:id", getStudent(deps.StudentSvc))
	sg.GET("/:id/classes", getStudentClasses(deps))
	sg.GET("/:id/payments", getStudentOpenPayments(deps))

	write := rolesRequired(user.RoleSecretary)
	sg.POST("", createStudent(deps.StudentSvc), write)
	sg.PUT("/:id", updateStudent(deps.StudentSvc), write)
	sg.DELETE("/:id", deleteStudent(deps), write)
}

func queryStudents(svc student.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		filter := new(student.QueryFilter)
		if err := ctx.Bind(filter); err != nil {
			return err
		}
		students, err := svc.Query(ctx.Request().Context(), filter)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, students)
	}
}

func getStudent(svc student.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		st, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		return ctx.JSON(http.StatusOK, st)
	}
}

func getStudentClasses(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		classes, err := deps.ClassSvc.QueryByStudent(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, classes)
	}
}

func getStudentOpenPayments(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		payments, err := deps.PaymentSvc.QueryOpenByStudent(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, payments)
	}
}

func createStudent(svc student.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(student.NewStudent)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(svc); err != nil {
			return err
		}
		st, err := svc.Create(ctx.Request().Context(), *data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, st)
	}
}

func updateStudent(svc student.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		orig, err := svc.GetByID(reqCtx, ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}

		data := new(student.UpdateStudent)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := data.Validate(orig); err != nil {
			return err
		}
		st, err := svc.Update(reqCtx, orig.ID, *data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, st)
	}
}

// deleteStudent removes the student and everything hanging off them:
// payment history, cards and attendance entries.
func deleteStudent(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()
		id := ctx.Param("id")

		st, err := deps.StudentSvc.GetByID(reqCtx, id)
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}

		if err := deps.PaymentSvc.DeleteByStudent(reqCtx, st.ID); err != nil {
			return err
		}
		if err := deps.CardSvc.DeleteByStudent(reqCtx, st.ID); err != nil {
			return err
		}
		if err := deps.AttendanceSvc.DeleteByStudent(reqCtx, st.ID); err != nil {
			return err
		}
		for _, classID := range st.ClassIDs {
			if err := deps.ClassSvc.RemoveStudent(reqCtx, classID, st.ID); err != nil {
				return err
			}
		}
		if err := deps.StudentSvc.Delete(reqCtx, st.ID); err != nil {
			return err
		}
		return ctx.NoContent(http.StatusNoContent)
	}
}
