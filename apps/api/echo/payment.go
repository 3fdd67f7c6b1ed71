package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core/message"
	"github.com/durusapp/durus/core/payment"
	"github.com/durusapp/durus/core/user"
)

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	pg := g.Group("/payments", jwt)
	pg.GET("", queryPayments(deps.PaymentSvc))
	pg.GET("/:id", getPayment(deps.PaymentSvc))
	pg.POST("/:id/pay", registerPayment(deps), rolesRequired(user.RoleAccountant, user.RoleSecretary))
}

func queryPayments(svc payment.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		filter := new(payment.QueryFilter)
		if err := ctx.Bind(filter); err != nil {
			return err
		}
		payments, err := svc.Query(ctx.Request().Context(), filter)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, payments)
	}
}

func getPayment(svc payment.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			if errors.Cause(err) == payment.ErrNotFound {
				return errHttpNotFound
			}
			return err
		}
		return ctx.JSON(http.StatusOK, p)
	}
}

// registerPayment marks the payment as paid and texts the parent a
// confirmation. The confirmation is best effort; a dead SMS gateway never
// rolls back a registered payment.
func registerPayment(deps *Deps) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx := ctx.Request().Context()

		data := new(payment.PayInput)
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
		p, err := deps.PaymentSvc.RegisterPayment(reqCtx, ctx.Param("id"), *data, claims.Subject)
		if err != nil {
			switch errors.Cause(err) {
			case payment.ErrNotFound:
				return errHttpNotFound
			case payment.ErrAlreadyPaid:
				return echo.NewHTTPError(http.StatusConflict, err.Error())
			}
			return err
		}

		notifyPaymentParent(ctx, deps, p)
		return ctx.JSON(http.StatusOK, p)
	}
}

func notifyPaymentParent(ctx echo.Context, deps *Deps, p payment.Payment) {
	reqCtx := ctx.Request().Context()

	st, err := deps.StudentSvc.GetByID(reqCtx, p.StudentID)
	if err != nil || st.ParentPhone == "" {
		return
	}
	body := fmt.Sprintf("Payment of %.2f received for %s (%s). Invoice %s. Thank you.",
		p.Amount, st.Name, p.Month, p.InvoiceNumber)
	if err := deps.SMSSvc.Send(reqCtx, st.ParentPhone, body); err != nil {
		deps.Logger.Error(fmt.Sprintf("sending payment confirmation for payment %s", p.ID), err)
		return
	}
	_, err = deps.MessageSvc.RecordSent(reqCtx, message.Message{
		Recipients: []message.Recipient{{StudentID: st.ID, ParentPhone: st.ParentPhone}},
		Content:    body,
		Type:       message.TypePayment,
	})
	if err != nil {
		deps.Logger.Error(fmt.Sprintf("recording payment confirmation for payment %s", p.ID), err)
	}
}
