package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/durusapp/durus/core/message"
	"github.com/durusapp/durus/core/user"
)

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc message.ServiceInterface) {
	mg := g.Group("/messages", jwt)
	mg.GET("", queryMessages(svc))
	mg.POST("", sendMessage(svc), rolesRequired(user.RoleSecretary))
}

func queryMessages(svc message.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		filter := new(message.QueryFilter)
		if err := ctx.Bind(filter); err != nil {
			return err
		}
		messages, err := svc.Query(ctx.Request().Context(), filter)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, messages)
	}
}

type sendMessageResponse struct {
	Message message.Message     `json:"message"`
	Failed  []message.Recipient `json:"failed,omitempty"`
}

func sendMessage(svc message.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(message.SendMessage)
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
		m, failed, err := svc.Send(ctx.Request().Context(), *data, claims.Subject)
		if err != nil {
			return err
		}

		// partial delivery failures still record the message
		code := http.StatusCreated
		if len(failed) > 0 {
			code = http.StatusMultiStatus
		}
		return ctx.JSON(code, sendMessageResponse{Message: m, Failed: failed})
	}
}
