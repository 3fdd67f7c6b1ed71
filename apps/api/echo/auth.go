package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/user"
)

const (
	contextUserKey = "user"
	jwtContextKey  = "userToken"
)

var appJWTConfig = middleware.JWTConfig{
	Claims:        new(Claims),
	ContextKey:    jwtContextKey,
	SigningKey:    []byte(core.Conf.SecretKey),
	SigningMethod: middleware.AlgorithmHS256,
}

// wsJWTConfig authenticates websocket upgrades. Browsers cannot set an
// Authorization header on a websocket handshake, so the token rides in
// the query string.
var wsJWTConfig = middleware.JWTConfig{
	Claims:        new(Claims),
	ContextKey:    jwtContextKey,
	SigningKey:    []byte(core.Conf.SecretKey),
	SigningMethod: middleware.AlgorithmHS256,
	TokenLookup:   "query:token",
}

type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"orig_iat,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
}

// GetUserClaims builds fresh JWT claims for usr.
func GetUserClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   usr.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
		},
		OrigIssuedAt: now.Unix(),
		Username:     usr.Username,
		Email:        usr.Email,
		Role:         usr.Role,
		IsAdmin:      usr.IsAdmin(),
	}
}

func GenerateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(core.Conf.SecretKey))
	return signed, errors.Wrap(err, "signing token")
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	token, ok := ctx.Get(jwtContextKey).(*jwt.Token)
	if !ok {
		return Claims{}, errors.New("invalid user token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return Claims{}, errors.New("invalid token claims")
	}
	return *claims, nil
}

func getContextUser(ctx echo.Context, svc user.ServiceInterface, reqCtx ...context.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, err
	}
	_ctx := context.Background()
	if len(reqCtx) > 0 {
		_ctx = reqCtx[0]
	}
	usr, err := svc.GetByUsername(_ctx, claims.Username)
	if err != nil {
		return user.User{}, err
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func login(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		data := new(loginRequest)
		if err := ctx.Bind(data); err != nil {
			return err
		}
		if err := core.Validate.Struct(data); err != nil {
			return err
		}

		usr, err := svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
		if err != nil {
			return errAuthenticationFailed
		}

		token, err := GenerateToken(GetUserClaims(usr))
		if err != nil {
			return err
		}
		return ctx.JSON(200, tokenResponse{Token: token, User: usr})
	}
}

// refreshToken issues a new token as long as the original issue time is
// within the refresh window.
func refreshToken(svc user.ServiceInterface) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return err
		}

		origIat := time.Unix(claims.OrigIssuedAt, 0)
		if time.Since(origIat) > core.Conf.Server.JWTRefreshExpirationDelta {
			return errRefreshExpired
		}

		usr, err := getContextUser(ctx, svc, ctx.Request().Context())
		if err != nil {
			return err
		}
		if !usr.IsActive {
			return errAccountDeactivated
		}

		newClaims := GetUserClaims(usr)
		newClaims.OrigIssuedAt = claims.OrigIssuedAt
		token, err := GenerateToken(newClaims)
		if err != nil {
			return err
		}
		return ctx.JSON(200, tokenResponse{Token: token, User: usr})
	}
}
