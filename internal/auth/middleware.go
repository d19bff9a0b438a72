package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	// HeaderAuthToken carries the raw token.
	HeaderAuthToken = "x-auth-token"

	tokenContextKey  = "auth_token"
	userIDContextKey = "auth_user_id"

	msgNoToken      = "No token, authorization denied"
	msgInvalidToken = "Token is not valid"
)

// Middleware verifies the caller's token and stores the caller's user id
// on the echo context, where UserID finds it.
func Middleware(secret string) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "header:" + HeaderAuthToken + ",header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if !hasToken(c.Request()) {
				return echo.NewHTTPError(http.StatusUnauthorized, msgNoToken).SetInternal(err)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken).SetInternal(err)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(attachUserID(next))
	}
}

func attachUserID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(tokenContextKey).(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
		}
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
		}
		userID, err := uuid.Parse(claims.User.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken).SetInternal(err)
		}
		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

// UserID returns the authenticated caller's id.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(userIDContextKey).(uuid.UUID)
	return id, ok
}

func hasToken(r *http.Request) bool {
	if strings.TrimSpace(r.Header.Get(HeaderAuthToken)) != "" {
		return true
	}
	return strings.TrimSpace(r.Header.Get(echo.HeaderAuthorization)) != ""
}
