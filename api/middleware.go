package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"teambrains-board/planification"
)

const userIDContextKey = "board.user_id"

// BearerMiddleware validates the Authorization header once per request,
// exposes the acting user to handlers, and re-attaches the raw bearer token
// to the request context so outbound planification calls carry it through.
func BearerMiddleware(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			userID, err := auth.UserIDFromAuthHeader(header)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			}
			token, err := bearerTokenFromString(header)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: err.Error()})
			}

			c.Set(userIDContextKey, userID)
			req := c.Request()
			ctx := planification.WithToken(req.Context(), readOnlyString(token))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func actingUser(c echo.Context) string {
	userID, _ := c.Get(userIDContextKey).(string)
	return userID
}
