package token

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// AutoRefreshMiddleware requires a logged-in caller of any role.
func (t *TokenService) AutoRefreshMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return t.RequireRoles()(next)
}

// RequireRoles requires a logged-in caller whose role is among the given
// ones; with no roles listed, any authenticated role passes. Rotated
// cookies are set on the response before the handler runs.
func (t *TokenService) RequireRoles(roleNames ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roleNames))
	for _, r := range roleNames {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			newAccess, newRefresh, role, err := t.CheckCookie(c)
			if err != nil {
				return err
			}

			if len(allowed) > 0 {
				if _, ok := allowed[role]; !ok {
					return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
				}
			}

			if newRefresh != "" {
				c.SetCookie(CreateCookie("accessToken", newAccess, "/", time.Now().Add(accessTTL)))
				c.SetCookie(CreateCookie("refreshToken", newRefresh, "/", time.Now().Add(refreshTTL)))

				token, err := jwt.Parse(newAccess, func(j *jwt.Token) (interface{}, error) { return t.JWTSecret, nil })
				if err != nil {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				claims, ok := token.Claims.(jwt.MapClaims)
				if !ok {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				setUserContext(c, claims)
			}
			return next(c)
		}
	}
}
