package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"threadmarket/pkg/logger"
	"threadmarket/pkg/utils"

	jsonres "threadmarket/pkg/response"

	"github.com/labstack/echo/v4"
)

// TokenValidator checks that an issued token has not been revoked.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (string, error)
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}

	return tokenParts[1], nil
}

func setIdentity(c echo.Context, claims *utils.Claims, token string) error {
	userIDUint, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		logger.Error("invalid user id in token", err)
		return echo.NewHTTPError(http.StatusForbidden, "invalid user id in token")
	}

	c.Set("user_id", uint(userIDUint))
	c.Set("role", claims.Role)
	c.Set("token", token)

	return nil
}

// AuthMiddleware authenticates requests with a bare JWT, no revocation check.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				he := err.(*echo.HTTPError)
				return c.JSON(he.Code, jsonres.Error("UNAUTHORIZED", he.Message.(string), nil))
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "invalid token", nil,
				))
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || time.Now().After(expAt.Time) {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "token expired", nil,
				))
			}

			if err := setIdentity(c, claims, tokenString); err != nil {
				he := err.(*echo.HTTPError)
				return c.JSON(he.Code, jsonres.Error("FORBIDDEN", he.Message.(string), nil))
			}

			return next(c)
		}
	}
}

// AuthMiddlewareWithRedis additionally requires the token to still be live in
// the token store, so logout takes effect before JWT expiry.
func AuthMiddlewareWithRedis(tokenValidator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				he := err.(*echo.HTTPError)
				return c.JSON(he.Code, jsonres.Error("UNAUTHORIZED", he.Message.(string), nil))
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "invalid token", nil,
				))
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || time.Now().After(expAt.Time) {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "token expired", nil,
				))
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			userID, err := tokenValidator.ValidateToken(ctx, tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "token expired or invalid", nil,
				))
			}

			if userID != claims.UserID {
				logger.Error("user id mismatch between token and store")
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "invalid token", nil,
				))
			}

			if err := setIdentity(c, claims, tokenString); err != nil {
				he := err.(*echo.HTTPError)
				return c.JSON(he.Code, jsonres.Error("FORBIDDEN", he.Message.(string), nil))
			}

			return next(c)
		}
	}
}

// OptionalAuth sets the caller identity when a valid token is present and
// lets every request through either way. Public catalog routes use it so
// inactive products stay hidden from anonymous callers only.
func OptionalAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return next(c)
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				return next(c)
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || time.Now().After(expAt.Time) {
				return next(c)
			}

			_ = setIdentity(c, claims, tokenString)

			return next(c)
		}
	}
}

// RequireRoles allows only the listed roles past. It must run after one of
// the auth middlewares.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[strings.ToLower(role)] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, ok := c.Get("role").(string)
			if !ok || !allowed[strings.ToLower(roleStr)] {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "insufficient role", nil,
				))
			}

			return next(c)
		}
	}
}

// SelfOrAdmin lets admins through unconditionally and everyone else only when
// the :id path parameter matches their own user id.
func SelfOrAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			loggedInUserID, ok := c.Get("user_id").(uint)
			if !ok {
				return c.JSON(http.StatusUnauthorized, jsonres.Error(
					"UNAUTHORIZED", "user not authenticated", nil,
				))
			}

			roleStr, ok := c.Get("role").(string)
			if ok && roleStr == "admin" {
				return next(c)
			}

			requestedID, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, jsonres.Error(
					"BAD_REQUEST", "invalid user id", nil,
				))
			}

			if uint(requestedID) != loggedInUserID {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "you can only access your own data", nil,
				))
			}

			return next(c)
		}
	}
}
