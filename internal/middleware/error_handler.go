package middleware

import (
	"net/http"
	"strings"

	"threadmarket/pkg/apperror"
	"threadmarket/pkg/logger"

	jsonres "threadmarket/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler maps service errors onto HTTP responses. Wire it as
// e.HTTPErrorHandler so handlers can simply return errors.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if he, ok := err.(*echo.HTTPError); ok {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		_ = c.JSON(he.Code, jsonres.Error(codeFor(he.Code), msg, nil))
		return
	}

	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	if kind == apperror.KindInternal {
		logger.Error("unhandled error",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	_ = c.JSON(status, jsonres.Error(codeFor(status), apperror.MessageOf(err), nil))
}

func codeFor(status int) string {
	return strings.ReplaceAll(strings.ToUpper(http.StatusText(status)), " ", "_")
}
