package handler // package handler contains the HTTP handlers of the API

import (
    "errors"
    "log/slog"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/shopcart/internal/common"
)

// RespondError writes err as {"error": message} with the status derived
// from the common error taxonomy.
func RespondError(c echo.Context, err error) error {
    return c.JSON(common.HTTPStatus(err), echo.Map{"error": common.PublicMessage(err)})
}

// HTTPErrorHandler renders errors that escape the handlers, such as an
// unknown route or a method not allowed, in the same {"error"} shape.
func HTTPErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
    return func(err error, c echo.Context) {
        if c.Response().Committed {
            return
        }

        var he *echo.HTTPError
        if errors.As(err, &he) {
            msg, ok := he.Message.(string)
            if !ok || msg == "" {
                msg = http.StatusText(he.Code)
            }
            if he.Code >= http.StatusInternalServerError {
                log.Error("unhandled http error", "err", err, "path", c.Request().URL.Path)
                msg = common.ErrStorage.Error()
            }
            writeError(c, he.Code, msg)
            return
        }

        status := common.HTTPStatus(err)
        if status >= http.StatusInternalServerError {
            log.Error("unhandled error", "err", err, "path", c.Request().URL.Path)
        }
        writeError(c, status, common.PublicMessage(err))
    }
}

func writeError(c echo.Context, status int, msg string) {
    var err error
    if c.Request().Method == http.MethodHead {
        err = c.NoContent(status)
    } else {
        err = c.JSON(status, echo.Map{"error": msg})
    }
    if err != nil {
        c.Logger().Error(err)
    }
}
