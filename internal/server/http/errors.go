package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/and161185/pocketfile/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
}

// clientErrors maps sentinels to statuses in precedence order.
var clientErrors = []struct {
	err    error
	status int
}{
	{errs.ErrValidation, http.StatusBadRequest},
	{errs.ErrAlreadyExists, http.StatusConflict},
	{errs.ErrUnauthorized, http.StatusUnauthorized},
	{errs.ErrForbidden, http.StatusForbidden},
	{errs.ErrNotFound, http.StatusNotFound},
	{errs.ErrTooLarge, http.StatusRequestEntityTooLarge},
	{errs.ErrRateLimited, http.StatusTooManyRequests},
}

// fail writes err as a JSON error and aborts the chain. Unknown errors are
// logged and answered with a generic 500.
func (s *Server) fail(c *gin.Context, err error) {
	for _, ce := range clientErrors {
		if errors.Is(err, ce.err) {
			c.AbortWithStatusJSON(ce.status, errorBody{Error: clientMessage(err, ce.err)})
			return
		}
	}
	s.log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
}

// clientMessage drops the sentinel prefix added by fmt.Errorf("%w: reason").
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if reason, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return reason
	}
	return msg
}
