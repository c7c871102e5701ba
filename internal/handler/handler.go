// Package handler holds the gin handlers for the three route groups plus the
// root and health endpoints. Handlers validate request shapes, delegate to a
// source.Provider, and map provider errors to the API's error shape, a JSON
// object with a single "detail" field.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"futubridge/internal/source"
)

// Gateway is the adapter surface the handlers drive directly: connectivity
// flags plus the reconnect lifecycle used by the account status and
// reconnect endpoints.
type Gateway interface {
	source.Flags
	Connect(ctx context.Context) bool
	Close()
	ActiveAccountID() string
}

func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// fail maps a provider error to its HTTP status. Unknown symbols and orders
// are 404, refused trading is 400, anything else is the gateway's failure
// text as a 500.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, source.ErrUnknownSymbol), errors.Is(err, source.ErrOrderNotFound):
		detail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, source.ErrTradingDisabled), errors.Is(err, source.ErrNoAccount):
		detail(c, http.StatusBadRequest, err.Error())
	default:
		detail(c, http.StatusInternalServerError, err.Error())
	}
}
