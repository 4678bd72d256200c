package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/entity"
)

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// writeError maps error kinds to HTTP statuses. 5xx details are logged, not returned.
func writeError(c *gin.Context, log domain.Logger, err error) {
	var (
		status  int
		message = err.Error()
	)

	switch {
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, entity.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
		message = "storage unavailable"
	default:
		status = http.StatusInternalServerError
		message = "internal error"
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"error", err,
		)
	}

	c.JSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pathID parses a uuid path parameter, answering 400 itself on failure.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// queryBool returns nil when the parameter is absent.
func queryBool(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, entity.Invalidf("%s must be a boolean", name)
	}
	return &v, nil
}

func queryFlag(c *gin.Context, name string) (bool, error) {
	v, err := queryBool(c, name)
	if err != nil || v == nil {
		return false, err
	}
	return *v, nil
}
