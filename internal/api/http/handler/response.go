// Package handler implements the HTTP endpoints of the crosswalk and
// drift API
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/regtrace/regtrace/internal/app/dto"
	"github.com/regtrace/regtrace/pkg/errors"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, dto.Response{Success: true, Data: data})
}

// respondError maps AppError codes onto HTTP statuses; anything else is
// a 500 with a generic body so internals never leak.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var body dto.ErrorBody
	if appErr, ok := err.(*errors.AppError); ok {
		body = dto.ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}
	} else {
		body = dto.ErrorBody{
			Code:    "INTERNAL_ERROR",
			Message: "internal error",
		}
	}
	c.JSON(errors.GetHTTPStatus(err), dto.Response{Success: false, Error: &body})
}

func badRequest(c *gin.Context, err error) {
	respondError(c, errors.NewFromCode(errors.ErrInvalidRequest).WithCause(err))
}
