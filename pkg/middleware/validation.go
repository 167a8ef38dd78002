package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/lead-forensics/pkg/common"
	"github.com/richxcame/lead-forensics/pkg/validation"
)

// RespondWithValidationError sends a 400 in the common response envelope,
// with per-field messages when they are available.
func RespondWithValidationError(c *gin.Context, err error) {
	var valErr *validation.ValidationError
	if errors.As(err, &valErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    http.StatusBadRequest,
				"message": "validation failed",
				"fields":  valErr.Errors,
			},
		})
		return
	}
	common.ErrorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// ValidateAndBind returns false after writing the error response when req is invalid
func ValidateAndBind(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		err = validation.ValidateStruct(req)
	}
	if err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// MaxBodySize limits the request body size. Handlers see a read error once the
// limit is exceeded.
func MaxBodySize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error": gin.H{
					"code":    http.StatusRequestEntityTooLarge,
					"message": "request body too large",
				},
			})
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
