// Package handler contains the gin controllers of the HTTP API.
package handler

import (
	"errors"
	"io"
	"net/http"

	"contenthub/internal/service"
	"contenthub/pkg/log"

	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": message, "data": data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": message, "data": nil})
}

// statusOf maps a service error kind to its HTTP status.
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes err in the standard envelope. Storage errors are
// logged and reported without their cause.
func respondError(c *gin.Context, op string, err error) {
	status := statusOf(service.KindOf(err))
	body := gin.H{"code": status, "message": err.Error(), "data": nil}

	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		if svcErr.Message != "" {
			body["message"] = svcErr.Message
		}
		if len(svcErr.Fields) > 0 {
			body["errors"] = svcErr.Fields
		}
	}
	if status == http.StatusInternalServerError {
		log.Errorf("%s: %v", op, err)
		if svcErr == nil {
			body["message"] = "internal server error"
		}
	} else {
		log.Warnf("%s: %v", op, err)
	}
	c.JSON(status, body)
}

// bindOptionalJSON binds the request body into req. An empty body leaves
// req at its zero value.
func bindOptionalJSON(c *gin.Context, op string, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		log.Warnf("%s: invalid request payload, error: %v", op, err)
		badRequest(c, "invalid request payload")
		return false
	}
	return true
}

// bindJSON binds a required JSON body and answers 400 on failure.
func bindJSON(c *gin.Context, op string, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Warnf("%s: invalid request payload, error: %v", op, err)
		badRequest(c, "invalid request payload")
		return false
	}
	return true
}
