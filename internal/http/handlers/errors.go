package handlers

import (
	"errors"
	"net/http"

	"nganya/internal/domain"
	"nganya/internal/http/middleware"
	"nganya/internal/utils"

	"github.com/gin-gonic/gin"
)

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		RespondError(c, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		RespondError(c, http.StatusNotFound, err.Error())
	case domain.IsAlreadyExists(err):
		RespondError(c, http.StatusConflict, err.Error())
	case domain.IsCredential(err):
		RespondError(c, http.StatusUnauthorized, err.Error())
	case domain.IsNotApproved(err):
		RespondError(c, http.StatusForbidden, err.Error())
	case domain.IsPersistence(err):
		utils.LogEvent(middleware.GetRequestID(c), "http", "persistence_error", detail(err))
		RespondError(c, http.StatusInternalServerError, err.Error())
	default:
		utils.LogEvent(middleware.GetRequestID(c), "http", "internal_error", err.Error())
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// detail returns the wrapped cause for the log line; the client only sees the
// safe message.
func detail(err error) string {
	var pe domain.PersistenceError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Msg + ": " + pe.Err.Error()
	}
	return err.Error()
}
