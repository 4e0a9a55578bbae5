package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"art-assistant-backend/internal/apierror"
	"art-assistant-backend/internal/database"
	"art-assistant-backend/internal/middleware"
	"art-assistant-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// respondError writes the structured body for err. Details of server-side
// failures are logged, never returned.
func respondError(c *gin.Context, log logrus.FieldLogger, err error) {
	apiErr := classify(err)
	status := apiErr.Kind.Status()

	entry := middleware.Logger(c, log).WithField("kind", apiErr.Kind.Code())
	if apiErr.Cause != nil {
		entry = entry.WithError(apiErr.Cause)
	}
	if status >= http.StatusInternalServerError {
		entry.Error(apiErr.Message)
	} else {
		entry.Debug(apiErr.Message)
	}

	c.Error(err)
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:   apiErr.Kind.Code(),
		Message: apiErr.Message,
	})
}

// classify maps store sentinels onto API errors. Anything the store returns
// that is not a sentinel is a persistence failure.
func classify(err error) *apierror.Error {
	var apiErr *apierror.Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, database.ErrDuplicate):
		return apierror.Conflict("record already exists", err)
	case errors.Is(err, database.ErrInvalidReference):
		return apierror.New(apierror.KindValidation, "referenced record does not exist", err)
	case errors.Is(err, database.ErrNotFound):
		return apierror.New(apierror.KindNotFound, "record not found", err)
	default:
		return apierror.Persistence("database operation failed", err)
	}
}

// bindingError turns a gin binding failure into a validation error naming
// the offending fields by their JSON key.
func bindingError(err error) *apierror.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return apierror.New(apierror.KindValidation, "invalid fields: "+strings.Join(fields, ", "), err)
	}
	return apierror.New(apierror.KindValidation, "malformed request body", err)
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{
		Error:   "method_not_allowed",
		Message: c.Request.Method + " is not supported on " + c.Request.URL.Path,
	})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "no route for " + c.Request.URL.Path,
	})
}
