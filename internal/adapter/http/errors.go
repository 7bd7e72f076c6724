package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	domain "github.com/ViduraMC/Bakery-App/internal/entity"
	"github.com/ViduraMC/Bakery-App/internal/logging"
	"github.com/ViduraMC/Bakery-App/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusFor maps use case errors to HTTP codes. notFound is the code for a
// missing resource, which differs between reads and writes.
func statusFor(err error, notFound int) int {
	switch {
	case errors.Is(err, usecase.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrOrderCommitFailed):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		return notFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrPaymentRejected),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrReservedUsername):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error, notFound int) {
	status := statusFor(err, notFound)
	_ = c.Error(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.From(c).Error("request failed", "err", err)
		// store details stay in the log
		msg = "internal server error"
		if errors.Is(err, domain.ErrOrderCommitFailed) {
			msg = domain.ErrOrderCommitFailed.Error()
		}
	}
	c.JSON(status, gin.H{"error": msg})
}

func writeBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
}

// bindMessage turns validator output into one readable line.
func bindMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return "invalid request body"
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "gt", "gte", "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), minOf(fe)))
		case "order_status":
			parts = append(parts, fmt.Sprintf("%s must be one of %s", fe.Field(), statusList()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s %s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.TrimSpace(strings.Join(parts, "; "))
}

func statusList() string {
	s := make([]string, len(domain.Statuses))
	for i, v := range domain.Statuses {
		s[i] = string(v)
	}
	return strings.Join(s, ", ")
}

func minOf(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fe.Param() + " exclusive"
	}
	return fe.Param()
}
