package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	activitydomain "github.com/smallbiznis/haccp/internal/activity/domain"
	auditdomain "github.com/smallbiznis/haccp/internal/audit/domain"
	authdomain "github.com/smallbiznis/haccp/internal/auth/domain"
	"github.com/smallbiznis/haccp/internal/authorization"
	cleaningdomain "github.com/smallbiznis/haccp/internal/cleaning/domain"
	cadomain "github.com/smallbiznis/haccp/internal/correctiveaction/domain"
	curingdomain "github.com/smallbiznis/haccp/internal/curing/domain"
	documentdomain "github.com/smallbiznis/haccp/internal/document/domain"
	haccpplandomain "github.com/smallbiznis/haccp/internal/haccpplan/domain"
	labtestdomain "github.com/smallbiznis/haccp/internal/labtest/domain"
	materialdomain "github.com/smallbiznis/haccp/internal/material/domain"
	pestcontroldomain "github.com/smallbiznis/haccp/internal/pestcontrol/domain"
	productdomain "github.com/smallbiznis/haccp/internal/product/domain"
	productiondomain "github.com/smallbiznis/haccp/internal/production/domain"
	receptiondomain "github.com/smallbiznis/haccp/internal/reception/domain"
	reportdomain "github.com/smallbiznis/haccp/internal/report/domain"
	temperaturedomain "github.com/smallbiznis/haccp/internal/temperature/domain"
	trainingdomain "github.com/smallbiznis/haccp/internal/training/domain"
	wastedomain "github.com/smallbiznis/haccp/internal/waste/domain"
	"github.com/smallbiznis/haccp/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

const internalErrorMessage = "wewnętrzny błąd serwera"

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrTooManyRequest = errors.New("too_many_requests")
)

var unauthorizedErrors = []error{
	ErrUnauthorized,
	authdomain.ErrInvalidCredentials,
	authdomain.ErrInvalidToken,
	authdomain.ErrUnauthenticated,
	authdomain.ErrInactiveUser,
}

var forbiddenErrors = []error{
	ErrForbidden,
	authorization.ErrForbidden,
	authorization.ErrInvalidActor,
}

var notFoundErrors = []error{
	ErrNotFound,
	gorm.ErrRecordNotFound,
	authdomain.ErrUserNotFound,
	auditdomain.ErrNotFound,
	cleaningdomain.ErrNotFound,
	cadomain.ErrNotFound,
	curingdomain.ErrNotFound,
	documentdomain.ErrNotFound,
	haccpplandomain.ErrNotFound,
	labtestdomain.ErrNotFound,
	materialdomain.ErrNotFound,
	pestcontroldomain.ErrNotFound,
	productdomain.ErrNotFound,
	productiondomain.ErrNotFound,
	receptiondomain.ErrNotFound,
	reportdomain.ErrNotFound,
	temperaturedomain.ErrNotFound,
	trainingdomain.ErrNotFound,
	wastedomain.ErrNotFound,
}

var conflictErrors = []error{
	ErrConflict,
	authdomain.ErrUserExists,
	auditdomain.ErrChecklistInUse,
	cleaningdomain.ErrAreaInUse,
	cadomain.ErrInvalidTransition,
	curingdomain.ErrInvalidTransition,
	curingdomain.ErrBatchNumberConflict,
	curingdomain.ErrBatchInUse,
	documentdomain.ErrDuplicateCode,
	haccpplandomain.ErrDuplicateCode,
	labtestdomain.ErrTypeInUse,
	materialdomain.ErrInsufficientStock,
	materialdomain.ErrMaterialInUse,
	materialdomain.ErrReceiptInUse,
	pestcontroldomain.ErrDuplicateCode,
	pestcontroldomain.ErrPointInUse,
	productdomain.ErrDuplicateCode,
	productdomain.ErrProductInUse,
	productiondomain.ErrInvalidTransition,
	productiondomain.ErrNotCompliant,
	productiondomain.ErrBatchNumberConflict,
	productiondomain.ErrBatchInUse,
	receptiondomain.ErrSupplierInUse,
	receptiondomain.ErrRawMaterialInUse,
	receptiondomain.ErrReceptionInUse,
	temperaturedomain.ErrPointInUse,
	wastedomain.ErrDuplicateCode,
	wastedomain.ErrTypeInUse,
	wastedomain.ErrCollectorInUse,
}

// validationErrors are domain sentinels that are not named invalid_*.
var validationErrors = []error{
	ErrInvalidRequest,
	authdomain.ErrWeakPassword,
	activitydomain.ErrInvalidPageToken,
	activitydomain.ErrInvalidTimeRange,
	cleaningdomain.ErrInactiveArea,
	labtestdomain.ErrInactiveType,
	pestcontroldomain.ErrInactivePoint,
	productiondomain.ErrInactiveProduct,
	temperaturedomain.ErrInactivePoint,
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: internalErrorMessage,
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isAny(err, unauthorizedErrors):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isAny(err, forbiddenErrors):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isAny(err, notFoundErrors):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isAny(err, conflictErrors), db.IsDuplicateKeyErr(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case errors.Is(err, ErrTooManyRequest),
		errors.Is(err, authdomain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case isValidationError(err):
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: internalErrorMessage,
		}
	}
}

// classifyErrorForLog feeds the request logger with the mapped type and code.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	if payload.Type == "internal_error" {
		return payload.Type, "internal_error"
	}
	return payload.Type, err.Error()
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// isValidationError accepts every domain sentinel following the invalid_*
// naming, plus the explicitly listed ones.
func isValidationError(err error) bool {
	if isAny(err, validationErrors) {
		return true
	}
	return strings.HasPrefix(unwrapAll(err).Error(), "invalid_")
}

func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func conflictMessage(err error) string {
	if db.IsDuplicateKeyErr(err) && !isAny(err, conflictErrors) {
		return "duplicate_key"
	}
	return unwrapAll(err).Error()
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return unwrapAll(err).Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "inactive_") {
		return strings.TrimPrefix(code, "inactive_") + "_id"
	}
	if code == authdomain.ErrWeakPassword.Error() {
		return "new_password"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch {
	case code == "invalid_request":
		return "invalid request"
	case strings.HasPrefix(code, "inactive_"):
		return "referenced record is inactive"
	default:
		return "invalid value"
	}
}
