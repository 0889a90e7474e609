package middleware

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/yigit/agora/internal/app/models/dto"
	"github.com/yigit/agora/internal/pkg/apperrors"
	"github.com/yigit/agora/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// ordered: specific sentinels first, generic ones last
var errorMappings = []errorMapping{
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrAccountLocked, http.StatusLocked, dto.ErrorCodeAccountLocked, "Account is temporarily locked"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrLoginAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Login already exists"},
	{apperrors.ErrReportCardExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Report card already exists for this term"},
	{apperrors.ErrFeedbackAlreadyReleased, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Feedback already released for this site"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrAbsenceAlreadyJustified, http.StatusConflict, dto.ErrorCodeConflict, "Absence is already justified"},
	{apperrors.ErrRequestAlreadyDecided, http.StatusConflict, dto.ErrorCodeConflict, "Enrollment request has already been decided"},
	{apperrors.ErrConventionOverlap, http.StatusConflict, dto.ErrorCodeConflict, "Convention overlaps an existing one"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},
	{apperrors.ErrHasRelations, http.StatusConflict, dto.ErrorCodeHasRelations, "Resource has associated data and cannot be deleted"},
	{apperrors.ErrBannerLimitReached, http.StatusConflict, dto.ErrorCodeLimitReached, "Maximum number of banners reached"},

	{apperrors.ErrInvalidImage, http.StatusBadRequest, dto.ErrorCodeInvalidImage, "Invalid banner image"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Invalid password"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeResourceInvalid, "Bad request"},

	{apperrors.ErrServiceUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError, "Service temporarily unavailable"},
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ErrorDetailFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// ErrorDetailFor maps err to the HTTP status and error body returned to clients
func ErrorDetailFor(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}

		detail := dto.NewErrorDetail(m.code, m.message)
		if ce, ok := apperrors.AsCustom(err); ok {
			if ce.Message != "" && ce.Message != m.target.Error() {
				detail.Message = ce.Message
			}
			if len(ce.Details) > 0 {
				detail.WithDetails(fieldErrors(ce.Details))
			}
		}
		return m.status, detail
	}

	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
		WithSeverity(dto.ErrorSeverityCritical)
}

// fieldErrors lists details in a stable order
func fieldErrors(details map[string]interface{}) []dto.ErrorDetail {
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	list := make([]dto.ErrorDetail, 0, len(fields))
	for _, f := range fields {
		msg, ok := details[f].(string)
		if !ok {
			msg = "invalid value"
		}
		list = append(list, *dto.NewErrorDetail(dto.ErrorCodeValidationFailed, msg).WithField(f))
	}
	return list
}
