package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

// errorResponse — единый формат тела ошибки.
type errorResponse struct {
	Error string `json:"error"`
}

// statusForError переводит доменную ошибку в HTTP-код.
// Неопознанные ошибки считаются внутренними.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrFilterSortField),
		errors.Is(err, domain.ErrFilterSortOrder),
		errors.Is(err, domain.ErrFilterNegativeBound),
		errors.Is(err, domain.ErrUserNameRequired),
		errors.Is(err, domain.ErrEmailInvalid),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrProductNameRequired),
		errors.Is(err, domain.ErrProductPriceInvalid),
		errors.Is(err, domain.ErrProductCategoryRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrMalformedToken),
		errors.Is(err, domain.ErrInvalidOrExpiredToken),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrCartNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет доменную ошибку с подходящим статусом.
// Детали внутренних ошибок наружу не уходят.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, errorResponse{Error: "internal error"})
		return
	}
	if status == http.StatusServiceUnavailable {
		c.JSON(status, errorResponse{Error: domain.ErrStoreUnavailable.Error()})
		return
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

// respondBadRequest пишет 400 с переданным текстом, минуя доменную таблицу.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: message})
}
