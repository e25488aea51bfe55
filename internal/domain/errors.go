package domain

import "errors"

var (
	// ErrInvalidQuantity возвращается при нулевом/отрицательном количестве в AddItem
	// или отрицательном количестве в UpdateQuantity.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrProductNotFound возвращается, если товар отсутствует в каталоге.
	ErrProductNotFound = errors.New("product not found")
	// ErrCartNotFound возвращается, если у пользователя нет корзины.
	ErrCartNotFound = errors.New("cart not found")
	// ErrItemNotFound возвращается, если позиция отсутствует в корзине.
	ErrItemNotFound = errors.New("item not found in cart")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken возвращается при регистрации на уже занятый e-mail.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials возвращается при неверной паре email/пароль.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrMissingToken — bearer-токен не передан.
	ErrMissingToken = errors.New("authorization token is missing")
	// ErrMalformedToken — заголовок авторизации структурно некорректен.
	ErrMalformedToken = errors.New("authorization token is malformed")
	// ErrInvalidOrExpiredToken — подпись или срок действия токена не прошли проверку.
	ErrInvalidOrExpiredToken = errors.New("authorization token is invalid or expired")
	// ErrForbidden — роль пользователя не входит в список разрешённых.
	ErrForbidden = errors.New("role is not allowed to access this resource")

	// Ошибка отсутствующего названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// Ошибка неположительной цены товара.
	ErrProductPriceInvalid = errors.New("product price must be positive")
	// Ошибка отсутствующей категории товара.
	ErrProductCategoryRequired = errors.New("product category is required")
	// Ошибка отсутствующего имени пользователя.
	ErrUserNameRequired = errors.New("user name is required")
	// Ошибка некорректного e-mail.
	ErrEmailInvalid = errors.New("email format is invalid")
	// Ошибка слишком короткого пароля (минимум 6 символов).
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// Ошибка неподдерживаемого поля сортировки в фильтре корзины.
	ErrFilterSortField = errors.New("unsupported sort field")
	// Ошибка неподдерживаемого направления сортировки.
	ErrFilterSortOrder = errors.New("unsupported sort order")
	// Ошибка отрицательной границы цены/количества в фильтре.
	ErrFilterNegativeBound = errors.New("filter bounds must be non-negative")

	// ErrVersionConflict сигнализирует о конфликте версий при условном обновлении корзины.
	ErrVersionConflict = errors.New("cart version conflict")
	// ErrStoreUnavailable оборачивает любую ошибку нижележащего хранилища.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// WrapStore помечает ошибку хранилища категорией ErrStoreUnavailable,
// сохраняя исходную причину для логов.
func WrapStore(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrStoreUnavailable, err)
}

// IsNotFound проверяет, относится ли ошибка к категории "нечего делать".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsAuthFailure проверяет, требует ли ошибка повторной аутентификации.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrInvalidOrExpiredToken)
}
