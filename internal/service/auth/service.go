package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

// tokenTTL — срок действия выпускаемого токена.
const tokenTTL = 24 * time.Hour

// Identity — результат успешной проверки токена.
type Identity struct {
	UserID string
	Role   domain.Role
}

// Service выпускает и проверяет bearer-токены и решает вопрос доступа по ролям.
type Service interface {
	// IssueToken подписывает токен с идентификатором и ролью пользователя.
	IssueToken(user domain.User) (string, error)
	// Authenticate разбирает заголовок Authorization и возвращает личность
	// владельца токена. Отсутствие, структурная некорректность и невалидность
	// токена различаются отдельными ошибками.
	Authenticate(bearerHeader string) (Identity, error)
	// Authorize проверяет, что роль входит в список разрешённых.
	Authorize(identity Identity, allowed ...domain.Role) error
}

type service struct {
	secret []byte
	now    func() time.Time
	logger *log.Entry
}

// NewService создаёт сервис авторизации с заданным секретом подписи.
func NewService(secret string, logger *log.Entry) Service {
	if logger == nil {
		logger = log.New().WithField("component", "auth")
	}
	return &service{
		secret: []byte(secret),
		now:    time.Now,
		logger: logger,
	}
}

func (s *service) IssueToken(user domain.User) (string, error) {
	now := s.now()
	// Имена claim'ов сохранены для совместимости с уже выданными токенами.
	claims := jwt.MapClaims{
		"usuarioId": user.ID,
		"role":      string(user.Role),
		"nome":      user.Name,
		"iat":       now.Unix(),
		"exp":       now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (s *service) Authenticate(bearerHeader string) (Identity, error) {
	if strings.TrimSpace(bearerHeader) == "" {
		return Identity{}, domain.ErrMissingToken
	}

	parts := strings.Fields(bearerHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Identity{}, domain.ErrMalformedToken
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Identity{}, domain.ErrMalformedToken
		}
		s.logger.WithError(err).Debug("token verification failed")
		return Identity{}, domain.ErrInvalidOrExpiredToken
	}
	if !token.Valid {
		return Identity{}, domain.ErrInvalidOrExpiredToken
	}

	userID, _ := claims["usuarioId"].(string)
	if userID == "" {
		return Identity{}, domain.ErrInvalidOrExpiredToken
	}
	roleClaim, _ := claims["role"].(string)
	role := domain.Role(roleClaim)
	if !role.Valid() {
		return Identity{}, domain.ErrInvalidOrExpiredToken
	}

	return Identity{UserID: userID, Role: role}, nil
}

func (s *service) Authorize(identity Identity, allowed ...domain.Role) error {
	for _, role := range allowed {
		if identity.Role == role {
			return nil
		}
	}
	return domain.ErrForbidden
}
