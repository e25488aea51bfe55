package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/metrics"
)

// bcryptCost — стоимость хеширования пароля при регистрации.
const bcryptCost = 10

// RegisterInput — данные формы регистрации.
type RegisterInput struct {
	Name     string
	Age      int
	Email    string
	Password string
}

// UpdateInput — изменяемые администратором поля учётной записи.
// Нулевые значения означают "не менять".
type UpdateInput struct {
	Name  string
	Age   int
	Email string
	Role  domain.Role
}

// Service управляет учётными записями: регистрация, вход и админ-операции.
type Service interface {
	// Register создаёт учётную запись с ролью user и хешем пароля.
	Register(ctx context.Context, input RegisterInput) (domain.User, error)
	// Login проверяет пару email/пароль и возвращает пользователя.
	// Неизвестный e-mail и неверный пароль неразличимы для вызывающего.
	Login(ctx context.Context, email, password string) (domain.User, error)
	// List возвращает всех пользователей в порядке создания.
	List(ctx context.Context) ([]domain.User, error)
	// Get возвращает пользователя по идентификатору.
	Get(ctx context.Context, id string) (domain.User, error)
	// Update изменяет поля учётной записи по UpdateInput.
	Update(ctx context.Context, id string, input UpdateInput) (domain.User, error)
	// Delete удаляет учётную запись.
	Delete(ctx context.Context, id string) error
}

type service struct {
	users   domain.UserRepository
	logger  *log.Entry
	metrics *metrics.CartMetrics
}

// NewService создаёт сервис пользователей.
func NewService(users domain.UserRepository, logger *log.Entry, m *metrics.CartMetrics) Service {
	if logger == nil {
		logger = log.New().WithField("component", "users")
	}
	return &service{
		users:   users,
		logger:  logger,
		metrics: m,
	}
}

// NewServiceWithoutMetrics — вариант для тестов и вспомогательных утилит.
func NewServiceWithoutMetrics(users domain.UserRepository, logger *log.Entry) Service {
	return NewService(users, logger, nil)
}

func (s *service) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if issues := domain.ValidateRegistration(input.Name, input.Email, input.Password); len(issues) > 0 {
		return domain.User{}, errors.Join(issues...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Age:          input.Age,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.Insert(user); err != nil {
		return domain.User{}, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	if s.metrics != nil {
		s.metrics.RecordCartOperation("register")
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")
	return user, nil
}

func (s *service) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List()
}

func (s *service) Get(ctx context.Context, id string) (domain.User, error) {
	return s.users.FindByID(id)
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (domain.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return domain.User{}, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Age != 0 {
		user.Age = input.Age
	}
	if input.Email != "" {
		if !domain.ValidEmail(input.Email) {
			return domain.User{}, domain.ErrEmailInvalid
		}
		user.Email = input.Email
	}
	if input.Role != "" {
		if !input.Role.Valid() {
			return domain.User{}, fmt.Errorf("unknown role %q", input.Role)
		}
		user.Role = input.Role
	}

	if err := s.users.Update(user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(id); err != nil {
		return err
	}
	s.logger.WithField("user_id", id).Info("user deleted")
	return nil
}
