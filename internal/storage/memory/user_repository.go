package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

// userRepositoryInMemory — in-memory коллекция пользователей.
type userRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.User
}

// NewUserRepository возвращает in-memory реализацию UserRepository.
func NewUserRepository() domain.UserRepository {
	return &userRepositoryInMemory{items: make(map[string]domain.User)}
}

// FindByID возвращает пользователя или ErrUserNotFound.
func (r *userRepositoryInMemory) FindByID(id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// FindByEmail ищет пользователя по e-mail без учёта регистра.
func (r *userRepositoryInMemory) FindByEmail(email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.items {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

// Insert сохраняет нового пользователя; e-mail должен быть свободен.
func (r *userRepositoryInMemory) Insert(user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}
	r.items[user.ID] = user
	return nil
}

// Update перезаписывает пользователя; ErrUserNotFound, если его нет.
func (r *userRepositoryInMemory) Update(user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.items[user.ID] = user
	return nil
}

// Delete удаляет пользователя. Корзина при этом не каскадируется —
// её судьба остаётся за вызывающей стороной.
func (r *userRepositoryInMemory) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.items, id)
	return nil
}

// List возвращает всех пользователей в порядке создания, затем по ID.
func (r *userRepositoryInMemory) List() ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.User, 0, len(r.items))
	for _, user := range r.items {
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
