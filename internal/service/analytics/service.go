package analytics

import (
	"context"
	"errors"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/metrics"
)

// topLimit — размер рейтингов популярных товаров и покупателей.
const topLimit = 10

// Report — сводка по всем корзинам для административной панели.
type Report struct {
	ActiveUserCount int
	ActiveUserIDs   []string
	CartStatistics  domain.CartValueStats
	PopularItems    []domain.PopularItem
	TopUsers        []TopUser
}

// TopUser — строка рейтинга покупателей, соединённая с данными пользователя.
type TopUser struct {
	UserID          string
	Name            string
	Email           string
	TotalSpentMinor int64
	ItemCount       int
}

// Service агрегирует статистику по корзинам и обслуживает админский список корзин.
type Service interface {
	// ComputeAnalytics считает сводку. Только чтение, данные не мутируются.
	ComputeAnalytics(ctx context.Context) (Report, error)
	// ListCarts возвращает все корзины с данными владельцев;
	// корзины удалённых пользователей остаются в списке.
	ListCarts(ctx context.Context) ([]domain.CartOwnerSummary, error)
	// DeleteCart удаляет корзину по её идентификатору.
	DeleteCart(ctx context.Context, cartID string) error
}

type service struct {
	carts   domain.CartAnalyticsRepository
	cartOps domain.CartRepository
	users   domain.UserRepository
	catalog domain.ProductRepository
	logger  *log.Entry
	metrics *metrics.CartMetrics
}

// NewService создаёт агрегатор аналитики.
func NewService(
	carts domain.CartAnalyticsRepository,
	cartOps domain.CartRepository,
	users domain.UserRepository,
	catalog domain.ProductRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "analytics")
	}
	return &service{
		carts:   carts,
		cartOps: cartOps,
		users:   users,
		catalog: catalog,
		logger:  logger,
		metrics: metrics.NewCartMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт агрегатор без метрик (для тестов).
func NewServiceWithoutMetrics(
	carts domain.CartAnalyticsRepository,
	cartOps domain.CartRepository,
	users domain.UserRepository,
	catalog domain.ProductRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "analytics")
	}
	return &service{
		carts:   carts,
		cartOps: cartOps,
		users:   users,
		catalog: catalog,
		logger:  logger,
	}
}

func (s *service) ComputeAnalytics(ctx context.Context) (Report, error) {
	start := time.Now()

	owners, err := s.carts.ActiveOwners()
	if err != nil {
		return Report{}, err
	}
	sort.Strings(owners)

	stats, err := s.carts.ValueStats()
	if err != nil {
		return Report{}, err
	}

	popular, err := s.carts.PopularItems(topLimit)
	if err != nil {
		return Report{}, err
	}
	s.resolveCategories(popular)

	topUsers, err := s.topUsers()
	if err != nil {
		return Report{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordAnalyticsDuration(time.Since(start))
		s.metrics.SetActiveCarts(stats.CartCount)
	}

	return Report{
		ActiveUserCount: len(owners),
		ActiveUserIDs:   owners,
		CartStatistics:  stats,
		PopularItems:    popular,
		TopUsers:        topUsers,
	}, nil
}

// resolveCategories подставляет актуальную категорию из каталога.
// Товар мог быть удалён: категория тогда остаётся пустой, рейтинг не падает.
func (s *service) resolveCategories(items []domain.PopularItem) {
	for i := range items {
		product, err := s.catalog.FindByID(items[i].ProductID)
		if err != nil {
			if !errors.Is(err, domain.ErrProductNotFound) {
				s.logger.WithError(err).WithField("product_id", items[i].ProductID).
					Warn("catalog lookup failed while resolving category")
			}
			continue
		}
		items[i].Category = product.Category
	}
}

// topUsers соединяет рейтинг трат с пользователями. Inner-join: корзина
// удалённого пользователя пропускается, но не ломает агрегацию.
func (s *service) topUsers() ([]TopUser, error) {
	// Запрашиваем без лимита: владельцы без записи пользователя выбывают,
	// и первых topLimit валидных может не оказаться в голове списка.
	spenders, err := s.carts.TopSpenders(0)
	if err != nil {
		return nil, err
	}

	result := make([]TopUser, 0, topLimit)
	for _, spender := range spenders {
		if len(result) >= topLimit {
			break
		}
		user, err := s.users.FindByID(spender.OwnerID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, TopUser{
			UserID:          user.ID,
			Name:            user.Name,
			Email:           user.Email,
			TotalSpentMinor: spender.TotalSpentMinor,
			ItemCount:       spender.ItemCount,
		})
	}
	return result, nil
}

func (s *service) ListCarts(ctx context.Context) ([]domain.CartOwnerSummary, error) {
	summaries, err := s.carts.ListWithOwners()
	if err != nil {
		return nil, err
	}

	// Left-join с пользователями: у корзины удалённого пользователя
	// поля владельца остаются пустыми.
	for i := range summaries {
		user, err := s.users.FindByID(summaries[i].OwnerID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		summaries[i].OwnerName = user.Name
		summaries[i].OwnerEmail = user.Email
	}
	return summaries, nil
}

func (s *service) DeleteCart(ctx context.Context, cartID string) error {
	if err := s.cartOps.DeleteByID(cartID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.RecordCartOperation("admin_delete")
	}
	return nil
}
