package memory

import (
	"sort"
	"sync"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

// CartStore — in-memory хранилище корзин для локальной разработки и тестов.
// Реализует и CRUD-контракт, и агрегирующие запросы аналитики.
type CartStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart // ключ — owner_id, одна корзина на владельца
}

// NewCartStore создаёт пустое in-memory хранилище корзин.
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]domain.Cart)}
}

// FindByOwner возвращает копию корзины владельца или ErrCartNotFound.
func (s *CartStore) FindByOwner(ownerID string) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[ownerID]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	return copyCart(cart), nil
}

// Insert сохраняет новую корзину, если у владельца её ещё нет.
func (s *CartStore) Insert(cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.carts[cart.OwnerID]; exists {
		return domain.ErrVersionConflict
	}
	s.carts[cart.OwnerID] = copyCart(cart)
	return nil
}

// ReplaceItems перезаписывает позиции и итог с проверкой версии (optimistic locking).
func (s *CartStore) ReplaceItems(cart domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.carts[cart.OwnerID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if current.Version != cart.Version {
		return domain.ErrVersionConflict
	}
	cart.ID = current.ID
	cart.CreatedAt = current.CreatedAt
	cart.Version++
	s.carts[cart.OwnerID] = copyCart(cart)
	return nil
}

// UpdateTotal записывает сверенный итог, не трогая позиции и версию.
func (s *CartStore) UpdateTotal(ownerID string, totalMinor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[ownerID]
	if !ok {
		return domain.ErrCartNotFound
	}
	cart.TotalMinor = totalMinor
	s.carts[ownerID] = cart
	return nil
}

// DeleteByOwner удаляет корзину владельца.
func (s *CartStore) DeleteByOwner(ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[ownerID]; !ok {
		return domain.ErrCartNotFound
	}
	delete(s.carts, ownerID)
	return nil
}

// DeleteByID удаляет корзину по её идентификатору (админская операция).
func (s *CartStore) DeleteByID(cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for owner, cart := range s.carts {
		if cart.ID == cartID {
			delete(s.carts, owner)
			return nil
		}
	}
	return domain.ErrCartNotFound
}

// ActiveOwners возвращает отсортированный список владельцев корзин.
func (s *CartStore) ActiveOwners() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owners := make([]string, 0, len(s.carts))
	for owner := range s.carts {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners, nil
}

// ValueStats пересчитывает стоимость каждой корзины из позиций
// и агрегирует сумму, среднее и количество.
func (s *CartStore) ValueStats() (domain.CartValueStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.CartValueStats{}
	for _, cart := range s.carts {
		stats.TotalValueMinor += domain.ItemsTotalMinor(cart.Items)
		stats.CartCount++
	}
	if stats.CartCount > 0 {
		stats.AvgValueMinor = stats.TotalValueMinor / int64(stats.CartCount)
	}
	return stats, nil
}

// PopularItems группирует позиции всех корзин по товару и ранжирует:
// число корзин, затем суммарное количество, затем product_id для детерминизма.
func (s *CartStore) PopularItems(limit int) ([]domain.PopularItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byProduct := make(map[string]*domain.PopularItem)
	owners := make([]string, 0, len(s.carts))
	for owner := range s.carts {
		owners = append(owners, owner)
	}
	sort.Strings(owners)

	for _, owner := range owners {
		for _, item := range s.carts[owner].Items {
			entry, ok := byProduct[item.ProductID]
			if !ok {
				entry = &domain.PopularItem{ProductID: item.ProductID, Name: item.Name}
				byProduct[item.ProductID] = entry
			}
			entry.InCarts++
			entry.TotalQuantity += int64(item.Quantity)
			entry.TotalRevenueMinor += item.UnitPriceMinor * int64(item.Quantity)
		}
	}

	result := make([]domain.PopularItem, 0, len(byProduct))
	for _, entry := range byProduct {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].InCarts != result[j].InCarts {
			return result[i].InCarts > result[j].InCarts
		}
		if result[i].TotalQuantity != result[j].TotalQuantity {
			return result[i].TotalQuantity > result[j].TotalQuantity
		}
		return result[i].ProductID < result[j].ProductID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// TopSpenders возвращает владельцев по убыванию пересчитанной суммы корзины.
func (s *CartStore) TopSpenders(limit int) ([]domain.Spender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Spender, 0, len(s.carts))
	for owner, cart := range s.carts {
		result = append(result, domain.Spender{
			OwnerID:         owner,
			TotalSpentMinor: domain.ItemsTotalMinor(cart.Items),
			ItemCount:       len(cart.Items),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalSpentMinor != result[j].TotalSpentMinor {
			return result[i].TotalSpentMinor > result[j].TotalSpentMinor
		}
		return result[i].OwnerID < result[j].OwnerID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ListWithOwners возвращает сводку по всем корзинам; владельцы подставляются сервисом.
func (s *CartStore) ListWithOwners() ([]domain.CartOwnerSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.CartOwnerSummary, 0, len(s.carts))
	for owner, cart := range s.carts {
		result = append(result, domain.CartOwnerSummary{
			CartID:     cart.ID,
			OwnerID:    owner,
			TotalMinor: cart.TotalMinor,
			ItemCount:  len(cart.Items),
			UpdatedAt:  cart.UpdatedAt,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OwnerID < result[j].OwnerID
	})
	return result, nil
}

// copyCart копирует корзину вместе со слайсом позиций,
// чтобы избежать непредсказуемых мутаций извне.
func copyCart(cart domain.Cart) domain.Cart {
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	return cart
}

var (
	_ domain.CartRepository          = (*CartStore)(nil)
	_ domain.CartAnalyticsRepository = (*CartStore)(nil)
)
