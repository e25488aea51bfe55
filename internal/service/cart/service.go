package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/messaging/kafka"
	"github.com/saraelainee/1023B-backend-novo/internal/metrics"
)

// catalogLookupLimit ограничивает параллелизм запросов к каталогу при сверке.
const catalogLookupLimit = 8

// Service описывает операции с корзиной одного владельца.
type Service interface {
	// AddItem добавляет товар в корзину, создавая её при первом добавлении.
	// Повторное добавление того же товара суммирует количество,
	// сохраняя цену первого добавления.
	AddItem(ctx context.Context, ownerID, productID string, quantity int32) (domain.Cart, error)
	// UpdateQuantity выставляет количество позиции; 0 удаляет позицию.
	UpdateQuantity(ctx context.Context, ownerID, productID string, quantity int32) (domain.Cart, error)
	// RemoveItem удаляет позицию; повторный вызов возвращает ErrItemNotFound.
	RemoveItem(ctx context.Context, ownerID, productID string) (domain.Cart, error)
	// Clear удаляет корзину целиком.
	Clear(ctx context.Context, ownerID string) error
	// View возвращает корзину, сверенную с каталогом, с применёнными фильтрами.
	View(ctx context.Context, ownerID string, filter domain.ItemFilter) (domain.ReconciledCart, error)
}

type service struct {
	carts   domain.CartRepository
	catalog domain.ProductRepository
	outbox  domain.OutboxRepository
	logger  *log.Entry
	metrics *metrics.CartMetrics
}

// NewService создаёт рабочий экземпляр движка корзины.
// outbox может быть nil — тогда события не публикуются.
func NewService(
	carts domain.CartRepository,
	catalog domain.ProductRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &service{
		carts:   carts,
		catalog: catalog,
		outbox:  outbox,
		logger:  logger,
		metrics: metrics.NewCartMetrics(),
	}
}

// NewServiceWithoutMetrics создаёт движок без метрик (для тестов).
func NewServiceWithoutMetrics(
	carts domain.CartRepository,
	catalog domain.ProductRepository,
	outbox domain.OutboxRepository,
	logger *log.Entry,
) Service {
	if logger == nil {
		logger = log.New().WithField("component", "cart")
	}
	return &service{
		carts:   carts,
		catalog: catalog,
		outbox:  outbox,
		logger:  logger,
	}
}

func (s *service) AddItem(ctx context.Context, ownerID, productID string, quantity int32) (domain.Cart, error) {
	if quantity <= 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}

	product, err := s.catalog.FindByID(productID)
	if err != nil {
		return domain.Cart{}, err
	}

	// Одна повторная попытка: две гонящиеся записи одного владельца
	// обе должны приземлиться.
	cart, err := s.addItemOnce(ownerID, product, quantity)
	if errors.Is(err, domain.ErrVersionConflict) {
		s.recordVersionConflict()
		cart, err = s.addItemOnce(ownerID, product, quantity)
	}
	if err != nil {
		return domain.Cart{}, err
	}

	s.recordOperation("add_item")
	s.publishEvent(kafka.EventTypeCartItemAdded, cart, productID, quantity)
	return cart, nil
}

// addItemOnce выполняет одну попытку мутации: либо создание корзины,
// либо условное обновление существующей.
func (s *service) addItemOnce(ownerID string, product domain.Product, quantity int32) (domain.Cart, error) {
	now := time.Now().UTC()

	cart, err := s.carts.FindByOwner(ownerID)
	switch {
	case errors.Is(err, domain.ErrCartNotFound):
		cart = domain.Cart{
			ID:      uuid.NewString(),
			OwnerID: ownerID,
			Items: []domain.CartItem{{
				ProductID:      product.ID,
				Name:           product.Name,
				Quantity:       quantity,
				UnitPriceMinor: product.PriceMinor,
				AddedAt:        now,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		}
		cart.RecomputeTotal()
		if err := s.carts.Insert(cart); err != nil {
			return domain.Cart{}, err
		}
		return cart, nil
	case err != nil:
		return domain.Cart{}, err
	}

	if idx := cart.FindItem(product.ID); idx >= 0 {
		// Merge-on-add: цена первого добавления не обновляется.
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:      product.ID,
			Name:           product.Name,
			Quantity:       quantity,
			UnitPriceMinor: product.PriceMinor,
			AddedAt:        now,
		})
	}
	cart.RecomputeTotal()
	cart.UpdatedAt = now

	if err := s.carts.ReplaceItems(cart); err != nil {
		return domain.Cart{}, err
	}
	cart.Version++
	return cart, nil
}

func (s *service) UpdateQuantity(ctx context.Context, ownerID, productID string, quantity int32) (domain.Cart, error) {
	if quantity < 0 {
		return domain.Cart{}, domain.ErrInvalidQuantity
	}
	if quantity == 0 {
		// Нулевое количество эквивалентно удалению позиции.
		return s.RemoveItem(ctx, ownerID, productID)
	}

	cart, err := s.carts.FindByOwner(ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return domain.Cart{}, domain.ErrItemNotFound
	}
	cart.Items[idx].Quantity = quantity
	cart.RecomputeTotal()
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.ReplaceItems(cart); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			s.recordVersionConflict()
		}
		return domain.Cart{}, err
	}
	cart.Version++

	s.recordOperation("update_quantity")
	s.publishEvent(kafka.EventTypeCartQuantityChanged, cart, productID, quantity)
	return cart, nil
}

func (s *service) RemoveItem(ctx context.Context, ownerID, productID string) (domain.Cart, error) {
	cart, err := s.carts.FindByOwner(ownerID)
	if err != nil {
		return domain.Cart{}, err
	}

	idx := cart.FindItem(productID)
	if idx < 0 {
		return domain.Cart{}, domain.ErrItemNotFound
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	cart.RecomputeTotal()
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.ReplaceItems(cart); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			s.recordVersionConflict()
		}
		return domain.Cart{}, err
	}
	cart.Version++

	s.recordOperation("remove_item")
	s.publishEvent(kafka.EventTypeCartItemRemoved, cart, productID, 0)
	return cart, nil
}

func (s *service) Clear(ctx context.Context, ownerID string) error {
	cart, err := s.carts.FindByOwner(ownerID)
	if err != nil {
		return err
	}
	if err := s.carts.DeleteByOwner(ownerID); err != nil {
		return err
	}

	s.recordOperation("clear")
	cart.Items = nil
	cart.TotalMinor = 0
	s.publishEvent(kafka.EventTypeCartCleared, cart, "", 0)
	return nil
}

func (s *service) View(ctx context.Context, ownerID string, filter domain.ItemFilter) (domain.ReconciledCart, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return domain.ReconciledCart{}, err
	}

	cart, err := s.carts.FindByOwner(ownerID)
	if err != nil {
		return domain.ReconciledCart{}, err
	}

	start := time.Now()
	reconciled := s.reconcile(ctx, cart.Items)
	if s.metrics != nil {
		s.metrics.RecordReconcileDuration(time.Since(start))
	}

	// Сохранённый итог сверяется по всем позициям, до фильтрации.
	fullTotal := reconciledTotal(reconciled)
	if err := s.carts.UpdateTotal(ownerID, fullTotal); err != nil {
		// Best-effort: ошибка персистентности не ломает чтение.
		s.logger.WithError(err).WithField("owner_id", ownerID).
			Warn("failed to persist reconciled total")
	}

	filtered := make([]domain.ReconciledItem, 0, len(reconciled))
	for _, item := range reconciled {
		if filter.Matches(item) {
			filtered = append(filtered, item)
		}
	}
	filter.SortItems(filtered)

	return domain.ReconciledCart{
		ID:             cart.ID,
		OwnerID:        cart.OwnerID,
		Items:          filtered,
		TotalMinor:     reconciledTotal(filtered),
		UpdatedAt:      cart.UpdatedAt,
		AppliedFilters: filter,
	}, nil
}

// reconcile сверяет каждую позицию с каталогом. Запросы идут параллельно;
// любая ошибка каталога по конкретной позиции понижается до "unavailable"
// и никогда не валит всё чтение.
func (s *service) reconcile(ctx context.Context, items []domain.CartItem) []domain.ReconciledItem {
	reconciled := make([]domain.ReconciledItem, len(items))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(catalogLookupLimit)
	for i := range items {
		g.Go(func() error {
			item := domain.ReconciledItem{CartItem: items[i]}

			product, err := s.catalog.FindByID(items[i].ProductID)
			if err != nil {
				if !errors.Is(err, domain.ErrProductNotFound) {
					s.logger.WithError(err).WithField("product_id", items[i].ProductID).
						Warn("catalog lookup failed, item marked unavailable")
				}
				item.Unavailable = true
				s.recordUnavailable()
			} else {
				item.EffectivePriceMinor = product.PriceMinor
				item.Category = product.Category
				if product.PriceMinor != items[i].UnitPriceMinor {
					item.PriceChanged = true
					s.recordPriceDrift()
				}
			}

			reconciled[i] = item
			return nil
		})
	}
	_ = g.Wait()

	return reconciled
}

func reconciledTotal(items []domain.ReconciledItem) int64 {
	var total int64
	for _, item := range items {
		total += item.EffectivePriceMinor * int64(item.Quantity)
	}
	return total
}

// cartEventPayload — тело события корзины, уходящее через outbox.
type cartEventPayload struct {
	OwnerID    string `json:"owner_id"`
	CartID     string `json:"cart_id"`
	ProductID  string `json:"product_id,omitempty"`
	Quantity   int32  `json:"quantity,omitempty"`
	TotalMinor int64  `json:"total_minor"`
	ItemCount  int    `json:"item_count"`
}

// publishEvent ставит событие мутации в outbox. Потеря события не откатывает
// уже сохранённую мутацию: логируем и продолжаем.
func (s *service) publishEvent(eventType kafka.EventType, cart domain.Cart, productID string, quantity int32) {
	if s.outbox == nil {
		return
	}

	payload, err := json.Marshal(cartEventPayload{
		OwnerID:    cart.OwnerID,
		CartID:     cart.ID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalMinor: cart.TotalMinor,
		ItemCount:  len(cart.Items),
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to marshal cart event payload")
		return
	}

	if _, err := s.outbox.Enqueue(domain.OutboxMessage{
		AggregateType: "cart",
		AggregateID:   cart.OwnerID,
		EventType:     string(eventType),
		Payload:       payload,
	}); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"owner_id":   cart.OwnerID,
			"event_type": eventType,
		}).Error("failed to enqueue cart event")
		return
	}

	if s.metrics != nil {
		s.metrics.RecordOutboxEvent()
	}
}

func (s *service) recordOperation(op string) {
	if s.metrics != nil {
		s.metrics.RecordCartOperation(op)
	}
}

func (s *service) recordVersionConflict() {
	if s.metrics != nil {
		s.metrics.RecordVersionConflict()
	}
}

func (s *service) recordPriceDrift() {
	if s.metrics != nil {
		s.metrics.RecordPriceDrift()
	}
}

func (s *service) recordUnavailable() {
	if s.metrics != nil {
		s.metrics.RecordUnavailableItem()
	}
}
