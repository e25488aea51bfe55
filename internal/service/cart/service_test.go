package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
	"github.com/saraelainee/1023B-backend-novo/internal/storage/memory"
)

type fixture struct {
	svc     Service
	carts   *memory.CartStore
	catalog domain.ProductRepository
	outbox  domain.OutboxRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	carts := memory.NewCartStore()
	catalog := memory.NewProductRepository()
	outbox := memory.NewOutboxRepository()

	seed := []domain.Product{
		{ID: "p1", Name: "Клавиатура", Category: "периферия", PriceMinor: 1000},
		{ID: "p2", Name: "Мышь", Category: "периферия", PriceMinor: 500},
		{ID: "p3", Name: "Стол", Category: "мебель", PriceMinor: 9000},
	}
	for _, p := range seed {
		if err := catalog.Insert(p); err != nil {
			t.Fatalf("seed product %q: %v", p.ID, err)
		}
	}

	return &fixture{
		svc:     NewServiceWithoutMetrics(carts, catalog, outbox, nil),
		carts:   carts,
		catalog: catalog,
		outbox:  outbox,
	}
}

func TestAddItemCreatesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cart, err := f.svc.AddItem(ctx, "owner-1", "p1", 2)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if cart.ID == "" {
		t.Fatal("expected generated cart id")
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", cart.Items)
	}
	if cart.Items[0].UnitPriceMinor != 1000 || cart.Items[0].Name != "Клавиатура" {
		t.Fatalf("expected catalog snapshot, got %+v", cart.Items[0])
	}
	if cart.TotalMinor != 2000 {
		t.Fatalf("unexpected total: %d", cart.TotalMinor)
	}

	stored, err := f.carts.FindByOwner("owner-1")
	if err != nil {
		t.Fatalf("find stored cart: %v", err)
	}
	if stored.TotalMinor != 2000 {
		t.Fatalf("unexpected stored total: %d", stored.TotalMinor)
	}
}

func TestAddItemMergesQuantityKeepsFirstPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 2); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// Цена в каталоге меняется между добавлениями.
	if err := f.catalog.Update(domain.Product{ID: "p1", Name: "Клавиатура", Category: "периферия", PriceMinor: 1200}); err != nil {
		t.Fatalf("update product: %v", err)
	}

	cart, err := f.svc.AddItem(ctx, "owner-1", "p1", 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("merge must not duplicate the item: %+v", cart.Items)
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}
	// Merge-on-add сохраняет цену первого добавления.
	if cart.Items[0].UnitPriceMinor != 1000 {
		t.Fatalf("expected first-add price 1000, got %d", cart.Items[0].UnitPriceMinor)
	}
	if cart.TotalMinor != 5000 {
		t.Fatalf("unexpected total: %d", cart.TotalMinor)
	}
}

func TestAddItemValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 0); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for zero, got %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", -1); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity for negative, got %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "missing", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

// conflictOnFirstReplace симулирует гонку: первая условная запись
// отклоняется по версии, повторная проходит.
type conflictOnFirstReplace struct {
	domain.CartRepository
	conflicts int
}

func (r *conflictOnFirstReplace) ReplaceItems(cart domain.Cart) error {
	if r.conflicts > 0 {
		r.conflicts--
		return domain.ErrVersionConflict
	}
	return r.CartRepository.ReplaceItems(cart)
}

func TestAddItemRetriesOnVersionConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 1); err != nil {
		t.Fatalf("seed add: %v", err)
	}

	racing := &conflictOnFirstReplace{CartRepository: f.carts, conflicts: 1}
	svc := NewServiceWithoutMetrics(racing, f.catalog, nil, nil)

	cart, err := svc.AddItem(ctx, "owner-1", "p1", 2)
	if err != nil {
		t.Fatalf("add with one conflict should succeed: %v", err)
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", cart.Items[0].Quantity)
	}

	// Два конфликта подряд исчерпывают единственный повтор.
	racing.conflicts = 2
	if _, err := svc.AddItem(ctx, "owner-1", "p1", 1); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict after exhausted retry, got %v", err)
	}
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 2); err != nil {
		t.Fatalf("seed add: %v", err)
	}

	cart, err := f.svc.UpdateQuantity(ctx, "owner-1", "p1", 7)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if cart.Items[0].Quantity != 7 || cart.TotalMinor != 7000 {
		t.Fatalf("unexpected cart after update: %+v", cart)
	}

	if _, err := f.svc.UpdateQuantity(ctx, "owner-1", "p1", -1); !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if _, err := f.svc.UpdateQuantity(ctx, "owner-1", "p2", 1); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := f.svc.UpdateQuantity(ctx, "owner-2", "p1", 1); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 2); err != nil {
		t.Fatalf("seed add p1: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "p2", 1); err != nil {
		t.Fatalf("seed add p2: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-2", "p1", 2); err != nil {
		t.Fatalf("seed add owner-2: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-2", "p2", 1); err != nil {
		t.Fatalf("seed add owner-2 p2: %v", err)
	}

	viaUpdate, err := f.svc.UpdateQuantity(ctx, "owner-1", "p1", 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	viaRemove, err := f.svc.RemoveItem(ctx, "owner-2", "p1")
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}

	if len(viaUpdate.Items) != len(viaRemove.Items) {
		t.Fatalf("operations diverge: %d vs %d items", len(viaUpdate.Items), len(viaRemove.Items))
	}
	if viaUpdate.TotalMinor != viaRemove.TotalMinor {
		t.Fatalf("operations diverge: totals %d vs %d", viaUpdate.TotalMinor, viaRemove.TotalMinor)
	}
	if viaUpdate.Items[0].ProductID != "p2" || viaRemove.Items[0].ProductID != "p2" {
		t.Fatal("expected only p2 to remain in both carts")
	}
}

func TestRemoveItemIdempotentFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 1); err != nil {
		t.Fatalf("seed add: %v", err)
	}

	if _, err := f.svc.RemoveItem(ctx, "owner-1", "p1"); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if _, err := f.svc.RemoveItem(ctx, "owner-1", "p1"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("second remove must fail with ErrItemNotFound, got %v", err)
	}
	if _, err := f.svc.RemoveItem(ctx, "owner-1", "p1"); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("third remove must re-fail identically, got %v", err)
	}
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Clear(ctx, "owner-1"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 1); err != nil {
		t.Fatalf("seed add: %v", err)
	}
	if err := f.svc.Clear(ctx, "owner-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := f.carts.FindByOwner("owner-1"); !errors.Is(err, domain.ErrCartNotFound) {
		t.Fatalf("cart should be gone, got %v", err)
	}
}

func TestViewReconcilesPriceDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 2); err != nil {
		t.Fatalf("seed add: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 3); err != nil {
		t.Fatalf("merge add: %v", err)
	}

	// Цена в каталоге уходит вверх после добавления.
	if err := f.catalog.Update(domain.Product{ID: "p1", Name: "Клавиатура", Category: "периферия", PriceMinor: 1200}); err != nil {
		t.Fatalf("update product: %v", err)
	}

	view, err := f.svc.View(ctx, "owner-1", domain.ItemFilter{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("unexpected view items: %+v", view.Items)
	}
	item := view.Items[0]
	if !item.PriceChanged {
		t.Fatal("expected priceChanged flag")
	}
	if item.EffectivePriceMinor != 1200 {
		t.Fatalf("expected effective price 1200, got %d", item.EffectivePriceMinor)
	}
	// Историческая цена остаётся в ответе для аудита.
	if item.UnitPriceMinor != 1000 {
		t.Fatalf("stored price must stay 1000, got %d", item.UnitPriceMinor)
	}
	if view.TotalMinor != 6000 {
		t.Fatalf("expected reconciled total 6000, got %d", view.TotalMinor)
	}

	// Сверенный итог персистится best-effort.
	stored, err := f.carts.FindByOwner("owner-1")
	if err != nil {
		t.Fatalf("find stored cart: %v", err)
	}
	if stored.TotalMinor != 6000 {
		t.Fatalf("expected persisted reconciled total 6000, got %d", stored.TotalMinor)
	}
	if stored.Items[0].UnitPriceMinor != 1000 {
		t.Fatal("view must not overwrite item-level prices")
	}
}

func TestViewMarksUnavailableItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 2); err != nil {
		t.Fatalf("seed add p1: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "p2", 1); err != nil {
		t.Fatalf("seed add p2: %v", err)
	}

	// Товар исчезает из каталога, позиция остаётся в корзине.
	if err := f.catalog.Delete("p2"); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	view, err := f.svc.View(ctx, "owner-1", domain.ItemFilter{})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("unavailable item must stay listed, got %+v", view.Items)
	}

	var unavailable, available *domain.ReconciledItem
	for i := range view.Items {
		if view.Items[i].ProductID == "p2" {
			unavailable = &view.Items[i]
		} else {
			available = &view.Items[i]
		}
	}
	if unavailable == nil || !unavailable.Unavailable {
		t.Fatalf("expected p2 flagged unavailable: %+v", view.Items)
	}
	if unavailable.EffectivePriceMinor != 0 {
		t.Fatalf("unavailable item must contribute 0, got %d", unavailable.EffectivePriceMinor)
	}
	if available == nil || available.Unavailable {
		t.Fatalf("p1 must stay available: %+v", view.Items)
	}
	if view.TotalMinor != 2000 {
		t.Fatalf("expected total 2000 from p1 only, got %d", view.TotalMinor)
	}

	// Сверка не удаляет позиции из хранимой корзины.
	stored, err := f.carts.FindByOwner("owner-1")
	if err != nil {
		t.Fatalf("find stored cart: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("stored cart must keep both items, got %d", len(stored.Items))
	}
}

func TestViewFiltersAndSorting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 2); err != nil { // Клавиатура 1000
		t.Fatalf("seed add p1: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "p2", 5); err != nil { // Мышь 500
		t.Fatalf("seed add p2: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "p3", 1); err != nil { // Стол 9000
		t.Fatalf("seed add p3: %v", err)
	}

	// Подстрока имени без учёта регистра.
	view, err := f.svc.View(ctx, "owner-1", domain.ItemFilter{NameContains: "мышь"})
	if err != nil {
		t.Fatalf("view with name filter: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != "p2" {
		t.Fatalf("unexpected name filter result: %+v", view.Items)
	}
	if view.TotalMinor != 2500 {
		t.Fatalf("total must cover filtered items only, got %d", view.TotalMinor)
	}

	// Фильтр категории по актуальному каталогу.
	view, err = f.svc.View(ctx, "owner-1", domain.ItemFilter{Category: "периферия"})
	if err != nil {
		t.Fatalf("view with category filter: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 items in category, got %+v", view.Items)
	}

	// Сортировка по цене по убыванию.
	view, err = f.svc.View(ctx, "owner-1", domain.ItemFilter{SortBy: domain.SortByPrice, SortOrder: domain.SortDesc})
	if err != nil {
		t.Fatalf("view with sort: %v", err)
	}
	if view.Items[0].ProductID != "p3" || view.Items[2].ProductID != "p2" {
		t.Fatalf("unexpected sort order: %+v", view.Items)
	}

	// Диапазон цены по эффективной цене.
	view, err = f.svc.View(ctx, "owner-1", domain.ItemFilter{MinPriceMinor: 600, MaxPriceMinor: 2000})
	if err != nil {
		t.Fatalf("view with price range: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected price range result: %+v", view.Items)
	}

	// Эхо применённых фильтров с нормализованной сортировкой.
	if view.AppliedFilters.MinPriceMinor != 600 || view.AppliedFilters.SortBy != domain.SortByName {
		t.Fatalf("unexpected applied filters: %+v", view.AppliedFilters)
	}

	// Невалидная сортировка отклоняется на границе.
	if _, err := f.svc.View(ctx, "owner-1", domain.ItemFilter{SortBy: "color"}); !errors.Is(err, domain.ErrFilterSortField) {
		t.Fatalf("expected ErrFilterSortField, got %v", err)
	}
}

func TestViewCategoryFilterHidesUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 1); err != nil {
		t.Fatalf("seed add p1: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "p2", 1); err != nil {
		t.Fatalf("seed add p2: %v", err)
	}
	if err := f.catalog.Delete("p2"); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	// У недоступной позиции нет актуальной категории: фильтр категории её скрывает.
	view, err := f.svc.View(ctx, "owner-1", domain.ItemFilter{Category: "периферия"})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ProductID != "p1" {
		t.Fatalf("unexpected category result: %+v", view.Items)
	}

	// Без фильтра категории позиция присутствует.
	view, err = f.svc.View(ctx, "owner-1", domain.ItemFilter{})
	if err != nil {
		t.Fatalf("view without filter: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected both items without category filter: %+v", view.Items)
	}
}

func TestViewPersistTotalFailureDoesNotFailRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 2); err != nil {
		t.Fatalf("seed add: %v", err)
	}

	svc := NewServiceWithoutMetrics(&failingTotalRepo{CartRepository: f.carts}, f.catalog, nil, nil)
	view, err := svc.View(ctx, "owner-1", domain.ItemFilter{})
	if err != nil {
		t.Fatalf("view must survive persist failure: %v", err)
	}
	if view.TotalMinor != 2000 {
		t.Fatalf("unexpected total: %d", view.TotalMinor)
	}
}

type failingTotalRepo struct {
	domain.CartRepository
}

func (r *failingTotalRepo) UpdateTotal(string, int64) error {
	return domain.WrapStore(errors.New("store down"))
}

func TestMutationsEnqueueOutboxEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AddItem(ctx, "owner-1", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.svc.UpdateQuantity(ctx, "owner-1", "p1", 5); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := f.svc.RemoveItem(ctx, "owner-1", "p1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := f.svc.AddItem(ctx, "owner-1", "p2", 1); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if err := f.svc.Clear(ctx, "owner-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	pending, err := f.outbox.PullPending(0)
	if err != nil {
		t.Fatalf("pull pending: %v", err)
	}
	want := []string{
		"cart.item_added",
		"cart.item_quantity_changed",
		"cart.item_removed",
		"cart.item_added",
		"cart.cleared",
	}
	if len(pending) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(pending))
	}
	for i, eventType := range want {
		if pending[i].EventType != eventType {
			t.Fatalf("unexpected event at %d: got=%q want=%q", i, pending[i].EventType, eventType)
		}
		if pending[i].AggregateID != "owner-1" {
			t.Fatalf("event must be keyed by owner, got %q", pending[i].AggregateID)
		}
	}
}
