package domain

// CartRepository описывает требования к хранилищу корзин: одна корзина на владельца,
// мутации выражаются условными обновлениями, а не парой "прочитал-записал".
type CartRepository interface {
	// FindByOwner возвращает корзину владельца или ErrCartNotFound.
	FindByOwner(ownerID string) (Cart, error)
	// Insert сохраняет новую корзину. Возвращает ErrVersionConflict,
	// если корзина владельца уже существует.
	Insert(cart Cart) error
	// ReplaceItems атомарно перезаписывает позиции, итог и updated_at,
	// при условии совпадения версии (optimistic locking).
	ReplaceItems(cart Cart) error
	// UpdateTotal записывает сверенный итог, не трогая позиции.
	// Используется best-effort персистентностью ViewCart.
	UpdateTotal(ownerID string, totalMinor int64) error
	// DeleteByOwner удаляет корзину владельца; ErrCartNotFound, если её нет.
	DeleteByOwner(ownerID string) error
	// DeleteByID удаляет корзину по её идентификатору (админская операция).
	DeleteByID(cartID string) error
}

// CartAnalyticsRepository — read-only агрегирующие запросы по коллекции корзин.
// Никогда не мутирует данные.
type CartAnalyticsRepository interface {
	// ActiveOwners возвращает отсортированный список владельцев, имеющих корзину.
	ActiveOwners() ([]string, error)
	// ValueStats считает суммарную/среднюю стоимость корзин,
	// пересчитывая итог каждой корзины из позиций, а не из хранимого поля.
	ValueStats() (CartValueStats, error)
	// PopularItems возвращает товары, ранжированные по числу корзин,
	// затем по суммарному количеству; limit<=0 — без ограничения.
	PopularItems(limit int) ([]PopularItem, error)
	// TopSpenders возвращает владельцев по убыванию суммы корзины;
	// limit<=0 — без ограничения.
	TopSpenders(limit int) ([]Spender, error)
	// ListWithOwners возвращает все корзины с количеством позиций
	// для административного списка (владельцы подставляются сервисом).
	ListWithOwners() ([]CartOwnerSummary, error)
}

// CartValueStats — распределение стоимости корзин по всем пользователям.
type CartValueStats struct {
	TotalValueMinor int64
	AvgValueMinor   int64
	CartCount       int
}

// PopularItem — строка рейтинга популярных товаров.
type PopularItem struct {
	ProductID string
	Name      string
	// Category подставляется агрегатором из каталога, в запросе не участвует.
	Category      string
	TotalQuantity int64
	InCarts       int
	// TotalRevenueMinor считается по ценам на момент добавления, без сверки.
	TotalRevenueMinor int64
}

// Spender — владелец корзины с суммой потенциальных трат.
type Spender struct {
	OwnerID         string
	TotalSpentMinor int64
	ItemCount       int
}

// ProductRepository — каталог товаров. Для ядра корзины используется только FindByID.
type ProductRepository interface {
	// FindByID возвращает товар или ErrProductNotFound.
	FindByID(id string) (Product, error)
	// List возвращает товары, подходящие под фильтр, в порядке имени.
	List(filter ProductFilter) ([]Product, error)
	Insert(product Product) error
	Update(product Product) error
	// Delete удаляет товар; ErrProductNotFound, если его нет.
	Delete(id string) error
}

// UserRepository — коллекция пользователей.
type UserRepository interface {
	// FindByID возвращает пользователя или ErrUserNotFound.
	FindByID(id string) (User, error)
	// FindByEmail возвращает пользователя или ErrUserNotFound.
	FindByEmail(email string) (User, error)
	// Insert сохраняет нового пользователя; ErrEmailTaken при занятом e-mail.
	Insert(user User) error
	Update(user User) error
	Delete(id string) error
	// List возвращает всех пользователей в порядке создания.
	List() ([]User, error)
}
