package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) FindByOwner(ownerID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, total_minor, version, created_at, updated_at
		FROM carts
		WHERE owner_id = $1
	`, ownerID).Scan(
		&cart.ID, &cart.OwnerID, &cart.TotalMinor, &cart.Version,
		&cart.CreatedAt, &cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, domain.WrapStore(fmt.Errorf("select cart: %w", err))
	}

	items, err := r.loadItems(ctx, cart.ID)
	if err != nil {
		return domain.Cart{}, err
	}
	cart.Items = items

	return cart, nil
}

func (r *cartRepository) Insert(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("begin tx: %w", err))
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO carts (id, owner_id, total_minor, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		cart.ID, cart.OwnerID, cart.TotalMinor, cart.Version, cart.CreatedAt, cart.UpdatedAt,
	)
	if err != nil {
		// Уникальный индекс по owner_id превращает гонку двух "первых добавлений"
		// в конфликт версий, который движок повторяет поверх существующей корзины.
		if isUniqueViolation(err) {
			return domain.ErrVersionConflict
		}
		return domain.WrapStore(fmt.Errorf("insert cart: %w", err))
	}

	if err = insertItems(ctx, tx, cart.ID, cart.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return domain.WrapStore(fmt.Errorf("commit insert cart: %w", err))
	}

	return nil
}

func (r *cartRepository) ReplaceItems(cart domain.Cart) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("begin tx: %w", err))
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Условное обновление по owner_id и версии — защита от lost update
	// при гонке двух мутаций одной корзины.
	res, err := tx.ExecContext(ctx, `
		UPDATE carts
		SET total_minor = $3, version = version + 1, updated_at = $4
		WHERE owner_id = $1 AND version = $2
	`, cart.OwnerID, cart.Version, cart.TotalMinor, cart.UpdatedAt)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("update cart: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStore(fmt.Errorf("rows affected for cart update: %w", err))
	}
	if affected == 0 {
		var exists bool
		if err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM carts WHERE owner_id = $1)
		`, cart.OwnerID).Scan(&exists); err != nil {
			return domain.WrapStore(fmt.Errorf("check cart existence: %w", err))
		}
		if !exists {
			err = domain.ErrCartNotFound
			return err
		}
		err = domain.ErrVersionConflict
		return err
	}

	var cartID string
	if err = tx.QueryRowContext(ctx, `
		SELECT id FROM carts WHERE owner_id = $1
	`, cart.OwnerID).Scan(&cartID); err != nil {
		return domain.WrapStore(fmt.Errorf("select cart id: %w", err))
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return domain.WrapStore(fmt.Errorf("delete cart items: %w", err))
	}
	if err = insertItems(ctx, tx, cartID, cart.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return domain.WrapStore(fmt.Errorf("commit replace items: %w", err))
	}

	return nil
}

func (r *cartRepository) UpdateTotal(ownerID string, totalMinor int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE carts SET total_minor = $2 WHERE owner_id = $1
	`, ownerID, totalMinor)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("update cart total: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStore(fmt.Errorf("rows affected for total update: %w", err))
	}
	if affected == 0 {
		return domain.ErrCartNotFound
	}

	return nil
}

func (r *cartRepository) DeleteByOwner(ownerID string) error {
	return r.deleteWhere(`owner_id = $1`, ownerID)
}

func (r *cartRepository) DeleteByID(cartID string) error {
	return r.deleteWhere(`id = $1`, cartID)
}

func (r *cartRepository) deleteWhere(condition, arg string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE `+condition, arg)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("delete cart: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStore(fmt.Errorf("rows affected for cart delete: %w", err))
	}
	if affected == 0 {
		return domain.ErrCartNotFound
	}

	return nil
}

func (r *cartRepository) loadItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, quantity, unit_price_minor, added_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY added_at, product_id
	`, cartID)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("select cart items: %w", err))
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ProductID, &item.Name, &item.Quantity,
			&item.UnitPriceMinor, &item.AddedAt,
		); err != nil {
			return nil, domain.WrapStore(fmt.Errorf("scan cart item: %w", err))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStore(fmt.Errorf("iterate cart items: %w", err))
	}

	return items, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, cartID string, items []domain.CartItem) error {
	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, name, quantity, unit_price_minor, added_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`,
			cartID, item.ProductID, item.Name, item.Quantity, item.UnitPriceMinor, item.AddedAt,
		); err != nil {
			return domain.WrapStore(fmt.Errorf("insert cart item: %w", err))
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.CartRepository = (*cartRepository)(nil)
