package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

type cartAnalyticsRepository struct {
	db *sql.DB
}

// NewCartAnalyticsRepository создаёт PostgreSQL-реализацию агрегирующих запросов
// по коллекции корзин. Все запросы read-only.
func NewCartAnalyticsRepository(store *Store) domain.CartAnalyticsRepository {
	return &cartAnalyticsRepository{db: store.DB()}
}

func (r *cartAnalyticsRepository) ActiveOwners() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT owner_id FROM carts ORDER BY owner_id
	`)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("select active owners: %w", err))
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return nil, domain.WrapStore(fmt.Errorf("scan owner: %w", err))
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStore(fmt.Errorf("iterate owners: %w", err))
	}

	return owners, nil
}

// ValueStats пересчитывает стоимость каждой корзины из позиций,
// игнорируя хранимое поле total_minor, которое может устареть.
// Среднее считается целочисленным делением в минорных единицах.
func (r *cartAnalyticsRepository) ValueStats() (domain.CartValueStats, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var stats domain.CartValueStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(cart_total), 0),
		       COALESCE(SUM(cart_total), 0) / GREATEST(COUNT(*), 1),
		       COUNT(*)
		FROM (
			SELECT c.id,
			       COALESCE(SUM(i.unit_price_minor * i.quantity), 0) AS cart_total
			FROM carts c
			LEFT JOIN cart_items i ON i.cart_id = c.id
			GROUP BY c.id
		) totals
	`).Scan(&stats.TotalValueMinor, &stats.AvgValueMinor, &stats.CartCount)
	if err != nil {
		return domain.CartValueStats{}, domain.WrapStore(fmt.Errorf("cart value stats: %w", err))
	}

	return stats, nil
}

func (r *cartAnalyticsRepository) PopularItems(limit int) ([]domain.PopularItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT i.product_id,
		       MIN(i.name),
		       SUM(i.quantity),
		       COUNT(DISTINCT i.cart_id),
		       SUM(i.unit_price_minor * i.quantity)
		FROM cart_items i
		GROUP BY i.product_id
		ORDER BY COUNT(DISTINCT i.cart_id) DESC, SUM(i.quantity) DESC, i.product_id
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("select popular items: %w", err))
	}
	defer rows.Close()

	var result []domain.PopularItem
	for rows.Next() {
		var item domain.PopularItem
		var inCarts int64
		if err := rows.Scan(
			&item.ProductID, &item.Name, &item.TotalQuantity,
			&inCarts, &item.TotalRevenueMinor,
		); err != nil {
			return nil, domain.WrapStore(fmt.Errorf("scan popular item: %w", err))
		}
		item.InCarts = int(inCarts)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStore(fmt.Errorf("iterate popular items: %w", err))
	}

	return result, nil
}

func (r *cartAnalyticsRepository) TopSpenders(limit int) ([]domain.Spender, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT c.owner_id,
		       COALESCE(SUM(i.unit_price_minor * i.quantity), 0) AS spent,
		       COUNT(i.product_id)
		FROM carts c
		LEFT JOIN cart_items i ON i.cart_id = c.id
		GROUP BY c.owner_id
		ORDER BY spent DESC, c.owner_id
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("select top spenders: %w", err))
	}
	defer rows.Close()

	var result []domain.Spender
	for rows.Next() {
		var spender domain.Spender
		if err := rows.Scan(&spender.OwnerID, &spender.TotalSpentMinor, &spender.ItemCount); err != nil {
			return nil, domain.WrapStore(fmt.Errorf("scan spender: %w", err))
		}
		result = append(result, spender)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStore(fmt.Errorf("iterate spenders: %w", err))
	}

	return result, nil
}

func (r *cartAnalyticsRepository) ListWithOwners() ([]domain.CartOwnerSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.owner_id, c.total_minor, c.updated_at, COUNT(i.product_id)
		FROM carts c
		LEFT JOIN cart_items i ON i.cart_id = c.id
		GROUP BY c.id, c.owner_id, c.total_minor, c.updated_at
		ORDER BY c.owner_id
	`)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("select cart summaries: %w", err))
	}
	defer rows.Close()

	var result []domain.CartOwnerSummary
	for rows.Next() {
		var summary domain.CartOwnerSummary
		var itemCount int64
		if err := rows.Scan(
			&summary.CartID, &summary.OwnerID, &summary.TotalMinor,
			&summary.UpdatedAt, &itemCount,
		); err != nil {
			return nil, domain.WrapStore(fmt.Errorf("scan cart summary: %w", err))
		}
		summary.ItemCount = int(itemCount)
		result = append(result, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStore(fmt.Errorf("iterate cart summaries: %w", err))
	}

	return result, nil
}

var _ domain.CartAnalyticsRepository = (*cartAnalyticsRepository)(nil)
