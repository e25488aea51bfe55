package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saraelainee/1023B-backend-novo/internal/domain"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository создаёт PostgreSQL-реализацию каталога товаров.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &productRepository{db: store.DB()}
}

func (r *productRepository) FindByID(id string) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var product domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, category, price_minor, description, photo_url, created_at
		FROM products
		WHERE id = $1
	`, id).Scan(
		&product.ID, &product.Name, &product.Category, &product.PriceMinor,
		&product.Description, &product.PhotoURL, &product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, domain.WrapStore(fmt.Errorf("select product: %w", err))
	}

	return product, nil
}

func (r *productRepository) List(filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// ILIKE с экранированным шаблоном — эквивалент $regex/'i' из прежнего стека.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, price_minor, description, photo_url, created_at
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category ILIKE '%' || $2 || '%')
		ORDER BY LOWER(name), id
	`, filter.NameContains, filter.CategoryContains)
	if err != nil {
		return nil, domain.WrapStore(fmt.Errorf("select products: %w", err))
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Category, &product.PriceMinor,
			&product.Description, &product.PhotoURL, &product.CreatedAt,
		); err != nil {
			return nil, domain.WrapStore(fmt.Errorf("scan product: %w", err))
		}
		result = append(result, product)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStore(fmt.Errorf("iterate products: %w", err))
	}

	return result, nil
}

func (r *productRepository) Insert(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, category, price_minor, description, photo_url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		product.ID, product.Name, product.Category, product.PriceMinor,
		product.Description, product.PhotoURL, product.CreatedAt,
	)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("insert product: %w", err))
	}

	return nil
}

func (r *productRepository) Update(product domain.Product) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, price_minor = $4, description = $5, photo_url = $6
		WHERE id = $1
	`,
		product.ID, product.Name, product.Category, product.PriceMinor,
		product.Description, product.PhotoURL,
	)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("update product: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStore(fmt.Errorf("rows affected for product update: %w", err))
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

func (r *productRepository) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return domain.WrapStore(fmt.Errorf("delete product: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStore(fmt.Errorf("rows affected for product delete: %w", err))
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
