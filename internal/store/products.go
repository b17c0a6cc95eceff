package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
)

type productStore struct {
	*MYSQLStore
}

// Products returns an object implementing product interface
func (ms *MYSQLStore) Products() dependency.Products {
	return &productStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) AddProduct(ctx context.Context, prd *entity.ProductInsert) (int, error) {
	query := `
	INSERT INTO product
		(name, slug, description, category_id, vendor_id, price, cost, stock, hidden)
	VALUES
		(:name, :slug, :description, :categoryId, :vendorId, :price, :cost, :stock, :hidden)
	`
	id, err := ExecNamedLastId(ctx, ms.DB(), query, map[string]any{
		"name":        prd.Name,
		"slug":        prd.Slug,
		"description": prd.Description,
		"categoryId":  prd.CategoryID,
		"vendorId":    prd.VendorID,
		"price":       prd.Price,
		"cost":        prd.Cost,
		"stock":       prd.Stock,
		"hidden":      prd.Hidden,
	})
	if err != nil {
		return 0, fmt.Errorf("can't add product: %w", err)
	}
	return id, nil
}

func (ms *MYSQLStore) UpdateProduct(ctx context.Context, prd *entity.ProductInsert, id int) error {
	query := `
	UPDATE product
	SET name = :name,
		slug = :slug,
		description = :description,
		category_id = :categoryId,
		vendor_id = :vendorId,
		price = :price,
		cost = :cost,
		hidden = :hidden,
		updated_at = CURRENT_TIMESTAMP
	WHERE id = :id
	`
	err := ExecNamed(ctx, ms.DB(), query, map[string]any{
		"id":          id,
		"name":        prd.Name,
		"slug":        prd.Slug,
		"description": prd.Description,
		"categoryId":  prd.CategoryID,
		"vendorId":    prd.VendorID,
		"price":       prd.Price,
		"cost":        prd.Cost,
		"hidden":      prd.Hidden,
	})
	if err != nil {
		return fmt.Errorf("can't update product: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) GetProductsPaged(ctx context.Context, limit, offset int, showHidden bool) ([]entity.Product, int, error) {
	whereHidden := "WHERE hidden = false"
	if showHidden {
		whereHidden = ""
	}

	count, err := QueryCountNamed(ctx, ms.DB(),
		fmt.Sprintf(`SELECT COUNT(*) FROM product %s`, whereHidden), map[string]any{})
	if err != nil {
		return nil, 0, fmt.Errorf("can't count products: %w", err)
	}

	query := fmt.Sprintf(`
	SELECT id, created_at, updated_at, name, slug, description, category_id,
		vendor_id, price, cost, stock, hidden
	FROM product %s
	ORDER BY id DESC
	LIMIT :limit OFFSET :offset`, whereHidden)

	prds, err := QueryListNamed[entity.Product](ctx, ms.DB(), query, map[string]any{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("can't get products paged: %w", err)
	}
	return prds, count, nil
}

func (ms *MYSQLStore) GetProductById(ctx context.Context, id int) (*entity.Product, error) {
	query := `
	SELECT id, created_at, updated_at, name, slug, description, category_id,
		vendor_id, price, cost, stock, hidden
	FROM product WHERE id = :id`
	prd, err := QueryNamedOne[entity.Product](ctx, ms.DB(), query, map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrProductNotFound
		}
		return nil, fmt.Errorf("can't get product by id: %w", err)
	}
	return &prd, nil
}

func (ms *MYSQLStore) GetProductBySlugNoHidden(ctx context.Context, slug string) (*entity.Product, error) {
	query := `
	SELECT id, created_at, updated_at, name, slug, description, category_id,
		vendor_id, price, cost, stock, hidden
	FROM product WHERE slug = :slug AND hidden = false`
	prd, err := QueryNamedOne[entity.Product](ctx, ms.DB(), query, map[string]any{"slug": slug})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrProductNotFound
		}
		return nil, fmt.Errorf("can't get product by slug: %w", err)
	}
	return &prd, nil
}

func (ms *MYSQLStore) DeleteProductById(ctx context.Context, id int) error {
	return ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		err := ExecNamed(ctx, rep.DB(), `DELETE FROM stock_change WHERE product_id = :id`,
			map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("can't delete stock change log: %w", err)
		}
		err = ExecNamed(ctx, rep.DB(), `DELETE FROM product WHERE id = :id`,
			map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("can't delete product: %w", err)
		}
		return nil
	})
}

func (ms *MYSQLStore) SetHidden(ctx context.Context, id int, hidden bool) error {
	err := ExecNamed(ctx, ms.DB(), `
		UPDATE product SET hidden = :hidden, updated_at = CURRENT_TIMESTAMP WHERE id = :id`,
		map[string]any{"id": id, "hidden": hidden})
	if err != nil {
		return fmt.Errorf("can't set product hidden: %w", err)
	}
	return nil
}

// AdjustStock applies delta to the product stock and writes the audit row in
// the same transaction. The WHERE guard keeps stock from going negative even
// under concurrent writers.
func (ms *MYSQLStore) AdjustStock(ctx context.Context, id int, delta int, source entity.StockChangeSource, note string) error {
	return ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		return adjustStock(ctx, rep, id, delta, source, note)
	})
}

func adjustStock(ctx context.Context, rep dependency.Repository, id int, delta int, source entity.StockChangeSource, note string) error {
	res, err := rep.DB().ExecContext(ctx, `
		UPDATE product SET stock = stock + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock + ? >= 0`, delta, id, delta)
	if err != nil {
		return fmt.Errorf("can't adjust stock: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("can't get affected rows: %w", err)
	}
	if ra == 0 {
		return gerr.ErrInsufficientStock
	}

	err = ExecNamed(ctx, rep.DB(), `
		INSERT INTO stock_change (product_id, delta, source, note)
		VALUES (:productId, :delta, :source, :note)`,
		map[string]any{
			"productId": id,
			"delta":     delta,
			"source":    string(source),
			"note":      note,
		})
	if err != nil {
		return fmt.Errorf("can't log stock change: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) GetStockChanges(ctx context.Context, productId int, limit int) ([]entity.StockChange, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, product_id, delta, source, note, created_at
	FROM stock_change
	WHERE product_id = :productId
	ORDER BY id DESC
	LIMIT :limit`
	changes, err := QueryListNamed[entity.StockChange](ctx, ms.DB(), query, map[string]any{
		"productId": productId,
		"limit":     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get stock changes: %w", err)
	}
	return changes, nil
}
