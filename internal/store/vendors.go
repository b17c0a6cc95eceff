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

type vendorStore struct {
	*MYSQLStore
}

// Vendors returns an object implementing vendor interface
func (ms *MYSQLStore) Vendors() dependency.Vendors {
	return &vendorStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) AddVendor(ctx context.Context, v *entity.VendorInsert) (int, error) {
	query := `
	INSERT INTO vendor (name, contact_email, phone, address, notes)
	VALUES (:name, :contactEmail, :phone, :address, :notes)`
	id, err := ExecNamedLastId(ctx, ms.DB(), query, map[string]any{
		"name":         v.Name,
		"contactEmail": v.ContactEmail,
		"phone":        v.Phone,
		"address":      v.Address,
		"notes":        v.Notes,
	})
	if err != nil {
		return 0, fmt.Errorf("can't add vendor: %w", err)
	}
	return id, nil
}

func (ms *MYSQLStore) UpdateVendor(ctx context.Context, v *entity.VendorInsert, id int) error {
	query := `
	UPDATE vendor
	SET name = :name,
		contact_email = :contactEmail,
		phone = :phone,
		address = :address,
		notes = :notes
	WHERE id = :id`
	err := ExecNamed(ctx, ms.DB(), query, map[string]any{
		"id":           id,
		"name":         v.Name,
		"contactEmail": v.ContactEmail,
		"phone":        v.Phone,
		"address":      v.Address,
		"notes":        v.Notes,
	})
	if err != nil {
		return fmt.Errorf("can't update vendor: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) DeleteVendorById(ctx context.Context, id int) error {
	return ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		// Keep products but detach them from the vendor.
		err := ExecNamed(ctx, rep.DB(), `UPDATE product SET vendor_id = NULL WHERE vendor_id = :id`,
			map[string]any{"id": id})
		if err != nil {
			return fmt.Errorf("can't detach vendor products: %w", err)
		}

		res, err := rep.DB().ExecContext(ctx, `DELETE FROM vendor WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("can't delete vendor: %w", err)
		}
		ra, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("can't get affected rows: %w", err)
		}
		if ra == 0 {
			return gerr.ErrVendorNotFound
		}
		return nil
	})
}

func (ms *MYSQLStore) GetVendorById(ctx context.Context, id int) (*entity.Vendor, error) {
	query := `
	SELECT id, created_at, name, contact_email, phone, address, notes
	FROM vendor WHERE id = :id`
	v, err := QueryNamedOne[entity.Vendor](ctx, ms.DB(), query, map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrVendorNotFound
		}
		return nil, fmt.Errorf("can't get vendor by id: %w", err)
	}
	return &v, nil
}

func (ms *MYSQLStore) ListVendors(ctx context.Context, limit, offset int) ([]entity.Vendor, error) {
	query := `
	SELECT id, created_at, name, contact_email, phone, address, notes
	FROM vendor
	ORDER BY name
	LIMIT :limit OFFSET :offset`
	vendors, err := QueryListNamed[entity.Vendor](ctx, ms.DB(), query, map[string]any{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		return nil, fmt.Errorf("can't list vendors: %w", err)
	}
	return vendors, nil
}
