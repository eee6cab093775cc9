package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ItemRepository      = (*ItemRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.SupplierRepository  = (*SupplierRepo)(nil)
)

// ItemRepo catálogo de ítems en memoria.
type ItemRepo struct{ v *view }

func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	return r.v.write(ctx, "items.create", func(d *state) error {
		if _, ok := d.items[item.ID]; ok {
			return fmt.Errorf("item %s: %w", item.ID, domain.ErrDuplicate)
		}
		for _, it := range d.items {
			if it.SKU == item.SKU {
				return fmt.Errorf("sku %s: %w", item.SKU, domain.ErrDuplicate)
			}
		}
		d.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	var out *entity.Item
	err := r.v.read(ctx, "items.get", func(d *state) {
		if it, ok := d.items[id]; ok {
			out = &it
		}
	})
	return out, err
}

func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	var out *entity.Item
	err := r.v.read(ctx, "items.get", func(d *state) {
		for _, it := range d.items {
			if it.SKU == sku {
				out = &it
				return
			}
		}
	})
	return out, err
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	return r.v.write(ctx, "items.update", func(d *state) error {
		if _, ok := d.items[item.ID]; !ok {
			return domain.ErrNotFound
		}
		d.items[item.ID] = *item
		return nil
	})
}

func (r *ItemRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return r.v.write(ctx, "items.delete", func(d *state) error {
		it, ok := d.items[id]
		if !ok || it.IsDeleted {
			return domain.ErrNotFound
		}
		it.IsDeleted = true
		it.UpdatedAt = at
		d.items[id] = it
		return nil
	})
}

func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.Item, int, error) {
	var all []*entity.Item
	search := strings.ToLower(strings.TrimSpace(f.Search))
	err := r.v.read(ctx, "items.list", func(d *state) {
		for _, it := range d.items {
			if it.IsDeleted && !f.IncludeDeleted {
				continue
			}
			if f.CategoryID != "" && it.CategoryID != f.CategoryID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(it.SKU), search) &&
				!strings.Contains(strings.ToLower(it.Name), search) {
				continue
			}
			all = append(all, &it)
		}
	})
	if err != nil {
		return nil, 0, err
	}
	sortItems(all)
	return page(all, f.Limit, f.Offset), len(all), nil
}

func (r *ItemRepo) ListActive(ctx context.Context) ([]*entity.Item, error) {
	var out []*entity.Item
	err := r.v.read(ctx, "items.list", func(d *state) {
		for _, it := range d.items {
			if !it.IsDeleted {
				out = append(out, &it)
			}
		}
	})
	sortItems(out)
	return out, err
}

func sortItems(items []*entity.Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ v *view }

func (r *WarehouseRepo) Create(ctx context.Context, wh *entity.Warehouse) error {
	return r.v.write(ctx, "warehouses.create", func(d *state) error {
		if _, ok := d.warehouses[wh.ID]; ok {
			return domain.ErrDuplicate
		}
		d.warehouses[wh.ID] = *wh
		return nil
	})
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	err := r.v.read(ctx, "warehouses.get", func(d *state) {
		if wh, ok := d.warehouses[id]; ok {
			out = &wh
		}
	})
	return out, err
}

func (r *WarehouseRepo) Update(ctx context.Context, wh *entity.Warehouse) error {
	return r.v.write(ctx, "warehouses.update", func(d *state) error {
		if _, ok := d.warehouses[wh.ID]; !ok {
			return domain.ErrNotFound
		}
		d.warehouses[wh.ID] = *wh
		return nil
	})
}

func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return page(all, limit, offset), nil
}

func (r *WarehouseRepo) ListAll(ctx context.Context) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	err := r.v.read(ctx, "warehouses.list", func(d *state) {
		for _, wh := range d.warehouses {
			out = append(out, &wh)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ v *view }

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	return r.v.write(ctx, "suppliers.create", func(d *state) error {
		if _, ok := d.suppliers[s.ID]; ok {
			return domain.ErrDuplicate
		}
		d.suppliers[s.ID] = *s
		return nil
	})
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.v.read(ctx, "suppliers.get", func(d *state) {
		if s, ok := d.suppliers[id]; ok {
			out = &s
		}
	})
	return out, err
}

func (r *SupplierRepo) List(ctx context.Context, limit, offset int) ([]*entity.Supplier, error) {
	out, err := r.search(ctx, "")
	if err != nil {
		return nil, err
	}
	return page(out, limit, offset), nil
}

func (r *SupplierRepo) SearchByName(ctx context.Context, fragment string, limit int) ([]*entity.Supplier, error) {
	out, err := r.search(ctx, strings.ToLower(fragment))
	if err != nil {
		return nil, err
	}
	return page(out, limit, 0), nil
}

func (r *SupplierRepo) search(ctx context.Context, fragment string) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.v.read(ctx, "suppliers.list", func(d *state) {
		for _, s := range d.suppliers {
			if fragment == "" || strings.Contains(strings.ToLower(s.Name), fragment) {
				out = append(out, &s)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// page aplica limit/offset; limit <= 0 devuelve todo desde offset.
func page[T any](all []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []T{}
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
