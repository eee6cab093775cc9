package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, sku, name, description, category_id, min_quantity, max_quantity,
	unit_price, supplier_id, is_deleted, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de ítems. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo ítem. Un SKU repetido devuelve ErrDuplicate.
func (r *ItemRepo) Create(ctx context.Context, item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.SKU, item.Name, item.Description, nullable(item.CategoryID),
		item.MinQuantity, item.MaxQuantity, item.UnitPrice, nullable(item.SupplierID),
		item.IsDeleted, item.CreatedAt, item.UpdatedAt,
	)
	return wrap("insert item", err)
}

// GetByID obtiene un ítem por ID, incluidos los eliminados.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// GetBySKU obtiene un ítem por SKU.
func (r *ItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE sku = $1`, sku)
}

func (r *ItemRepo) getOne(ctx context.Context, query string, arg string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, wrap("get item", err)
	}
	return it, nil
}

// Update actualiza los campos editables; el SKU no cambia.
func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, description = $3, category_id = $4, min_quantity = $5,
			max_quantity = $6, unit_price = $7, supplier_id = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		item.ID, item.Name, item.Description, nullable(item.CategoryID), item.MinQuantity,
		item.MaxQuantity, item.UnitPrice, nullable(item.SupplierID), item.UpdatedAt,
	)
	if err != nil {
		return wrap("update item", err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound("item", item.ID)
	}
	return nil
}

// SoftDelete marca el ítem como eliminado.
func (r *ItemRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE items SET is_deleted = true, updated_at = $2 WHERE id = $1 AND NOT is_deleted`, id, at)
	if err != nil {
		return wrap("delete item", err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound("item", id)
	}
	return nil
}

// List lista ítems por nombre con el total de coincidencias (antes de paginar).
// Limit <= 0 devuelve todo.
func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.Item, int, error) {
	var (
		where []string
		args  []any
	)
	if !f.IncludeDeleted {
		where = append(where, "NOT is_deleted")
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf("(sku ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM items`+filter, args...).Scan(&total); err != nil {
		return nil, 0, wrap("count items", err)
	}

	query := `SELECT ` + itemColumns + ` FROM items` + filter + ` ORDER BY name, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	list, err := r.queryItems(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListActive todos los ítems no eliminados, por nombre.
func (r *ItemRepo) ListActive(ctx context.Context) ([]*entity.Item, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE NOT is_deleted ORDER BY name, id`)
}

func (r *ItemRepo) queryItems(ctx context.Context, query string, args ...any) ([]*entity.Item, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list items", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, wrap("scan item", err)
		}
		list = append(list, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list items", err)
	}
	return list, nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var (
		it               entity.Item
		category, suppID *string
	)
	if err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Description, &category,
		&it.MinQuantity, &it.MaxQuantity, &it.UnitPrice, &suppID, &it.IsDeleted,
		&it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	it.CategoryID, it.SupplierID = deref(category), deref(suppID)
	return &it, nil
}
