package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/platform/db"
	"github.com/odyssey-erp/costbook/internal/units"
)

// Lookup resolves catalog entries for costing and valuation.
type Lookup interface {
	GetEntry(ctx context.Context, id string) (Entry, error)
	ListEntriesForItem(ctx context.Context, itemID string) ([]Entry, error)
	ListEntries(ctx context.Context, ids []string) ([]Entry, error)
}

// Repository persists catalog entries in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `id, supplier_id, item_kind, item_id, item_name, unit, unit_price, tax, bulk_price, bulk_quantity, lead_time_days, availability, updated_at`

// GetEntry loads one entry by ID.
func (r *Repository) GetEntry(ctx context.Context, id string) (Entry, error) {
	if r == nil {
		return Entry{}, errors.New("catalog repository not initialised")
	}
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE id=$1`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

// ListEntriesForItem returns every supplier offer for the same underlying good.
func (r *Repository) ListEntriesForItem(ctx context.Context, itemID string) ([]Entry, error) {
	if r == nil {
		return nil, errors.New("catalog repository not initialised")
	}
	return r.query(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE item_id=$1 ORDER BY unit_price ASC, id ASC`, itemID)
}

// ListEntries loads the entries with the given IDs. Missing IDs are ignored.
func (r *Repository) ListEntries(ctx context.Context, ids []string) ([]Entry, error) {
	if r == nil {
		return nil, errors.New("catalog repository not initialised")
	}
	if len(ids) == 0 {
		return []Entry{}, nil
	}
	return r.query(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE id = ANY($1) ORDER BY id`, ids)
}

// InsertEntry stores a new entry.
func (r *Repository) InsertEntry(ctx context.Context, e Entry) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO catalog_entries (`+entryColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		e.ID, e.SupplierID, string(e.ItemKind), e.ItemID, e.ItemName, string(e.Unit), e.UnitPrice, e.Tax,
		nullDecimal(e.BulkPrice), nullDecimal(e.BulkQuantity), e.LeadTimeDays, string(e.Availability), e.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateEntry
	}
	return err
}

// UpdatePrice edits price, tax and availability.
func (r *Repository) UpdatePrice(ctx context.Context, id string, u PriceUpdate, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE catalog_entries SET unit_price=$2, tax=$3, availability=$4, updated_at=$5 WHERE id=$1`,
		id, u.UnitPrice, u.Tax, string(u.Availability), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e            Entry
		kind, unit   string
		availability string
		bulkPrice    decimal.NullDecimal
		bulkQty      decimal.NullDecimal
	)
	err := row.Scan(&e.ID, &e.SupplierID, &kind, &e.ItemID, &e.ItemName, &unit, &e.UnitPrice, &e.Tax,
		&bulkPrice, &bulkQty, &e.LeadTimeDays, &availability, &e.UpdatedAt)
	if err != nil {
		return Entry{}, err
	}
	e.ItemKind = ItemKind(kind)
	e.Unit = units.Unit(unit)
	e.Availability = Availability(availability)
	if bulkPrice.Valid {
		e.BulkPrice = &bulkPrice.Decimal
	}
	if bulkQty.Valid {
		e.BulkQuantity = &bulkQty.Decimal
	}
	return e, nil
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}
