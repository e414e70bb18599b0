package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/costbook/internal/catalog"
	"github.com/odyssey-erp/costbook/internal/platform/db"
	"github.com/odyssey-erp/costbook/internal/units"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, id string) (Item, error)
	InsertItem(ctx context.Context, item Item) error
	UpdateItem(ctx context.Context, item Item) error
	SumDeltas(ctx context.Context, itemID string) (decimal.Decimal, error)
	InsertTransaction(ctx context.Context, t Transaction) (Transaction, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txRepository struct {
	tx pgx.Tx
}

const itemColumns = `id, item_kind, catalog_item_id, name, price_entry_id, unit, quantity, min_level, max_level, status, archived, created_at, updated_at`

const transactionColumns = `id, seq, item_id, delta, balance, reason, reference, notes, actor_id, created_at`

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetItem loads one item.
func (r *Repository) GetItem(ctx context.Context, id string) (Item, error) {
	if r == nil {
		return Item{}, errors.New("inventory repository not initialised")
	}
	return getItem(ctx, r.pool, `SELECT `+itemColumns+` FROM stock_items WHERE id=$1`, id)
}

// ListItems lists items ordered by name.
func (r *Repository) ListItems(ctx context.Context, includeArchived bool) ([]Item, error) {
	if r == nil {
		return nil, errors.New("inventory repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM stock_items
WHERE $1 OR NOT archived
ORDER BY name, id`, includeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SumDeltas replays the ledger for an item.
func (r *Repository) SumDeltas(ctx context.Context, itemID string) (decimal.Decimal, error) {
	return sumDeltas(ctx, r.pool, itemID)
}

// ListTransactions pages the ledger newest first using seq as the keyset.
func (r *Repository) ListTransactions(ctx context.Context, itemID string, beforeSeq int64, limit int) ([]Transaction, error) {
	if r == nil {
		return nil, errors.New("inventory repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT `+transactionColumns+` FROM stock_transactions
WHERE item_id=$1 AND ($2 = 0 OR seq < $2)
ORDER BY seq DESC
LIMIT $3`, itemID, beforeSeq, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.Seq, &t.ItemID, &t.Delta, &t.Balance, &t.Reason, &t.Reference, &t.Notes, &t.ActorID, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *txRepository) GetItemForUpdate(ctx context.Context, id string) (Item, error) {
	return getItem(ctx, r.tx, `SELECT `+itemColumns+` FROM stock_items WHERE id=$1 FOR UPDATE`, id)
}

func (r *txRepository) InsertItem(ctx context.Context, item Item) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_items (`+itemColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		item.ID, string(item.ItemKind), item.CatalogItemID, item.Name, item.PriceEntryID, string(item.Unit),
		item.Quantity, item.MinLevel, nullDecimal(item.MaxLevel), string(item.Status), item.Archived, item.CreatedAt, item.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateItem
	}
	return err
}

func (r *txRepository) UpdateItem(ctx context.Context, item Item) error {
	tag, err := r.tx.Exec(ctx, `UPDATE stock_items
SET quantity=$2, min_level=$3, max_level=$4, status=$5, archived=$6, updated_at=$7
WHERE id=$1`, item.ID, item.Quantity, item.MinLevel, nullDecimal(item.MaxLevel), string(item.Status), item.Archived, item.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *txRepository) SumDeltas(ctx context.Context, itemID string) (decimal.Decimal, error) {
	return sumDeltas(ctx, r.tx, itemID)
}

func (r *txRepository) InsertTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO stock_transactions (id, item_id, delta, balance, reason, reference, notes, actor_id, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING seq`,
		t.ID, t.ItemID, t.Delta, t.Balance, t.Reason, t.Reference, t.Notes, t.ActorID, t.CreatedAt).Scan(&t.Seq)
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func getItem(ctx context.Context, q querier, sql, id string) (Item, error) {
	item, err := scanItem(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, err
	}
	return item, nil
}

func sumDeltas(ctx context.Context, q querier, itemID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.QueryRow(ctx, `SELECT COALESCE(SUM(delta), 0) FROM stock_transactions WHERE item_id=$1`, itemID).Scan(&total)
	return total, err
}

func scanItem(row pgx.Row) (Item, error) {
	var (
		item             Item
		kind, unit, stat string
		maxLevel         decimal.NullDecimal
	)
	err := row.Scan(&item.ID, &kind, &item.CatalogItemID, &item.Name, &item.PriceEntryID, &unit,
		&item.Quantity, &item.MinLevel, &maxLevel, &stat, &item.Archived, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	item.ItemKind = catalog.ItemKind(kind)
	item.Unit = units.Unit(unit)
	item.Status = Status(stat)
	if maxLevel.Valid {
		item.MaxLevel = &maxLevel.Decimal
	}
	return item, nil
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}
