package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ordelo/orders-ms/internal/adapter/storage"
	"github.com/ordelo/orders-ms/internal/core/domain"
	"github.com/ordelo/orders-ms/internal/core/port"
)

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

// CreateOrder persists the order and all its items in one transaction.
// Either everything commits or nothing does.
func (or *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		orderSt := or.db.QueryBuilder.Insert("orders").
			Columns("id", "status", "total_amount", "total_items", "created_at", "updated_at").
			Values(order.ID, order.Status, order.TotalAmount, order.TotalItems,
				order.CreatedAt, order.UpdatedAt)

		sql, args, err := orderSt.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}

		itemsSt := or.db.QueryBuilder.Insert("order_items").
			Columns("order_id", "product_id", "quantity", "price")
		for _, item := range order.Items {
			itemsSt = itemsSt.Values(order.ID, item.ProductID, item.Quantity, item.Price)
		}

		sql, args, err = itemsSt.ToSql()
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, sql, args...)
		return err
	})

	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrConflictingData
		}
		return nil, err
	}

	return order, nil
}

func (or *Repository) ReadOrder(ctx context.Context, id string) (*domain.Order, error) {
	statement := or.db.QueryBuilder.
		Select("id", "status", "total_amount", "total_items", "paid", "paid_at",
			"coalesce(payment_reference, '')", "created_at", "updated_at").
		From("orders").
		Where(sq.Eq{"id": id})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order := domain.Order{}

	err = or.db.QueryRow(ctx, sql, args...).Scan(
		&order.ID,
		&order.Status,
		&order.TotalAmount,
		&order.TotalItems,
		&order.Paid,
		&order.PaidAt,
		&order.PaymentReference,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	items, err := or.readItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	receipt, err := or.readReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Receipt = receipt

	return &order, nil
}

func (or *Repository) readItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	statement := or.db.QueryBuilder.
		Select("product_id", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		item := domain.OrderItem{}
		err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (or *Repository) readReceipt(ctx context.Context, orderID string) (*domain.OrderReceipt, error) {
	statement := or.db.QueryBuilder.
		Select("receipt_url", "created_at").
		From("order_receipts").
		Where(sq.Eq{"order_id": orderID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	receipt := domain.OrderReceipt{}
	err = or.db.QueryRow(ctx, sql, args...).Scan(&receipt.ReceiptURL, &receipt.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &receipt, nil
}

func (or *Repository) ListOrders(ctx context.Context, filter port.OrderFilter) ([]*domain.Order, int64, error) {
	countSt := or.db.QueryBuilder.Select("count(*)").From("orders")
	if filter.Status != nil {
		countSt = countSt.Where(sq.Eq{"status": *filter.Status})
	}

	sql, args, err := countSt.ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = or.db.QueryRow(ctx, sql, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	statement := or.db.QueryBuilder.
		Select("id", "status", "total_amount", "total_items", "paid", "paid_at",
			"coalesce(payment_reference, '')", "created_at", "updated_at").
		From("orders").
		OrderBy("created_at").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit)
	if filter.Status != nil {
		statement = statement.Where(sq.Eq{"status": *filter.Status})
	}

	sql, args, err = statement.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]*domain.Order, 0)
	for rows.Next() {
		order := domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.Status,
			&order.TotalAmount,
			&order.TotalItems,
			&order.Paid,
			&order.PaidAt,
			&order.PaymentReference,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, &order)
	}

	return list, total, rows.Err()
}

// UpdateOrderStatus applies the transition only while the order still
// holds the expected prior status. A concurrent transition makes the
// conditional update match nothing and the caller gets
// domain.ErrNoUpdatedData.
func (or *Repository) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	statement := or.db.QueryBuilder.Update("orders").
		Set("status", to).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id, "status": from})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	tag, err := or.db.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if _, err := or.ReadOrder(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrNoUpdatedData
	}

	return or.ReadOrder(ctx, id)
}

// MarkOrderPaid is the compare-and-swap half of the payment flow: the
// update is keyed on the order being unpaid and still PENDING, so of
// two concurrent confirmations exactly one wins and a terminal order
// never becomes paid. The receipt insert is idempotent on order_id.
func (or *Repository) MarkOrderPaid(ctx context.Context, id string, paymentRef string, receiptURL string, paidAt time.Time) (*domain.Order, error) {
	err := pgx.BeginFunc(ctx, or.db, func(tx pgx.Tx) error {
		updateSt := or.db.QueryBuilder.Update("orders").
			Set("status", domain.OrderStatusPaid).
			Set("paid", true).
			Set("paid_at", paidAt).
			Set("payment_reference", paymentRef).
			Set("updated_at", paidAt).
			Where(sq.Eq{"id": id, "paid": false, "status": domain.OrderStatusPending})

		sql, args, err := updateSt.ToSql()
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNoUpdatedData
		}

		receiptSt := or.db.QueryBuilder.Insert("order_receipts").
			Columns("order_id", "receipt_url", "created_at").
			Values(id, receiptURL, paidAt).
			Suffix("ON CONFLICT (order_id) DO NOTHING")

		sql, args, err = receiptSt.ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, sql, args...)
		return err
	})

	if err != nil {
		return nil, err
	}

	return or.ReadOrder(ctx, id)
}
