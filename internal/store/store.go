package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/model"
	"campus-laundry-backend/internal/seed"
)

// Store defines the interface for all database operations. Every record
// operation is scoped to one session.
type Store interface {
	Seed(ctx context.Context, sessionID string, ds seed.Dataset) error
	Purge(ctx context.Context, sessionID string) error
	SessionIDs(ctx context.Context) ([]string, error)

	ListOrders(ctx context.Context, sessionID string) ([]model.Order, error)
	CreateOrder(ctx context.Context, sessionID string, order model.Order) (model.Order, error)
	AdvanceOrder(ctx context.Context, sessionID, orderID string) (model.Order, bool, error)
	SetOrderStatus(ctx context.Context, sessionID, orderID string, target laundry.OrderStatus) (model.Order, error)

	ListComplaints(ctx context.Context, sessionID string) ([]model.Complaint, error)
	CreateComplaint(ctx context.Context, sessionID string, complaint model.Complaint) (model.Complaint, error)
	ResolveComplaint(ctx context.Context, sessionID, complaintID string) (model.Complaint, bool, error)

	ListStock(ctx context.Context, sessionID string) ([]model.Stock, error)
	AdjustStock(ctx context.Context, sessionID, stockID string, delta int) (model.Stock, error)
	LowStock(ctx context.Context) ([]model.Stock, error)

	SaveSubscription(ctx context.Context, sub model.PushSubscription) error
	GetSubscription(ctx context.Context, sessionID, endpoint string) (model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscriptionsFor(ctx context.Context, sessionID string) ([]model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Seed inserts a session's starting records in one transaction.
func (s *gormStore) Seed(ctx context.Context, sessionID string, ds seed.Dataset) error {
	for i := range ds.Orders {
		ds.Orders[i].SessionID = sessionID
	}
	for i := range ds.Complaints {
		ds.Complaints[i].SessionID = sessionID
	}
	for i := range ds.Stock {
		ds.Stock[i].SessionID = sessionID
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ds.Orders) > 0 {
			if err := tx.Create(&ds.Orders).Error; err != nil {
				return fmt.Errorf("failed to seed orders: %w", err)
			}
		}
		if len(ds.Complaints) > 0 {
			if err := tx.Create(&ds.Complaints).Error; err != nil {
				return fmt.Errorf("failed to seed complaints: %w", err)
			}
		}
		if len(ds.Stock) > 0 {
			if err := tx.Create(&ds.Stock).Error; err != nil {
				return fmt.Errorf("failed to seed stock: %w", err)
			}
		}
		return nil
	})
}

// Purge removes everything a session owns.
func (s *gormStore) Purge(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range sessionTables() {
			if err := tx.Where("session_id = ?", sessionID).Delete(table).Error; err != nil {
				return fmt.Errorf("failed to purge session %s: %w", sessionID, err)
			}
		}
		return nil
	})
}

// SessionIDs lists every session that owns at least one record.
func (s *gormStore) SessionIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, table := range sessionTables() {
		var ids []string
		if err := s.db.WithContext(ctx).Model(table).Distinct("session_id").Pluck("session_id", &ids).Error; err != nil {
			return nil, fmt.Errorf("failed to list session ids: %w", err)
		}
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out, nil
}

// --- Orders ---

func (s *gormStore) ListOrders(ctx context.Context, sessionID string) ([]model.Order, error) {
	var orders []model.Order
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("seq").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// CreateOrder appends order to the session, assigning the next sequential ID.
func (s *gormStore) CreateOrder(ctx context.Context, sessionID string, order model.Order) (model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSeq(tx, &model.Order{}, sessionID)
		if err != nil {
			return err
		}
		order.SessionID = sessionID
		order.Seq = seq
		order.ID = laundry.FormatOrderID(seq)
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	return order, err
}

// AdvanceOrder moves an order to its next status. A delivered order is
// returned unchanged with changed=false.
func (s *gormStore) AdvanceOrder(ctx context.Context, sessionID, orderID string) (model.Order, bool, error) {
	var changed bool
	order, err := s.updateOrder(ctx, sessionID, orderID, func(current laundry.OrderStatus) (laundry.OrderStatus, error) {
		next, ok := laundry.Advance(current)
		changed = ok
		return next, nil
	})
	return order, changed, err
}

// SetOrderStatus applies an explicit transition; only the immediate
// successor is accepted.
func (s *gormStore) SetOrderStatus(ctx context.Context, sessionID, orderID string, target laundry.OrderStatus) (model.Order, error) {
	return s.updateOrder(ctx, sessionID, orderID, func(current laundry.OrderStatus) (laundry.OrderStatus, error) {
		if err := laundry.Transition(current, target); err != nil {
			return current, err
		}
		return target, nil
	})
}

func (s *gormStore) updateOrder(ctx context.Context, sessionID, orderID string, transition func(laundry.OrderStatus) (laundry.OrderStatus, error)) (model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ? AND id = ?", sessionID, orderID).First(&order).Error; err != nil {
			return notFound(err, "order", orderID)
		}

		next, err := transition(order.Status)
		if err != nil {
			return err
		}
		if next == order.Status {
			return nil
		}

		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return fmt.Errorf("failed to update order %s: %w", orderID, err)
		}
		order.Status = next
		return nil
	})
	return order, err
}

// --- Complaints ---

// ListComplaints returns the newest complaint first.
func (s *gormStore) ListComplaints(ctx context.Context, sessionID string) ([]model.Complaint, error) {
	var complaints []model.Complaint
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("seq DESC").Find(&complaints).Error; err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

func (s *gormStore) CreateComplaint(ctx context.Context, sessionID string, complaint model.Complaint) (model.Complaint, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSeq(tx, &model.Complaint{}, sessionID)
		if err != nil {
			return err
		}
		complaint.SessionID = sessionID
		complaint.Seq = seq
		complaint.ID = laundry.FormatComplaintID(seq)
		if err := tx.Create(&complaint).Error; err != nil {
			return fmt.Errorf("failed to create complaint: %w", err)
		}
		return nil
	})
	return complaint, err
}

func (s *gormStore) ResolveComplaint(ctx context.Context, sessionID, complaintID string) (model.Complaint, bool, error) {
	var complaint model.Complaint
	var changed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ? AND id = ?", sessionID, complaintID).First(&complaint).Error; err != nil {
			return notFound(err, "complaint", complaintID)
		}

		var next laundry.ComplaintStatus
		next, changed = laundry.Resolve(complaint.Status)
		if !changed {
			return nil
		}

		if err := tx.Model(&complaint).Update("status", next).Error; err != nil {
			return fmt.Errorf("failed to resolve complaint %s: %w", complaintID, err)
		}
		complaint.Status = next
		return nil
	})
	return complaint, changed, err
}

// --- Stock ---

func (s *gormStore) ListStock(ctx context.Context, sessionID string) ([]model.Stock, error) {
	var items []model.Stock
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("seq").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	return items, nil
}

// AdjustStock adds delta to an item's quantity, never going below zero.
func (s *gormStore) AdjustStock(ctx context.Context, sessionID, stockID string, delta int) (model.Stock, error) {
	var item model.Stock
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ? AND id = ?", sessionID, stockID).First(&item).Error; err != nil {
			return notFound(err, "stock item", stockID)
		}

		next := laundry.Adjust(item.CurrentStock, delta)
		if next == item.CurrentStock {
			return nil
		}

		if err := tx.Model(&item).Update("current_stock", next).Error; err != nil {
			return fmt.Errorf("failed to adjust stock %s: %w", stockID, err)
		}
		item.CurrentStock = next
		return nil
	})
	return item, err
}

// LowStock returns every item, across all sessions, at or below its threshold.
func (s *gormStore) LowStock(ctx context.Context) ([]model.Stock, error) {
	var items []model.Stock
	if err := s.db.WithContext(ctx).
		Where("current_stock <= min_threshold").
		Order("session_id").Order("seq").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	return items, nil
}

// --- Push subscriptions ---

// SaveSubscription registers an endpoint for a session, rotating its keys when
// the session already owns it. An endpoint held by another session is left
// untouched and reported as a conflict.
func (s *gormStore) SaveSubscription(ctx context.Context, sub model.PushSubscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PushSubscription
		err := tx.Where("endpoint = ?", sub.Endpoint).Limit(1).Find(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to load subscription: %w", err)
		}
		if existing.Endpoint != "" && existing.SessionID != sub.SessionID {
			return fmt.Errorf("subscription endpoint is registered to another session: %w", laundry.ErrConflict)
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error
		if err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, sessionID, endpoint string) (model.PushSubscription, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Where("session_id = ? AND endpoint = ?", sessionID, endpoint).First(&sub).Error
	if err != nil {
		return sub, notFound(err, "subscription", endpoint)
	}
	return sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{}, "endpoint = ?", endpoint).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

func (s *gormStore) SubscriptionsFor(ctx context.Context, sessionID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	return subs, nil
}

// --- Helpers ---

func sessionTables() []any {
	return []any{&model.Order{}, &model.Complaint{}, &model.Stock{}, &model.PushSubscription{}}
}

func nextSeq(tx *gorm.DB, table any, sessionID string) (int, error) {
	var maxSeq int
	if err := tx.Model(table).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return 0, fmt.Errorf("failed to allocate id: %w", err)
	}
	return maxSeq + 1, nil
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, laundry.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %s: %w", kind, id, err)
}
