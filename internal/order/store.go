package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("order not found")

// Store is the gorm-backed persistence layer for orders.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id uint) (*Order, error) {
	var o Order
	if err := s.db.WithContext(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read order %d: %w", id, err)
	}
	return &o, nil
}

func (s *Store) List(ctx context.Context, offset, limit int) ([]Order, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	var orders []Order
	if err := s.db.WithContext(ctx).Offset(offset).Limit(limit).Order("id asc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListActive returns up to limit orders that are not cancelled.
func (s *Store) ListActive(ctx context.Context, limit int) ([]Order, error) {
	var orders []Order
	if err := s.db.WithContext(ctx).
		Where("status <> ? OR status IS NULL OR status = ''", StatusCancelled).
		Limit(limit).Order("id asc").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list active orders: %w", err)
	}
	return orders, nil
}

func (s *Store) Create(ctx context.Context, o *Order) error {
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, id uint, fields map[string]interface{}) (*Order, error) {
	res := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Order{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
