package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("lead not found")
	ErrConflict = errors.New("login already exists")
)

// Store is the gorm-backed persistence layer for leads.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id uint) (*Lead, error) {
	var l Lead
	if err := s.db.WithContext(ctx).First(&l, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read lead %d: %w", id, err)
	}
	return &l, nil
}

func (s *Store) GetByLogin(ctx context.Context, login string) (*Lead, error) {
	var l Lead
	if err := s.db.WithContext(ctx).Where("login = ?", login).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read lead by login: %w", err)
	}
	return &l, nil
}

func (s *Store) List(ctx context.Context, offset, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	var leads []Lead
	if err := s.db.WithContext(ctx).Offset(offset).Limit(limit).Order("id asc").Find(&leads).Error; err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (s *Store) Create(ctx context.Context, l *Lead) error {
	if err := s.db.WithContext(ctx).Create(l).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// Update applies the given column set to one lead in a single write.
func (s *Store) Update(ctx context.Context, id uint, fields map[string]interface{}) (*Lead, error) {
	res := s.db.WithContext(ctx).Model(&Lead{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update lead %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&Lead{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete lead %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// gorm does not expose a portable duplicate-key error, so match the
// driver messages (postgres and sqlite).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
