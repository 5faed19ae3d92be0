package store

import (
	"context"

	"wallet_api/internal/apperr"
	"wallet_api/internal/domain"

	"gorm.io/gorm"
)

// TransactionStore reads and writes transactions
type TransactionStore struct {
	db *gorm.DB
}

// NewTransactionStore creates a TransactionStore
func NewTransactionStore(db *gorm.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// List returns one page of the user's transactions, newest first, plus their total count
func (s *TransactionStore) List(ctx context.Context, userID uint, page, size int) ([]domain.Transaction, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var txs []domain.Transaction
	err := query.
		Order("date desc").
		Order("id desc").
		Offset(page * size).
		Limit(size).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// FindByID loads a transaction by primary key
func (s *TransactionStore) FindByID(ctx context.Context, id uint) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := s.db.WithContext(ctx).First(&tx, id).Error; err != nil {
		return nil, translate(err, "transaction", id)
	}
	return &tx, nil
}

// Create inserts tx and fills its generated fields
func (s *TransactionStore) Create(ctx context.Context, tx *domain.Transaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

// Update writes the editable columns of tx
func (s *TransactionStore) Update(ctx context.Context, tx *domain.Transaction) error {
	return s.db.WithContext(ctx).
		Model(tx).
		Select("amount", "description", "user_id", "category_id", "date", "updated_at").
		Updates(tx).Error
}

// Delete removes the transaction, reporting NotFound when no row matched
func (s *TransactionStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&domain.Transaction{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("transaction", id)
	}
	return nil
}
