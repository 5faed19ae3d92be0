// Package store implements persistence for users and transactions on top of gorm.
//
// Lookups that resolve nothing return *apperr.NotFoundError and unique index
// violations return *apperr.ValidationError; every other error is the
// driver's, left for the caller to wrap.
package store

import (
	"context"
	"errors"

	"wallet_api/internal/apperr"
	"wallet_api/internal/domain"

	"gorm.io/gorm"
)

// UserPatch carries the fields of a partial user update, nil means unchanged
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
}

// UserStore reads and writes users
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// List returns one page of users projected to their public columns, plus the total count
func (s *UserStore) List(ctx context.Context, page, size int) ([]domain.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []domain.User
	err := s.db.WithContext(ctx).
		Select("id", "first_name", "last_name", "email", "created_at").
		Order("id asc").
		Offset(page * size).
		Limit(size).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// FindByID loads a user by primary key
func (s *UserStore) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, "user", id)
	}
	return &user, nil
}

// FindByEmail loads a user by email
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err, "user", email)
	}
	return &user, nil
}

// FindOrCreate returns the user owning candidate.Email, inserting candidate when none exists.
// The boolean reports whether a row was inserted.
func (s *UserStore) FindOrCreate(ctx context.Context, candidate *domain.User) (*domain.User, bool, error) {
	existing, err := s.FindByEmail(ctx, candidate.Email)
	if err == nil {
		return existing, false, nil
	}
	var notFound *apperr.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, false, err
	}

	user := *candidate
	if user.RoleID == 0 {
		user.RoleID = domain.RoleStandard
	}
	err = s.db.WithContext(ctx).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race against a concurrent insert of the same email
		existing, err := s.FindByEmail(ctx, candidate.Email)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// Update applies patch to the user and re-reads the editable columns
func (s *UserStore) Update(ctx context.Context, id uint, patch UserPatch) (*domain.User, error) {
	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if patch.FirstName != nil {
		changes["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		changes["last_name"] = *patch.LastName
	}
	if patch.Email != nil {
		changes["email"] = *patch.Email
	}
	if len(changes) > 0 {
		err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(changes).Error
		if err != nil {
			return nil, translate(err, "user", id)
		}
	}

	var user domain.User
	err := s.db.WithContext(ctx).
		Select("id", "first_name", "last_name", "email").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "user", id)
	}
	return &user, nil
}

// SetAvatar stores the public path of the user's avatar
func (s *UserStore) SetAvatar(ctx context.Context, id uint, path string) error {
	result := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("avatar", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

// Delete removes the user, reporting NotFound when no row matched
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user", id)
	}
	return nil
}

func translate(err error, resource string, id any) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Validation("Email provided already existing", apperr.FieldError{Field: "email", Rule: "unique"})
	default:
		return err
	}
}
