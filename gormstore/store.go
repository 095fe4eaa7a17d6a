package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/blogapp/blogauth"
)

// Store implements [blogauth.AccountStore] on a gorm-managed database.
type Store struct {
	db *gorm.DB
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to Postgres, runs migrations, and returns a ready Store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := New(db)
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// AutoMigrate creates or updates the users, roles, and user_roles tables.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&User{}, &Role{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// FindByIdentifier looks an account up by username, roles included.
func (s *Store) FindByIdentifier(ctx context.Context, identifier string) (blogauth.AccountRecord, error) {
	var user User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Where("username = ?", identifier).
		First(&user).Error
	if err != nil {
		return blogauth.AccountRecord{}, translateLookupErr(err)
	}
	return toRecord(user), nil
}

// FindBySubject looks an account up by its stable principal ID.
func (s *Store) FindBySubject(ctx context.Context, subject string) (blogauth.AccountRecord, error) {
	var user User
	err := s.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", subject).
		First(&user).Error
	if err != nil {
		return blogauth.AccountRecord{}, translateLookupErr(err)
	}
	return toRecord(user), nil
}

// Create persists a new account and its role rows in one transaction.
// Role rows are shared: an existing role name is attached, not duplicated.
func (s *Store) Create(ctx context.Context, input blogauth.CreateAccountInput) (blogauth.AccountRecord, error) {
	var created User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("username = ?", input.Identifier).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return blogauth.ErrAccountExists
		}

		roles := make([]Role, 0, len(input.Roles))
		for _, name := range input.Roles {
			var role Role
			if err := tx.Where(Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
				return err
			}
			roles = append(roles, role)
		}

		created = User{
			ID:           input.PrincipalID,
			Username:     input.Identifier,
			DisplayName:  input.DisplayName,
			PasswordHash: input.PasswordHash,
			IsActive:     true,
			Roles:        roles,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		if errors.Is(err, blogauth.ErrAccountExists) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return blogauth.AccountRecord{}, blogauth.ErrAccountExists
		}
		return blogauth.AccountRecord{}, fmt.Errorf("create account: %w", err)
	}

	return toRecord(created), nil
}

// SetEnabled flips an account's active flag, the administrative lever that
// makes outstanding tokens stop authenticating on their next use.
func (s *Store) SetEnabled(ctx context.Context, subject string, enabled bool) error {
	res := s.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", subject).
		Update("is_active", enabled)
	if res.Error != nil {
		return fmt.Errorf("update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return blogauth.ErrAccountNotFound
	}
	return nil
}

// GrantRole attaches a role to an account, creating the role row if needed.
func (s *Store) GrantRole(ctx context.Context, subject, roleName string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Where("id = ?", subject).First(&user).Error; err != nil {
			return translateLookupErr(err)
		}
		var role Role
		if err := tx.Where(Role{Name: roleName}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
		return tx.Model(&user).Association("Roles").Append(&role)
	})
}

func toRecord(user User) blogauth.AccountRecord {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Name)
	}
	return blogauth.AccountRecord{
		PrincipalID:  user.ID,
		Identifier:   user.Username,
		DisplayName:  user.DisplayName,
		PasswordHash: user.PasswordHash,
		Enabled:      user.IsActive,
		Roles:        roles,
	}
}

func translateLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return blogauth.ErrAccountNotFound
	}
	return err
}
