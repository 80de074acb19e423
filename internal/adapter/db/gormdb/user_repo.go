package gormdb

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"users-api/internal/domain/user"
	pkgerrors "users-api/pkg/errors"
)

// UserRepo implements the user Repository on top of GORM.
// It works with any dialector the service wires (sqlite, postgres, mysql).
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&UserSchema{})
}

func toDomain(m UserSchema) user.User {
	return user.User{ID: m.ID, Name: m.Name, Email: m.Email}
}

func notFound(id int64) error {
	return pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}

// Create inserts a new user and writes the generated ID back into u.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return 0, pkgerrors.NewInternalError("failed to create user", err)
	}

	u.ID = model.ID
	r.log.Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepo) Delete(ctx context.Context, id int64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if result.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(result.Error), zap.Int64("id", id))
		return 0, pkgerrors.NewInternalError("failed to delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, notFound(id)
	}

	r.log.Info("user deleted in db", zap.Int64("id", id))
	return id, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}

	u := toDomain(model)
	return &u, nil
}

// List retrieves all users ordered by ID.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = toDomain(model)
	}

	return users, nil
}

// Reset deletes every row and inserts seed with its explicit IDs in one transaction.
func (r *UserRepo) Reset(ctx context.Context, seed []user.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&UserSchema{}).Error; err != nil {
			return fmt.Errorf("failed to clear users: %w", err)
		}

		if len(seed) > 0 {
			models := make([]UserSchema, len(seed))
			for i, u := range seed {
				models[i] = UserSchema{ID: u.ID, Name: u.Name, Email: u.Email}
			}
			if err := tx.Create(&models).Error; err != nil {
				return fmt.Errorf("failed to insert seed users: %w", err)
			}
		}

		return alignSequence(tx)
	})
	if err != nil {
		r.log.Error("failed to reset users in db", zap.Error(err))
		return pkgerrors.NewInternalError("failed to reset users", err)
	}

	r.log.Info("users reset in db", zap.Int("count", len(seed)))
	return nil
}

// alignSequence moves the postgres id sequence past explicitly inserted IDs.
// sqlite and mysql derive the next auto-increment value from the table itself.
func alignSequence(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	err := tx.Exec(
		"SELECT setval(pg_get_serial_sequence('users', 'id'), COALESCE((SELECT MAX(id) FROM users), 0) + 1, false)",
	).Error
	if err != nil {
		return fmt.Errorf("failed to align id sequence: %w", err)
	}
	return nil
}
