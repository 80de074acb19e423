package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "users-api/internal/domain/user"
	pkgerrors "users-api/pkg/errors"
)

// Repository defines the interface for user data access operations.
// Implementations must return *pkgerrors.NotFoundError for absent IDs.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)   // Store a new user and return its assigned ID
	GetByID(ctx context.Context, id int64) (*domain.User, error) // Retrieve user by ID
	Delete(ctx context.Context, id int64) (int64, error)         // Delete user by ID
	List(ctx context.Context) ([]domain.User, error)             // All users ordered by ID
	Reset(ctx context.Context, seed []domain.User) error         // Replace the collection with seed
}

// Usecase implements the business logic for user management operations.
type Usecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	fields := make([]string, 0, len(validationErrors))
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, e.Field())
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError(strings.Join(fields, ","), strings.Join(messages, ", "))
}

func invalidID(id int64) error {
	return pkgerrors.NewValidationError("ID", fmt.Sprintf("invalid user id: %d", id))
}

// CreateUser validates the request and stores a new user.
func (uc *Usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	uc.log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u := &domain.User{
		Name:  in.Name,
		Email: in.Email,
	}
	id, err := uc.repo.Create(ctx, u)
	if err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	return &CreateUserResponse{ID: id, Name: u.Name, Email: u.Email}, nil
}

// DeleteUser removes the user with the given ID.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	uc.log.Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		uc.log.Warn("delete user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, invalidID(in.ID)
	}

	id, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			uc.log.Warn("user to delete not found", zap.Int64("id", in.ID))
		} else {
			uc.log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, err
	}

	return &DeleteUserResponse{ID: id}, nil
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	if in.ID <= 0 {
		uc.log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, invalidID(in.ID)
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			uc.log.Debug("user not found", zap.Int64("id", in.ID))
		} else {
			uc.log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		}
		return nil, err
	}

	return &GetUserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}, nil
}

// ListUsers returns every user ordered by ID. An empty collection yields an empty, non-nil slice.
func (uc *Usecase) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	domainUsers, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = User{
			ID:    du.ID,
			Name:  du.Name,
			Email: du.Email,
		}
	}

	uc.log.Debug("listed users", zap.Int("count", len(users)))
	return &ListUsersResponse{Users: users}, nil
}

// ResetUsers restores the collection to the seed state.
func (uc *Usecase) ResetUsers(ctx context.Context) (*ResetUsersResponse, error) {
	seed := domain.Seed()

	if err := uc.repo.Reset(ctx, seed); err != nil {
		uc.log.Error("failed to reset users", zap.Error(err))
		return nil, err
	}

	uc.log.Info("users reset to seed state", zap.Int("count", len(seed)))
	return &ResetUsersResponse{Count: len(seed)}, nil
}
