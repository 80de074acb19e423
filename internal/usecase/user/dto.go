package user

// CreateUserRequest represents the request payload for creating a new user.
// Only presence is checked; the service does not validate formats.
type CreateUserRequest struct {
	Name  string `validate:"required"`
	Email string `validate:"required"`
}

// CreateUserResponse carries the stored user, including its assigned ID.
type CreateUserResponse struct {
	ID    int64
	Name  string
	Email string
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// DeleteUserResponse represents the response payload after deleting a user.
type DeleteUserResponse struct {
	ID int64
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	ID    int64
	Name  string
	Email string
}

// ListUsersResponse holds the whole collection ordered by ID.
type ListUsersResponse struct {
	Users []User
}

// ResetUsersResponse reports how many records the collection holds after a reset.
type ResetUsersResponse struct {
	Count int
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
