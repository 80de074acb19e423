package user

// Seed returns the records the collection holds at startup and after a reset.
// A fresh slice is returned on every call so callers may keep it.
func Seed() []User {
	return []User{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
	}
}

// MaxID returns the largest ID in users, or 0 for an empty slice.
func MaxID(users []User) int64 {
	var highest int64
	for _, u := range users {
		if u.ID > highest {
			highest = u.ID
		}
	}
	return highest
}
