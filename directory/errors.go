package directory

import "fmt"

type (
	UserNotFound struct {
		ID    string
		Email string
	}

	InvalidFilter struct{}
)

func (u UserNotFound) Error() string {
	if u.ID != "" {
		return fmt.Sprintf("user %v not found", u.ID)
	}
	return "user not found"
}

func (InvalidFilter) Error() string {
	return "filter must set at least one field"
}
