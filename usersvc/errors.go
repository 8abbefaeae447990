package usersvc

import "fmt"

type (
	UserExists struct {
		Email string
	}

	UnknownEmail struct {
		Email string
	}

	InvalidResetToken struct{}

	MissingCredentials struct{}
)

func (u UserExists) Error() string {
	return fmt.Sprintf("user %v already exists", u.Email)
}

func (u UnknownEmail) Error() string {
	return fmt.Sprintf("user %v does not exist", u.Email)
}

func (InvalidResetToken) Error() string {
	return "invalid reset token"
}

func (MissingCredentials) Error() string {
	return "email and password are required"
}
