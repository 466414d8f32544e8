package domain

import "strings"

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Session pairs an identity with the bearer token that authorizes it.
// The zero value is the signed-out session.
type Session struct {
	User  *User
	Token string
}

// NewSession builds an active session. Identity and token come as a pair.
func NewSession(user User, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" || strings.TrimSpace(user.ID) == "" {
		return Session{}, ErrIncompleteSession
	}

	return Session{User: &user, Token: token}, nil
}

// UserFromUsername is the identity minted after a token login; the token
// endpoint does not return user details.
func UserFromUsername(username string) User {
	return User{ID: username, Username: username}
}

func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}
