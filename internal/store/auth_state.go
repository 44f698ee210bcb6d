package store

import (
	"neuroteach/shared/models"
)

// AuthState is the session state of one browser session.
type AuthState struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
}

// AuthAction is the closed set of auth transitions.
type AuthAction interface {
	authAction()
}

type (
	LoginStart      struct{}
	LoginSuccess    struct{ Session models.Session }
	LoginFailure    struct{}
	RegisterStart   struct{}
	RegisterSuccess struct{ Session models.Session }
	RegisterFailure struct{}
	Logout          struct{}
)

func (LoginStart) authAction()      {}
func (LoginSuccess) authAction()    {}
func (LoginFailure) authAction()    {}
func (RegisterStart) authAction()   {}
func (RegisterSuccess) authAction() {}
func (RegisterFailure) authAction() {}
func (Logout) authAction()          {}

// AuthReducer is the pure auth transition function.
func AuthReducer(state AuthState, action AuthAction) AuthState {
	switch a := action.(type) {
	case LoginStart, RegisterStart:
		state.IsLoading = true
		return state
	case LoginSuccess:
		return authenticated(a.Session)
	case RegisterSuccess:
		return authenticated(a.Session)
	case LoginFailure, RegisterFailure, Logout:
		return AuthState{}
	default:
		return state
	}
}

func authenticated(s models.Session) AuthState {
	user := s.User
	user.Token = s.Token
	return AuthState{
		User:            &user,
		Token:           s.Token,
		IsAuthenticated: true,
	}
}
