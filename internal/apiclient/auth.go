package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/parliamentplating/reservations-web/internal/model"
)

// Login exchanges credentials for a token pair.  It is an anonymous call.
func (a *API) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := a.sendJSON(ctx, http.MethodPost, "/auth/login/", req, &out)
	return out, err
}

// Register creates an attendee account and returns a token pair.
func (a *API) Register(ctx context.Context, req model.RegisterRequest) (model.AuthResponse, error) {
	var out model.AuthResponse
	err := a.sendJSON(ctx, http.MethodPost, "/auth/register/", req, &out)
	return out, err
}

// Logout blacklists the refresh token.  Failures are returned but callers
// clear the local session regardless.
func (a *API) Logout(ctx context.Context, refresh string) error {
	return a.sendJSON(ctx, http.MethodPost, "/auth/logout/", map[string]string{"refresh": refresh}, nil)
}

// Me returns the profile of the session's user.
func (a *API) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := a.getJSON(ctx, "/auth/me/", nil, &u)
	return u, err
}

func (a *API) UpdateMe(ctx context.Context, upd model.ProfileUpdate) (model.User, error) {
	var u model.User
	err := a.sendJSON(ctx, http.MethodPatch, "/auth/me/", upd, &u)
	return u, err
}

func (a *API) Users(ctx context.Context) (List[model.User], error) {
	return getList[model.User](ctx, a, "/auth/users/", nil)
}

func (a *API) UpdateUser(ctx context.Context, id uint64, upd model.ProfileUpdate) (model.User, error) {
	var u model.User
	err := a.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/auth/users/%d/", id), upd, &u)
	return u, err
}

func (a *API) DeleteUser(ctx context.Context, id uint64) error {
	return a.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/auth/users/%d/", id)}, nil)
}
