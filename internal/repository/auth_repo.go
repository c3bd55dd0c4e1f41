package repository

import (
	"context"
	"errors"
	"net/http"

	"osa-dashboard/pkg/osaapi"
)

type AuthRepository interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// LoginResult is what the upstream login returns. Only the status is
// contractual; the token is used when present.
type LoginResult struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	User  struct {
		Username string `json:"username"`
	} `json:"user"`
}

type authRepo struct {
	api *osaapi.Client
}

func NewAuthRepo(api *osaapi.Client) AuthRepository {
	return &authRepo{api}
}

func (r *authRepo) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}

	var res LoginResult
	if err := r.api.SendJSON(ctx, http.MethodPost, "/api/login", body, &res); err != nil {
		if !errors.Is(err, osaapi.ErrDecode) {
			return nil, err
		}
		// A 2xx with an unreadable body is still a successful login.
		res = LoginResult{OK: true}
	}
	if res.User.Username == "" {
		res.User.Username = username
	}
	return &res, nil
}
