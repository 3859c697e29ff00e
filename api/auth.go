package api

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) Login(ctx context.Context, payload LoginRequest) (AuthResponse, error) {
	req, err := c.newPublicRequest(ctx, http.MethodPost, "/auth/login/", payload)
	if err != nil {
		return AuthResponse{}, err
	}
	return c.doAuth(req, "login")
}

func (c *Client) Register(ctx context.Context, payload RegisterRequest) (AuthResponse, error) {
	req, err := c.newPublicRequest(ctx, http.MethodPost, "/auth/register/", payload)
	if err != nil {
		return AuthResponse{}, err
	}
	return c.doAuth(req, "register")
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	req, err := c.newAPIRequest(ctx, http.MethodDelete, "/users/delete_account/", nil, nil)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

func (c *Client) doAuth(req *http.Request, action string) (AuthResponse, error) {
	var resp AuthResponse
	if err := c.doJSON(req, &resp); err != nil {
		return AuthResponse{}, err
	}
	if resp.Access == "" {
		return AuthResponse{}, fmt.Errorf("%s failed: missing access token", action)
	}
	return resp, nil
}
