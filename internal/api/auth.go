package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/diarynotes/diary-go/internal/model"
)

var loginPath = []string{"v1", "authenticate-by-signup-code-or-email"}

// Login authenticates with an email or signup code and a PIN. It does not touch the session;
// persisting the result is the caller's job.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginData, error) {
	env, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   loginPath,
		body:   req,
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			statusErr.Message = loginStatusMessage(statusErr.Code, req.SignUpCode != nil)
		}
		return model.LoginData{}, err
	}
	if !env.Success || len(env.Data) == 0 || string(env.Data) == "null" {
		return model.LoginData{}, apiError(env.Message, "Login failed")
	}

	var data model.LoginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return model.LoginData{}, fmt.Errorf("%w: login data: %v", ErrParse, err)
	}
	if data.Authorization == "" {
		return model.LoginData{}, fmt.Errorf("%w: login response has no authorization token", ErrParse)
	}
	if data.User.ID == "" {
		return model.LoginData{}, fmt.Errorf("%w: login response has no user id", ErrParse)
	}
	return data, nil
}

func loginStatusMessage(code int, byCode bool) string {
	switch code {
	case http.StatusUnauthorized:
		if byCode {
			return "Invalid signup code or password"
		}
		return "Invalid credentials"
	case http.StatusNotFound:
		if byCode {
			return "Signup code not found"
		}
		return "User not found"
	case http.StatusInternalServerError:
		return "Server error. Please try again later"
	default:
		return "Login failed. Please try again"
	}
}
