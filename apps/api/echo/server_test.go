package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durusapp/durus/core/user"
)

func TestHome(t *testing.T) {
	env := setupAPI(t)
	rec := env.do(newRequest(t, http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	env := setupAPI(t)
	env.createUser(t, "nana", user.RoleSecretary)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{name: "success", body: map[string]string{"username": "nana", "password": "s3cr3tpwd"}, wantCode: http.StatusOK},
		{name: "wrong password", body: map[string]string{"username": "nana", "password": "nope"}, wantCode: http.StatusUnauthorized},
		{name: "unknown user", body: map[string]string{"username": "ghost", "password": "s3cr3tpwd"}, wantCode: http.StatusUnauthorized},
		{name: "missing fields", body: map[string]string{}, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(newRequest(t, http.MethodPost, "/v1/login", tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusOK {
				var resp tokenResponse
				decode(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
				assert.Equal(t, "nana", resp.User.Username)
			}
		})
	}
}

func TestAuthRequired(t *testing.T) {
	env := setupAPI(t)

	rec := env.do(newRequest(t, http.MethodGet, "/v1/students", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(newAuthRequest(t, http.MethodGet, "/v1/students", "not-a-token", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGating(t *testing.T) {
	env := setupAPI(t)
	admin := getToken(t, env.createUser(t, "boss", user.RoleAdmin))
	secretary := getToken(t, env.createUser(t, "nana", user.RoleSecretary))
	accountant := getToken(t, env.createUser(t, "momo", user.RoleAccountant))
	tchr := getToken(t, env.createUser(t, "karim", user.RoleTeacher))

	newStudent := map[string]string{"name": "Amine", "code": "std001"}

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		token    string
		wantCode int
	}{
		{name: "teacher can list students", method: http.MethodGet, path: "/v1/students", token: tchr, wantCode: http.StatusOK},
		{name: "teacher cannot create students", method: http.MethodPost, path: "/v1/students", body: newStudent, token: tchr, wantCode: http.StatusForbidden},
		{name: "accountant cannot create students", method: http.MethodPost, path: "/v1/students", body: newStudent, token: accountant, wantCode: http.StatusForbidden},
		{name: "secretary creates students", method: http.MethodPost, path: "/v1/students", body: newStudent, token: secretary, wantCode: http.StatusCreated},
		{name: "secretary cannot list transactions", method: http.MethodGet, path: "/v1/transactions", token: secretary, wantCode: http.StatusForbidden},
		{name: "accountant lists transactions", method: http.MethodGet, path: "/v1/transactions", token: accountant, wantCode: http.StatusOK},
		{name: "accountant gets report", method: http.MethodGet, path: "/v1/transactions/report?year=2025", token: accountant, wantCode: http.StatusOK},
		{name: "secretary cannot manage users", method: http.MethodGet, path: "/v1/users", token: secretary, wantCode: http.StatusForbidden},
		{name: "admin manages users", method: http.MethodGet, path: "/v1/users", token: admin, wantCode: http.StatusOK},
		{name: "admin can do accountant work", method: http.MethodGet, path: "/v1/transactions", token: admin, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(newAuthRequest(t, tt.method, tt.path, tt.token, tt.body))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestTokenRefresh(t *testing.T) {
	env := setupAPI(t)
	usr := env.createUser(t, "nana", user.RoleSecretary)
	token := getToken(t, usr)

	rec := env.do(newAuthRequest(t, http.MethodPost, "/v1/token-refresh", token, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, usr.ID, resp.User.ID)
}

func TestChangePassword(t *testing.T) {
	env := setupAPI(t)
	usr := env.createUser(t, "nana", user.RoleSecretary)
	token := getToken(t, usr)

	body := map[string]string{
		"old_password":     "s3cr3tpwd",
		"password":         "n3wpassw0rd",
		"password_confirm": "n3wpassw0rd",
	}
	rec := env.do(newAuthRequest(t, http.MethodPost, "/v1/password-change", token, body))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// old password no longer works
	rec = env.do(newRequest(t, http.MethodPost, "/v1/login", map[string]string{"username": "nana", "password": "s3cr3tpwd"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = env.do(newRequest(t, http.MethodPost, "/v1/login", map[string]string{"username": "nana", "password": "n3wpassw0rd"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	// wrong old password is rejected
	rec = env.do(newAuthRequest(t, http.MethodPost, "/v1/password-change", token, map[string]string{
		"old_password": "nope", "password": "whatever123", "password_confirm": "whatever123",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
