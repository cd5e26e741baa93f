package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "tester",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if role != "" {
		claims["role"] = role
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuth_APIKeyMode(t *testing.T) {
	env := testApp(t, AuthConfig{Mode: "api-key", APIKey: "test-key"})

	resp, _ := doJSON(t, env.app, "GET", "/api/v1/projects/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, env.app, "GET", "/api/v1/projects/", nil, map[string]string{
		"Authorization": "Bearer wrong-key",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, env.app, "GET", "/api/v1/projects/", nil, map[string]string{
		"Authorization": "test-key",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "non-bearer scheme rejected")

	resp, _ = doJSON(t, env.app, "GET", "/api/v1/projects/", nil, map[string]string{
		"Authorization": "Bearer test-key",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_ProbesSkipAuth(t *testing.T) {
	env := testApp(t, AuthConfig{Mode: "api-key", APIKey: "test-key"})

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, _ := doJSON(t, env.app, "GET", path, nil, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestAuth_JWTMode(t *testing.T) {
	const secret = "test-jwt-secret"
	env := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: secret})

	resp, _ := doJSON(t, env.app, "GET", "/api/v1/projects/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, env.app, "GET", "/api/v1/projects/", nil, map[string]string{
		"Authorization": "Bearer " + signToken(t, "other-secret", "admin"),
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "wrong signature rejected")

	resp, _ = doJSON(t, env.app, "GET", "/api/v1/projects/", nil, map[string]string{
		"Authorization": "Bearer " + signToken(t, secret, "admin"),
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_JWTRoleEnforcement(t *testing.T) {
	const secret = "test-jwt-secret"
	env := testApp(t, AuthConfig{Mode: "jwt", JWTSecret: secret})
	require.NoError(t, env.projects.Initialize())
	target := env.projects.List()[0].ID

	// No role claim defaults to readonly; delete requires operator.
	readonly := map[string]string{"Authorization": "Bearer " + signToken(t, secret, "")}
	resp, _ := doJSON(t, env.app, "DELETE", "/api/v1/projects/"+target, nil, readonly)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	operator := map[string]string{"Authorization": "Bearer " + signToken(t, secret, "operator")}
	resp, _ = doJSON(t, env.app, "DELETE", "/api/v1/projects/"+target, nil, operator)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestVerifyJWT_RoleMapping(t *testing.T) {
	const secret = "s"
	tests := []struct {
		role string
		want Role
	}{
		{"admin", RoleAdmin},
		{"operator", RoleOperator},
		{"readonly", RoleReadOnly},
		{"", RoleReadOnly},
	}
	for _, tt := range tests {
		got, err := verifyJWT(signToken(t, secret, tt.role), secret)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "role %q", tt.role)
	}
}
