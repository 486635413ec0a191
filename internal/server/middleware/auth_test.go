package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func callAuth(t *testing.T, configuredKey, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/entities", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	cc := &AppContext{c, &App{MasterAPIKey: configuredKey}}

	handler := AuthMiddleware(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := handler(cc); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		authHeader    string
		wantStatus    int
	}{
		{
			name:          "valid key passes",
			configuredKey: "secret",
			authHeader:    "Bearer secret",
			wantStatus:    http.StatusOK,
		},
		{
			name:          "wrong key rejected",
			configuredKey: "secret",
			authHeader:    "Bearer wrong",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "missing header rejected",
			configuredKey: "secret",
			authHeader:    "",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "non-bearer scheme rejected",
			configuredKey: "secret",
			authHeader:    "Basic secret",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "unconfigured key rejects everything",
			configuredKey: "",
			authHeader:    "Bearer anything",
			wantStatus:    http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := callAuth(t, tc.configuredKey, tc.authHeader)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
