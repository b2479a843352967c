package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plantstock/internal/auth"
	"plantstock/internal/contextutil"
	"plantstock/internal/users"
)

func testTokens() *auth.Manager {
	return auth.NewManager([]byte("test-secret"), time.Hour)
}

func TestLoggerMiddleware(t *testing.T) {
	var gotLogger bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLogger = contextutil.LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})

	middleware := LoggerMiddleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("LoggerMiddleware() status = %v, want %v", w.Code, http.StatusOK)
	}
	if !gotLogger {
		t.Error("LoggerMiddleware() should add logger to context")
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := CORS(handler)

	tests := []struct {
		name           string
		method         string
		origin         string
		wantStatusCode int
		wantOrigin     string
	}{
		{
			name:           "preflight OPTIONS",
			method:         http.MethodOptions,
			origin:         "http://localhost:3000",
			wantStatusCode: http.StatusNoContent,
			wantOrigin:     "http://localhost:3000",
		},
		{
			name:           "request with origin",
			method:         http.MethodPost,
			origin:         "http://localhost:3000",
			wantStatusCode: http.StatusOK,
			wantOrigin:     "http://localhost:3000",
		},
		{
			name:           "request without origin",
			method:         http.MethodPost,
			origin:         "",
			wantStatusCode: http.StatusOK,
			wantOrigin:     "*",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("CORS() status = %v, want %v", w.Code, tt.wantStatusCode)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("CORS() Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*http.Request)
		want  string
	}{
		{
			name: "cookie",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: "cookie-token"})
			},
			want: "cookie-token",
		},
		{
			name: "bearer header",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer header-token")
			},
			want: "header-token",
		},
		{
			name: "cookie wins over header",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: tokenCookieName, Value: "cookie-token"})
				r.Header.Set("Authorization", "Bearer header-token")
			},
			want: "cookie-token",
		},
		{
			name: "non-bearer header ignored",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
			},
			want: "",
		},
		{
			name:  "no token",
			setup: func(r *http.Request) {},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			if got := tokenFromRequest(req); got != tt.want {
				t.Errorf("tokenFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	tokens := testTokens()

	var gotIdent auth.Identity
	var called bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotIdent, _ = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	middleware := RequireAuth(tokens)(handler)

	validToken, err := tokens.Generate(auth.Identity{ID: "alice", Username: "alice", Role: users.RoleEngineer})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "valid token",
			token:      validToken,
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "no token",
			token:      "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			token:      "not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: tt.token})
			}
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("RequireAuth() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if called != tt.wantCalled {
				t.Errorf("RequireAuth() called next = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantCalled && gotIdent.Username != "alice" {
				t.Errorf("RequireAuth() identity = %+v, want alice", gotIdent)
			}
		})
	}
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	expired := auth.NewManager([]byte("test-secret"), -time.Minute)
	token, err := expired.Generate(auth.Identity{ID: "alice", Username: "alice", Role: users.RoleEngineer})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	middleware := RequireAuth(testTokens())(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: token})
	w := httptest.NewRecorder()

	middleware.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("RequireAuth() status = %v, want %v", w.Code, http.StatusUnauthorized)
	}
	// The stale cookie is cleared alongside the 401.
	var cleared bool
	for _, c := range w.Result().Cookies() {
		if c.Name == tokenCookieName && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("RequireAuth() should clear the stale token cookie")
	}
}

func TestRequireRole(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	middleware := RequireRole(users.RoleAdmin, users.RoleEngineer)(handler)

	tests := []struct {
		name       string
		ident      *auth.Identity
		wantStatus int
	}{
		{
			name:       "allowed role",
			ident:      &auth.Identity{ID: "alice", Username: "alice", Role: users.RoleEngineer},
			wantStatus: http.StatusOK,
		},
		{
			name:       "denied role",
			ident:      &auth.Identity{ID: "bob", Username: "bob", Role: users.RoleInventory},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no identity",
			ident:      nil,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.ident != nil {
				req = req.WithContext(auth.WithIdentity(req.Context(), *tt.ident))
			}
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("RequireRole() status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := testTokens()
	token, err := tokens.Generate(auth.Identity{ID: "alice", Username: "alice", Role: users.RoleAdmin})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var gotOK bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, gotOK = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	middleware := OptionalAuth(tokens)(handler)

	tests := []struct {
		name      string
		token     string
		wantIdent bool
	}{
		{"valid token attaches identity", token, true},
		{"no token passes through", "", false},
		{"invalid token passes through", "garbage", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: tt.token})
			}
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("OptionalAuth() status = %v, want %v", w.Code, http.StatusOK)
			}
			if gotOK != tt.wantIdent {
				t.Errorf("OptionalAuth() identity present = %v, want %v", gotOK, tt.wantIdent)
			}
		})
	}
}
