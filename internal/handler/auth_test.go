package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlingsloth/lonumirus/internal/auth"
	"github.com/crawlingsloth/lonumirus/internal/user"
)

type mockAuthService struct {
	LoginFunc       func(ctx context.Context, email, password string) (*auth.Session, error)
	SwitchRoleFunc  func(ctx context.Context, claims *auth.Claims, role user.Role) (*auth.Session, error)
	CurrentUserFunc func(ctx context.Context, claims *auth.Claims) (*user.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *mockAuthService) SwitchRole(ctx context.Context, claims *auth.Claims, role user.Role) (*auth.Session, error) {
	return m.SwitchRoleFunc(ctx, claims, role)
}

func (m *mockAuthService) CurrentUser(ctx context.Context, claims *auth.Claims) (*user.User, error) {
	return m.CurrentUserFunc(ctx, claims)
}

func authRouter(svc auth.Service) chi.Router {
	r := chi.NewRouter()
	NewAuthHandler(svc).RegisterRoutes(r)
	return r
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		u := &user.User{ID: uuid.Must(uuid.NewV4()), Email: "admin@example.com", Role: user.RoleAdmin}
		svc := &mockAuthService{
			LoginFunc: func(ctx context.Context, email, password string) (*auth.Session, error) {
				assert.Equal(t, "admin@example.com", email)
				assert.Equal(t, "demo123", password)
				return &auth.Session{User: u, Token: "signed-token"}, nil
			},
		}

		body := []byte(`{"email":"admin@example.com","password":"demo123"}`)
		rec := httptest.NewRecorder()
		authRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPost, "/auth/login", body, nil))

		require.Equal(t, http.StatusOK, rec.Code)

		var got auth.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "signed-token", got.Token)
		assert.Equal(t, u.ID, got.User.ID)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &mockAuthService{
			LoginFunc: func(ctx context.Context, email, password string) (*auth.Session, error) {
				return nil, auth.ErrInvalidCredentials
			},
		}

		body := []byte(`{"email":"admin@example.com","password":"wrong"}`)
		rec := httptest.NewRecorder()
		authRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPost, "/auth/login", body, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed email rejected", func(t *testing.T) {
		svc := &mockAuthService{
			LoginFunc: func(ctx context.Context, email, password string) (*auth.Session, error) {
				t.Fatal("service must not be called on invalid payload")
				return nil, nil
			},
		}

		body := []byte(`{"email":"not-an-email","password":"demo123"}`)
		rec := httptest.NewRecorder()
		authRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPost, "/auth/login", body, nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_SwitchRole(t *testing.T) {
	body := []byte(`{"role":"customer"}`)

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		authRouter(&mockAuthService{}).ServeHTTP(rec, authedRequest(http.MethodPost, "/auth/switch-role", body, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("success", func(t *testing.T) {
		claims := adminClaims()
		svc := &mockAuthService{
			SwitchRoleFunc: func(ctx context.Context, gotClaims *auth.Claims, role user.Role) (*auth.Session, error) {
				assert.Equal(t, claims.UserID, gotClaims.UserID)
				assert.Equal(t, user.RoleCustomer, role)
				return &auth.Session{
					User:  &user.User{ID: claims.UserID, Role: role},
					Token: "reissued-token",
				}, nil
			},
		}

		rec := httptest.NewRecorder()
		authRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPost, "/auth/switch-role", body, claims))

		require.Equal(t, http.StatusOK, rec.Code)

		var got auth.Session
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "reissued-token", got.Token)
		assert.Equal(t, user.RoleCustomer, got.User.Role)
	})

	t.Run("non-admin denied", func(t *testing.T) {
		svc := &mockAuthService{
			SwitchRoleFunc: func(ctx context.Context, gotClaims *auth.Claims, role user.Role) (*auth.Session, error) {
				return nil, auth.ErrRoleSwitchDenied
			},
		}

		rec := httptest.NewRecorder()
		authRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPost, "/auth/switch-role", body, customerClaims()))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		svc := &mockAuthService{
			SwitchRoleFunc: func(ctx context.Context, gotClaims *auth.Claims, role user.Role) (*auth.Session, error) {
				t.Fatal("service must not be called for an unknown role")
				return nil, nil
			},
		}

		rec := httptest.NewRecorder()
		authRouter(svc).ServeHTTP(rec, authedRequest(http.MethodPost, "/auth/switch-role", []byte(`{"role":"captain"}`), adminClaims()))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		authRouter(&mockAuthService{}).ServeHTTP(rec, authedRequest(http.MethodGet, "/auth/me", nil, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("reports session role", func(t *testing.T) {
		claims := &auth.Claims{UserID: uuid.Must(uuid.NewV4()), Role: user.RoleCustomer}
		svc := &mockAuthService{
			CurrentUserFunc: func(ctx context.Context, gotClaims *auth.Claims) (*user.User, error) {
				return &user.User{ID: gotClaims.UserID, Role: gotClaims.Role}, nil
			},
		}

		rec := httptest.NewRecorder()
		authRouter(svc).ServeHTTP(rec, authedRequest(http.MethodGet, "/auth/me", nil, claims))

		require.Equal(t, http.StatusOK, rec.Code)

		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, user.RoleCustomer, got.Role)
	})
}
