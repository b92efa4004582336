package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"bendahara/internal/authz"
	apperrors "bendahara/internal/errors"
	"bendahara/internal/models"
	"bendahara/internal/services"
)

func setupUserRouter(handler *UserHandler, role models.Role) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectActor(adminID, role))
	auth.POST("/users", handler.CreateUser)
	auth.GET("/users", handler.ListUsers)
	return r
}

func TestUserHandler_CreateUser(t *testing.T) {
	t.Run("returns 201 and audits", func(t *testing.T) {
		var got services.CreateUserInput
		userSvc := &mockUserService{
			createUserFn: func(actor authz.Actor, input services.CreateUserInput) (*models.User, error) {
				got = input
				return &models.User{Base: models.Base{ID: santriID}, Name: input.Name, Email: input.Email, Role: input.Role}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupUserRouter(NewUserHandler(userSvc, audit), models.RoleAdmin)

		rec := doRequest(r, "POST", "/users",
			`{"name":"Ahmad","email":"ahmad@example.com","password":"password123","role":"SANTRI"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Role != models.RoleSantri || got.Name != "Ahmad" {
			t.Errorf("unexpected input %+v", got)
		}
		if a := audit.actions(); len(a) != 1 || a[0] != "CREATE_USER" {
			t.Errorf("expected CREATE_USER audit, got %v", a)
		}
	})

	t.Run("returns 400 on unknown role", func(t *testing.T) {
		r := setupUserRouter(NewUserHandler(&mockUserService{}, &mockAuditService{}), models.RoleAdmin)

		rec := doRequest(r, "POST", "/users",
			`{"name":"Ahmad","email":"ahmad@example.com","password":"password123","role":"BENDAHARA"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 403 when service refuses", func(t *testing.T) {
		userSvc := &mockUserService{
			createUserFn: func(authz.Actor, services.CreateUserInput) (*models.User, error) {
				return nil, apperrors.ErrUnauthorized
			},
		}
		r := setupUserRouter(NewUserHandler(userSvc, &mockAuditService{}), models.RoleKomite)

		rec := doRequest(r, "POST", "/users",
			`{"name":"Ahmad","email":"ahmad@example.com","password":"password123","role":"SANTRI"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})
}

func TestUserHandler_ListUsers(t *testing.T) {
	t.Run("returns users for role", func(t *testing.T) {
		userSvc := &mockUserService{
			listUsersByRoleFn: func(_ authz.Actor, role models.Role) ([]models.User, error) {
				return []models.User{{Base: models.Base{ID: santriID}, Name: "Ahmad", Role: role}}, nil
			},
		}
		r := setupUserRouter(NewUserHandler(userSvc, &mockAuditService{}), models.RoleAdmin)

		rec := doRequest(r, "GET", "/users?role=SANTRI", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		users := parseJSON(t, rec)["users"].([]interface{})
		if len(users) != 1 {
			t.Errorf("expected 1 user, got %d", len(users))
		}
	})

	t.Run("returns 400 without role", func(t *testing.T) {
		r := setupUserRouter(NewUserHandler(&mockUserService{}, &mockAuditService{}), models.RoleAdmin)

		rec := doRequest(r, "GET", "/users", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
