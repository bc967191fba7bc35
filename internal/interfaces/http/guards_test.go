package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	apphttp "github.com/jhoicas/Tienda-spa/internal/interfaces/http"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// arrancarStore levanta el run loop y lo detiene con el test.
func arrancarStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go st.Run(ctx)
	return st
}

// iniciarSesion deja el store con una sesión del rol indicado.
func iniciarSesion(t *testing.T, st *store.Store, role string) {
	t.Helper()
	pending := st.Expect(func(ev store.Event, _ store.AppState) bool {
		_, ok := ev.(store.LoginSucceeded)
		return ok
	})
	st.Dispatch(store.LoginSucceeded{Response: entity.AuthResponse{
		User:  entity.User{ID: "u-1", Email: "ana@tienda.dev", Name: "Ana", Role: role},
		Token: "jwt",
	}})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, _, err := pending.Await(ctx)
	require.NoError(t, err)
}

// appConGuardias monta rutas mínimas detrás de cada guardia.
func appConGuardias(st *store.Store) *fiber.App {
	app := fiber.New()
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }

	app.Get("/login", apphttp.GuestOnly(st), ok)
	app.Get("/cart", apphttp.RequireAuth(st), ok)
	app.Get("/admin", apphttp.RequireRole(st, entity.RoleAdmin), ok)
	app.Get("/moderacion", apphttp.RequireRole(st, entity.RoleAdmin, entity.RoleModerator), ok)
	return app
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireAuth
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireAuth_SinSesionRedirigeALoginConReturnUrl(t *testing.T) {
	st := arrancarStore(t)
	app := appConGuardias(st)

	resp := get(t, app, "/cart")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?returnUrl=%2Fcart", resp.Header.Get("Location"),
		"la URL solicitada debe preservarse para volver tras el login")
}

func TestRequireAuth_ConSesionDejaPasar(t *testing.T) {
	st := arrancarStore(t)
	iniciarSesion(t, st, entity.RoleUser)
	app := appConGuardias(st)

	resp := get(t, app, "/cart")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GuestOnly
// ──────────────────────────────────────────────────────────────────────────────

func TestGuestOnly_SinSesionDejaPasar(t *testing.T) {
	st := arrancarStore(t)
	app := appConGuardias(st)

	resp := get(t, app, "/login")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuestOnly_ConSesionRedirigeALaRaiz(t *testing.T) {
	st := arrancarStore(t)
	iniciarSesion(t, st, entity.RoleUser)
	app := appConGuardias(st)

	resp := get(t, app, "/login")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

// ──────────────────────────────────────────────────────────────────────────────
// RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_SinSesionRedirigeALogin(t *testing.T) {
	st := arrancarStore(t)
	app := appConGuardias(st)

	resp := get(t, app, "/admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?returnUrl=%2Fadmin", resp.Header.Get("Location"))
}

func TestRequireRole_RolInsuficienteRedirigeAUnauthorized(t *testing.T) {
	st := arrancarStore(t)
	iniciarSesion(t, st, entity.RoleUser)
	app := appConGuardias(st)

	resp := get(t, app, "/admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/unauthorized", resp.Header.Get("Location"))
}

func TestRequireRole_AdminAccede(t *testing.T) {
	st := arrancarStore(t)
	iniciarSesion(t, st, entity.RoleAdmin)
	app := appConGuardias(st)

	resp := get(t, app, "/admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_AceptaCualquieraDeLosRolesPermitidos(t *testing.T) {
	st := arrancarStore(t)
	iniciarSesion(t, st, entity.RoleModerator)
	app := appConGuardias(st)

	resp := get(t, app, "/moderacion")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Navegación forzada
// ──────────────────────────────────────────────────────────────────────────────

func TestForcedRedirect_ConsumeElDestinoPendienteUnaVez(t *testing.T) {
	nav := apphttp.NewSessionNavigator()
	app := fiber.New()
	app.Use(apphttp.ForcedRedirect(nav))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("home") })

	nav.ToLogin("/cart")

	resp := get(t, app, "/")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?returnUrl=%2Fcart", resp.Header.Get("Location"))

	// el destino pendiente se consume: la siguiente petición pasa normal
	resp2 := get(t, app, "/")
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestSessionNavigator_EscapaRutasConQueryEnElRetorno(t *testing.T) {
	nav := apphttp.NewSessionNavigator()
	app := fiber.New()
	app.Use(apphttp.ForcedRedirect(nav))

	nav.ToLogin("/products?category=ropa")

	resp := get(t, app, "/cart")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?returnUrl=%2Fproducts%3Fcategory%3Dropa", resp.Header.Get("Location"),
		"la ruta de retorno debe ir escapada para sobrevivir el round-trip")
}
