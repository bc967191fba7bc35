package backend_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-spa/internal/backend"
	"github.com/jhoicas/Tienda-spa/internal/domain"
	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "tienda-spa-test"
)

func montarAPI(t *testing.T) *fiber.App {
	t.Helper()
	data, err := backend.Seed()
	require.NoError(t, err)

	app := fiber.New()
	h := backend.NewHandler(data, testSecret, testIssuer, 60, logger.Nop())
	backend.Router(app, h)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any, bearer string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodificar[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "cuerpo: %s", raw)
	return out
}

func sesionDe(t *testing.T, app *fiber.App, email, password string) entity.AuthResponse {
	t.Helper()
	resp := postJSON(t, app, "/auth/login", entity.LoginCredentials{Email: email, Password: password}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodificar[entity.AuthResponse](t, resp)
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_CredencialesValidasEmitenSesionCompleta(t *testing.T) {
	app := montarAPI(t)

	sesion := sesionDe(t, app, "admin@tienda.dev", "admin123")

	assert.Equal(t, "admin@tienda.dev", sesion.User.Email)
	assert.Equal(t, entity.RoleAdmin, sesion.User.Role)
	assert.NotEmpty(t, sesion.Token)
	assert.NotEmpty(t, sesion.RefreshToken)
	assert.Equal(t, int64(3600), sesion.ExpiresIn)
	require.NotNil(t, sesion.User.LastLogin, "el login debe actualizar la última conexión")
}

func TestLogin_PasswordIncorrectaDevuelve401(t *testing.T) {
	app := montarAPI(t)

	resp := postJSON(t, app, "/auth/login",
		entity.LoginCredentials{Email: "admin@tienda.dev", Password: "mala"}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_UsuarioDesconocidoDevuelve401(t *testing.T) {
	app := montarAPI(t)

	resp := postJSON(t, app, "/auth/login",
		entity.LoginCredentials{Email: "nadie@tienda.dev", Password: "loquesea"}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Refresh
// ──────────────────────────────────────────────────────────────────────────────

func TestRefresh_RotaElTokenYElViejoQuedaConsumido(t *testing.T) {
	app := montarAPI(t)
	sesion := sesionDe(t, app, "cliente@tienda.dev", "cliente123")

	resp := postJSON(t, app, "/auth/refresh",
		map[string]string{"refreshToken": sesion.RefreshToken}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	renovada := decodificar[entity.AuthResponse](t, resp)

	assert.NotEmpty(t, renovada.Token)
	assert.NotEqual(t, sesion.RefreshToken, renovada.RefreshToken,
		"cada renovación emite un refresh token nuevo")

	// el token consumido no puede reutilizarse
	reuso := postJSON(t, app, "/auth/refresh",
		map[string]string{"refreshToken": sesion.RefreshToken}, "")
	defer reuso.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, reuso.StatusCode)
}

func TestRefresh_TokenDesconocidoDevuelve401(t *testing.T) {
	app := montarAPI(t)

	resp := postJSON(t, app, "/auth/refresh",
		map[string]string{"refreshToken": "inventado"}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_RevocaLosRefreshTokensDelUsuario(t *testing.T) {
	app := montarAPI(t)
	sesion := sesionDe(t, app, "cliente@tienda.dev", "cliente123")

	logout := postJSON(t, app, "/auth/logout", struct{}{}, sesion.Token)
	defer logout.Body.Close()
	assert.Equal(t, http.StatusNoContent, logout.StatusCode)

	resp := postJSON(t, app, "/auth/refresh",
		map[string]string{"refreshToken": sesion.RefreshToken}, "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
		"tras el logout el refresh token debe estar revocado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_ListaElCatalogo(t *testing.T) {
	app := montarAPI(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	productos := decodificar[[]entity.Product](t, resp)
	assert.NotEmpty(t, productos)
}

func TestProducts_FiltraPorCategoria(t *testing.T) {
	app := montarAPI(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products?category=ropa", nil), -1)
	require.NoError(t, err)
	productos := decodificar[[]entity.Product](t, resp)

	require.NotEmpty(t, productos)
	for _, p := range productos {
		assert.Equal(t, "ropa", p.Category)
	}
}

func TestProduct_AusenteDevuelve404(t *testing.T) {
	app := montarAPI(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/products/999", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Auditoría
// ──────────────────────────────────────────────────────────────────────────────

func TestAudit_AppendYListadoConRolSuficiente(t *testing.T) {
	app := montarAPI(t)
	admin := sesionDe(t, app, "admin@tienda.dev", "admin123")

	alta := postJSON(t, app, "/audit/logs", entity.AuditLog{
		ID: "a-1", UserID: "u-002", Action: entity.AuditActionLogin,
		Resource: "AUTH", Status: entity.AuditStatusSuccess,
	}, "")
	defer alta.Body.Close()
	require.Equal(t, http.StatusCreated, alta.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/audit/logs", nil)
	req.Header.Set("Authorization", "Bearer "+admin.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	entradas := decodificar[[]entity.AuditLog](t, resp)
	require.Len(t, entradas, 1)
	assert.Equal(t, "a-1", entradas[0].ID)
}

func TestAudit_ListadoSinTokenDevuelve401(t *testing.T) {
	app := montarAPI(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit/logs", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAudit_ListadoConRolUSERDevuelve403(t *testing.T) {
	app := montarAPI(t)
	cliente := sesionDe(t, app, "cliente@tienda.dev", "cliente123")

	req := httptest.NewRequest(http.MethodGet, "/audit/logs", nil)
	req.Header.Set("Authorization", "Bearer "+cliente.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDataset_AuthenticateDistingueElMotivoDelRechazo(t *testing.T) {
	data, err := backend.Seed()
	require.NoError(t, err)

	_, err = data.Authenticate("nadie@tienda.dev", "admin123")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = data.Authenticate("admin@tienda.dev", "incorrecta")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	user, err := data.Authenticate("admin@tienda.dev", "admin123")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, user.Role)
	assert.NotNil(t, user.LastLogin)
}

func TestAudit_ModeradorPuedeListar(t *testing.T) {
	app := montarAPI(t)
	mod := sesionDe(t, app, "moderador@tienda.dev", "moderador123")

	req := httptest.NewRequest(http.MethodGet, "/audit/logs", nil)
	req.Header.Set("Authorization", "Bearer "+mod.Token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
