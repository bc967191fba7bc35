// Package apiclient implementa el cliente HTTP hacia el backend: URL base
// configurable, bearer token tomado del snapshot del store, reintentos
// acotados por llamada y errores normalizados a una sola forma. El pipeline
// incorpora el interceptor de sesión: en un 401 intenta renovar el token y
// reintenta la petición original una única vez; en un 403 redirige a la vista
// de no autorizado. Los endpoints de login y refresh quedan fuera del
// interceptor para evitar recursión.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/jhoicas/Tienda-spa/internal/domain"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
)

// Navigator puerto de navegación: el cliente nunca sabe cómo se renderiza,
// solo pide redirecciones.
type Navigator interface {
	ToLogin(returnURL string)
	ToUnauthorized()
}

// NopNavigator navegador que no hace nada (tests, procesos sin UI).
type NopNavigator struct{}

func (NopNavigator) ToLogin(string)   {}
func (NopNavigator) ToUnauthorized() {}

// APIError error normalizado: siempre lleva el código HTTP y el mensaje del
// servidor cuando existe. Los códigos con error de dominio equivalente se
// pueden inspeccionar con errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error %d: %s", e.Status, e.Message)
}

// Unwrap asocia los códigos HTTP con su error de dominio.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return nil
	}
}

// Config parámetros del cliente.
type Config struct {
	BaseURL string
	// DefaultRetries reintentos por defecto ante fallo (0 = sin reintentos).
	DefaultRetries int
	UserAgent      string
}

// Client cliente del API gateway. No guarda estado propio más allá de la
// configuración: el token se lee del store en cada petición.
type Client struct {
	cfg  Config
	http *http.Client
	st   *store.Store
	nav  Navigator
	log  *logger.Logger
}

// New construye el cliente. El *http.Client no define timeout: una llamada
// colgada bloquea su categoría, comportamiento heredado y documentado.
func New(cfg Config, st *store.Store, nav Navigator, log *logger.Logger) *Client {
	if nav == nil {
		nav = NopNavigator{}
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{},
		st:   st,
		nav:  nav,
		log:  log.Component("apiclient"),
	}
}

// ── Opciones por petición ─────────────────────────────────────────────────────

type requestOptions struct {
	retries int
	query   url.Values
	headers map[string]string
}

// Option opción por petición.
type Option func(*requestOptions)

// WithRetries fija el número de reintentos para esta llamada.
func WithRetries(n int) Option {
	return func(o *requestOptions) { o.retries = n }
}

// WithQuery agrega un parámetro de query.
func WithQuery(key, value string) Option {
	return func(o *requestOptions) {
		if o.query == nil {
			o.query = url.Values{}
		}
		o.query.Add(key, value)
	}
}

// WithHeader agrega un header adicional.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = map[string]string{}
		}
		o.headers[key] = value
	}
}

// ── Métodos HTTP ──────────────────────────────────────────────────────────────

// Get ejecuta GET y decodifica la respuesta en out (out nil = descartar).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...Option) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post ejecuta POST con body JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out, opts...)
}

// Put ejecuta PUT con body JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch ejecuta PATCH con body JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete ejecuta DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...Option) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out, opts...)
}

// UploadFile sube un archivo multipart con campos extra opcionales.
func (c *Client) UploadFile(ctx context.Context, path, filename string, content io.Reader, extra map[string]string, out any, opts ...Option) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("crear form file: %w", err)
	}
	if _, err := io.Copy(fw, content); err != nil {
		return fmt.Errorf("copiar archivo: %w", err)
	}
	for k, v := range extra {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("escribir campo %q: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("cerrar multipart: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, path, buf.Bytes(), mw.FormDataContentType(), opts...)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// DownloadFile descarga el recurso como bytes crudos.
func (c *Client) DownloadFile(ctx context.Context, path string, opts ...Option) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, "", opts...)
}

// ── Pipeline ──────────────────────────────────────────────────────────────────

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any, opts ...Option) error {
	var payload []byte
	contentType := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("serializar body: %w", err)
		}
		payload = raw
		contentType = "application/json"
	}
	raw, err := c.do(ctx, method, path, payload, contentType, opts...)
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// do ejecuta la petición con reintentos acotados y, agotados estos, aplica el
// manejo de 401/403 del interceptor una única vez.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string, opts ...Option) ([]byte, error) {
	o := requestOptions{retries: c.cfg.DefaultRetries}
	for _, opt := range opts {
		opt(&o)
	}

	var raw []byte
	var err error
	attempts := o.retries + 1
	for i := 0; i < attempts; i++ {
		raw, err = c.attempt(ctx, method, path, payload, contentType, o, c.currentToken())
		if err == nil {
			return raw, nil
		}
		// 401 y 403 no se reintentan a ciegas: pasan al interceptor.
		if apiErr, ok := err.(*APIError); ok {
			if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden {
				break
			}
		}
		if i < attempts-1 {
			c.log.Debug().Str("method", method).Str("path", path).Int("intento", i+1).Err(err).Msg("reintentando petición")
		}
	}
	if err == nil {
		return raw, nil
	}

	apiErr, ok := err.(*APIError)
	if !ok || isAuthPath(path) {
		return nil, err
	}
	switch apiErr.Status {
	case http.StatusUnauthorized:
		return c.recoverFrom401(ctx, method, path, payload, contentType, o, apiErr)
	case http.StatusForbidden:
		c.nav.ToUnauthorized()
		return nil, apiErr
	default:
		return nil, apiErr
	}
}

// recoverFrom401 sub-flujo de renovación: despacha la renovación de token,
// espera a que se resuelva y reintenta la petición original UNA vez con el
// token nuevo. Sin refresh token, o si la renovación no produce token, cierra
// la sesión, redirige al login y propaga el error 401 original.
func (c *Client) recoverFrom401(ctx context.Context, method, path string, payload []byte, contentType string, o requestOptions, original *APIError) ([]byte, error) {
	snap := c.st.Snapshot()
	if store.RefreshToken(snap.Auth) == "" {
		c.log.Debug().Str("path", path).Err(domain.ErrSessionExpired).Msg("401 sin refresh token: cerrando sesión")
		c.st.Dispatch(store.LogoutRequested{})
		c.nav.ToLogin(path)
		return nil, original
	}

	// Registrar la espera antes de despachar: si otro interceptor ya disparó
	// la renovación, el flag de exhaust descarta nuestro evento pero el waiter
	// igualmente observa la resolución de la renovación en vuelo.
	pending := c.st.Expect(func(ev store.Event, _ store.AppState) bool {
		switch ev.(type) {
		case store.RefreshSucceeded, store.RefreshFailed:
			return true
		}
		return false
	})
	c.st.Dispatch(store.RefreshRequested{})

	ev, after, err := pending.Await(ctx)
	if err != nil {
		return nil, original
	}
	if _, failed := ev.(store.RefreshFailed); failed || store.Token(after.Auth) == "" {
		c.log.Debug().Str("path", path).Err(domain.ErrSessionExpired).Msg("renovación fallida: cerrando sesión")
		c.st.Dispatch(store.LogoutRequested{})
		c.nav.ToLogin(path)
		return nil, original
	}

	raw, retryErr := c.attempt(ctx, method, path, payload, contentType, o, store.Token(after.Auth))
	if retryErr != nil {
		return nil, retryErr
	}
	return raw, nil
}

// attempt una ejecución de la petición con el token dado.
func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, contentType string, o requestOptions, bearer string) ([]byte, error) {
	endpoint := c.cfg.BaseURL + path
	if len(o.query) > 0 {
		endpoint += "?" + o.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("construir petición: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	for k, v := range o.headers {
		req.Header.Set(k, v)
	}
	if bearer != "" && !isAuthPath(path) {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: serverMessage(raw, resp.StatusCode)}
	}
	return raw, nil
}

// currentToken access token del snapshot actual ("" si no hay sesión).
func (c *Client) currentToken() string {
	return store.Token(c.st.Snapshot().Auth)
}

// isAuthPath los endpoints de login y refresh no pasan por el interceptor.
func isAuthPath(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/refresh")
}

// serverMessage extrae el mensaje de error del cuerpo si viene en el formato
// {code, message}; si no, un mensaje genérico con el código HTTP.
func serverMessage(raw []byte, status int) string {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return http.StatusText(status)
}

func decodeInto(raw []byte, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decodificar respuesta: %w", err)
	}
	return nil
}
