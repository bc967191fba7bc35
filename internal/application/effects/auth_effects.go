package effects

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/jhoicas/Tienda-spa/internal/application/audit"
	"github.com/jhoicas/Tienda-spa/internal/domain"
	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
	"github.com/jhoicas/Tienda-spa/internal/infrastructure/apiclient"
	"github.com/jhoicas/Tienda-spa/internal/infrastructure/storage"
	"github.com/jhoicas/Tienda-spa/internal/store"
	"github.com/jhoicas/Tienda-spa/pkg/logger"
	"github.com/jhoicas/Tienda-spa/pkg/token"
)

// Claves del snapshot de auth en el almacenamiento durable: tres valores
// independientes, nunca un documento combinado.
const (
	tokenStorageKey   = "auth_token"
	refreshStorageKey = "refresh_token"
	userStorageKey    = "user_data"
)

// AuthEffects orquesta login, logout, renovación e hidratación contra el API
// gateway y el almacenamiento durable. Política de concurrencia exhaust: un
// flag en vuelo por categoría; los eventos que llegan mientras hay una
// operación pendiente se descartan en silencio, no se encolan.
type AuthEffects struct {
	st    *store.Store
	kv    storage.Store
	api   *apiclient.Client
	audit *audit.Service
	log   *logger.Logger

	loginInFlight   atomic.Bool
	logoutInFlight  atomic.Bool
	refreshInFlight atomic.Bool
}

// NewAuthEffects construye los efectos de auth.
func NewAuthEffects(st *store.Store, kv storage.Store, api *apiclient.Client, auditSvc *audit.Service, log *logger.Logger) *AuthEffects {
	return &AuthEffects{
		st:    st,
		kv:    kv,
		api:   api,
		audit: auditSvc,
		log:   log.Component("auth-effects"),
	}
}

// Register registra el listener en el store. Llamar antes de Run.
func (e *AuthEffects) Register() {
	e.st.RegisterListener(e.handle)
}

// handle corre en el run loop: toma el flag de la categoría y delega.
func (e *AuthEffects) handle(ev store.Event, _ store.AppState) {
	switch ev := ev.(type) {
	case store.LoginRequested:
		if !e.loginInFlight.CompareAndSwap(false, true) {
			e.log.Debug().Msg("login en vuelo: evento descartado")
			return
		}
		go e.login(ev.Credentials)

	case store.LogoutRequested:
		if !e.logoutInFlight.CompareAndSwap(false, true) {
			e.log.Debug().Msg("logout en vuelo: evento descartado")
			return
		}
		go e.logout()

	case store.RefreshRequested:
		if !e.refreshInFlight.CompareAndSwap(false, true) {
			e.log.Debug().Msg("renovación en vuelo: evento descartado")
			return
		}
		go e.refresh()

	case store.HydrateAuthRequested:
		go e.hydrate()
	}
}

// login llama al backend con las credenciales. Éxito: persiste tokens+usuario,
// despacha el login y audita SUCCESS. Fallo: despacha el error normalizado y
// audita FAILURE.
func (e *AuthEffects) login(creds entity.LoginCredentials) {
	defer e.loginInFlight.Store(false)
	ctx := context.Background()

	var resp entity.AuthResponse
	if err := e.api.Post(ctx, "/auth/login", creds, &resp); err != nil {
		e.log.Warn().Err(err).Str("email", creds.Email).Msg("login fallido")
		e.st.Dispatch(store.LoginFailed{Error: err.Error()})
		e.audit.Log(audit.Entry{
			Action:   entity.AuditActionLogin,
			Resource: "AUTH",
			Details:  map[string]string{"error": err.Error()},
			Status:   entity.AuditStatusFailure,
		})
		return
	}

	e.storeSession(ctx, resp)
	e.st.Dispatch(store.LoginSucceeded{Response: resp})
	e.audit.Log(audit.Entry{
		Action:   entity.AuditActionLogin,
		Resource: "AUTH",
		Details:  map[string]string{"email": resp.User.Email},
		Status:   entity.AuditStatusSuccess,
	})
}

// logout llama al backend y, falle o no, limpia el almacenamiento y cierra la
// sesión local. El logout siempre tiene éxito localmente.
func (e *AuthEffects) logout() {
	defer e.logoutInFlight.Store(false)
	ctx := context.Background()

	if err := e.api.Post(ctx, "/auth/logout", struct{}{}, nil); err != nil {
		e.log.Warn().Err(err).Msg("logout remoto fallido: la sesión local se cierra igual")
	}
	e.clearSession(ctx)
	e.st.Dispatch(store.LogoutSucceeded{})
	e.audit.Log(audit.Entry{
		Action:   entity.AuditActionLogout,
		Resource: "AUTH",
		Status:   entity.AuditStatusSuccess,
	})
}

// refresh renueva el par de tokens usando el refresh token persistido.
func (e *AuthEffects) refresh() {
	defer e.refreshInFlight.Store(false)
	ctx := context.Background()

	rt, err := e.kv.Get(ctx, refreshStorageKey)
	if err != nil && err != storage.ErrKeyNotFound {
		e.log.Warn().Err(err).Msg("leer refresh token")
	}

	var resp entity.AuthResponse
	body := map[string]string{"refreshToken": rt}
	if err := e.api.Post(ctx, "/auth/refresh", body, &resp); err != nil {
		e.log.Warn().Err(err).Msg("renovación de token fallida")
		e.st.Dispatch(store.RefreshFailed{Error: err.Error()})
		return
	}

	e.storeSession(ctx, resp)
	e.st.Dispatch(store.RefreshSucceeded{
		Token:        resp.Token,
		RefreshToken: resp.RefreshToken,
	})
}

// hydrate restaura la sesión persistida al arrancar. Solo se acepta una
// sesión completa con token aún vigente; cualquier otra cosa reinicia el
// estado de auth.
func (e *AuthEffects) hydrate() {
	ctx := context.Background()

	tok, errT := e.kv.Get(ctx, tokenStorageKey)
	rt, errR := e.kv.Get(ctx, refreshStorageKey)
	userRaw, errU := e.kv.Get(ctx, userStorageKey)
	if errT != nil || errR != nil || errU != nil {
		e.st.Dispatch(store.AuthCleared{})
		return
	}

	var user entity.User
	if err := json.Unmarshal([]byte(userRaw), &user); err != nil {
		e.log.Warn().Err(err).Msg("datos de usuario corruptos: sesión descartada")
		e.st.Dispatch(store.AuthCleared{})
		return
	}
	if token.IsExpired(tok) {
		e.log.Debug().Err(domain.ErrTokenExpired).Msg("token persistido expirado: sesión descartada")
		e.st.Dispatch(store.AuthCleared{})
		return
	}

	e.st.Dispatch(store.HydrateAuthSucceeded{
		User:         user,
		Token:        tok,
		RefreshToken: rt,
	})
}

// storeSession persiste los tres valores de la sesión. Fallos solo se loguean.
func (e *AuthEffects) storeSession(ctx context.Context, resp entity.AuthResponse) {
	if err := e.kv.Set(ctx, tokenStorageKey, resp.Token); err != nil {
		e.log.Warn().Err(err).Msg("persistir access token")
	}
	if err := e.kv.Set(ctx, refreshStorageKey, resp.RefreshToken); err != nil {
		e.log.Warn().Err(err).Msg("persistir refresh token")
	}
	raw, err := json.Marshal(resp.User)
	if err != nil {
		e.log.Error().Err(err).Msg("serializar usuario")
		return
	}
	if err := e.kv.Set(ctx, userStorageKey, string(raw)); err != nil {
		e.log.Warn().Err(err).Msg("persistir usuario")
	}
}

// clearSession elimina los tres valores de la sesión.
func (e *AuthEffects) clearSession(ctx context.Context) {
	for _, key := range []string{tokenStorageKey, refreshStorageKey, userStorageKey} {
		if err := e.kv.Remove(ctx, key); err != nil {
			e.log.Warn().Err(err).Str("clave", key).Msg("limpiar sesión")
		}
	}
}
