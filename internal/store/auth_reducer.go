package store

import "github.com/jhoicas/Tienda-spa/internal/domain/entity"

// initialAuthState estado inicial de auth: sin sesión, sin error, sin carga.
func initialAuthState() entity.AuthState {
	return entity.AuthState{}
}

// reduceAuth aplica una transición pura sobre el estado de auth. Ninguna
// transición depende de los valores previos de Error o IsLoading salvo por
// sobreescritura; los eventos no contemplados dejan el estado intacto.
func reduceAuth(s entity.AuthState, ev AuthEvent) entity.AuthState {
	switch ev := ev.(type) {
	case LoginRequested:
		s.IsLoading = true
		s.Error = ""
		return s

	case LoginSucceeded:
		u := ev.Response.User
		s.User = &u
		s.Token = ev.Response.Token
		s.RefreshToken = ev.Response.RefreshToken
		s.IsAuthenticated = true
		s.IsLoading = false
		s.Error = ""
		return s

	case LoginFailed:
		s.IsLoading = false
		s.Error = ev.Error
		return s

	case LogoutRequested:
		s.IsLoading = true
		return s

	case LogoutSucceeded:
		return initialAuthState()

	case RefreshRequested:
		s.IsLoading = true
		return s

	case RefreshSucceeded:
		s.Token = ev.Token
		s.RefreshToken = ev.RefreshToken
		s.IsLoading = false
		s.Error = ""
		return s

	case RefreshFailed:
		s.IsLoading = false
		s.Error = ev.Error
		return s

	case HydrateAuthSucceeded:
		u := ev.User
		s.User = &u
		s.Token = ev.Token
		s.RefreshToken = ev.RefreshToken
		s.IsAuthenticated = true
		return s

	case UserUpdated:
		u := ev.User
		s.User = &u
		return s

	case AuthCleared:
		return initialAuthState()

	case HydrateAuthRequested:
		// Solo dispara el efecto de hidratación; el estado no cambia.
		return s

	default:
		return s
	}
}
