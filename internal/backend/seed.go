// Package backend implementa la API de desarrollo contra la que corre la
// shell: autenticación con JWT y refresh tokens rotativos, catálogo de
// productos y sumidero de auditoría. Todo el estado vive en memoria.
package backend

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Tienda-spa/internal/domain"
	"github.com/jhoicas/Tienda-spa/internal/domain/entity"
)

type account struct {
	user         entity.User
	passwordHash []byte
}

// Dataset estado en memoria del backend de desarrollo.
type Dataset struct {
	mu       sync.Mutex
	accounts map[string]*account // por email
	products []entity.Product
	refresh  map[string]string // refresh token -> user id
	audits   []entity.AuditLog
}

// Seed construye el dataset con las cuentas y el catálogo de demostración.
func Seed() (*Dataset, error) {
	ds := &Dataset{
		accounts: make(map[string]*account),
		refresh:  make(map[string]string),
	}

	seedUsers := []struct {
		user     entity.User
		password string
	}{
		{entity.User{ID: "u-001", Email: "admin@tienda.dev", Name: "Ana Admin", Role: entity.RoleAdmin, CreatedAt: time.Now().UTC()}, "admin123"},
		{entity.User{ID: "u-002", Email: "cliente@tienda.dev", Name: "Carlos Cliente", Role: entity.RoleUser, CreatedAt: time.Now().UTC()}, "cliente123"},
		{entity.User{ID: "u-003", Email: "moderador@tienda.dev", Name: "Marta Moderadora", Role: entity.RoleModerator, CreatedAt: time.Now().UTC()}, "moderador123"},
	}
	for _, s := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		ds.accounts[s.user.Email] = &account{user: s.user, passwordHash: hash}
	}

	ds.products = []entity.Product{
		{ID: 1, Title: "Camiseta básica", Price: decimal.NewFromFloat(10.00), Description: "Algodón 100%", Category: "ropa", Image: "/img/camiseta.png"},
		{ID: 2, Title: "Pantalón vaquero", Price: decimal.NewFromFloat(35.50), Description: "Corte recto", Category: "ropa", Image: "/img/vaquero.png"},
		{ID: 3, Title: "Auriculares inalámbricos", Price: decimal.NewFromFloat(59.90), Description: "Cancelación de ruido", Category: "electronica", Image: "/img/auriculares.png"},
		{ID: 4, Title: "Taza de cerámica", Price: decimal.NewFromFloat(7.25), Description: "330 ml", Category: "hogar", Image: "/img/taza.png"},
		{ID: 5, Title: "Mochila urbana", Price: decimal.NewFromFloat(42.00), Description: "Compartimento portátil 15\"", Category: "accesorios", Image: "/img/mochila.png"},
	}
	return ds, nil
}

// Authenticate valida credenciales y devuelve el usuario con LastLogin al
// día. Distingue usuario desconocido de password incorrecto para el log del
// handler; hacia el cliente ambos responden igual.
func (d *Dataset) Authenticate(email, password string) (entity.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	acc, ok := d.accounts[email]
	if !ok {
		return entity.User{}, domain.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return entity.User{}, domain.ErrUnauthorized
	}
	now := time.Now().UTC()
	acc.user.LastLogin = &now
	return acc.user, nil
}

// UserByID busca un usuario por identificador.
func (d *Dataset) UserByID(id string) (entity.User, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, acc := range d.accounts {
		if acc.user.ID == id {
			return acc.user, true
		}
	}
	return entity.User{}, false
}

// IssueRefresh registra un refresh token opaco para el usuario.
func (d *Dataset) IssueRefresh(token, userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refresh[token] = userID
}

// RotateRefresh consume el token recibido y devuelve el usuario dueño.
// Un token ya consumido o desconocido no rota.
func (d *Dataset) RotateRefresh(token string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	userID, ok := d.refresh[token]
	if !ok {
		return "", false
	}
	delete(d.refresh, token)
	return userID, true
}

// RevokeUserRefresh invalida todos los refresh tokens del usuario.
func (d *Dataset) RevokeUserRefresh(userID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for token, owner := range d.refresh {
		if owner == userID {
			delete(d.refresh, token)
		}
	}
}

// Products devuelve el catálogo, opcionalmente filtrado por categoría.
func (d *Dataset) Products(category string) []entity.Product {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]entity.Product, 0, len(d.products))
	for _, p := range d.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// ProductByID busca un producto del catálogo.
func (d *Dataset) ProductByID(id int64) (entity.Product, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.products {
		if p.ID == id {
			return p, true
		}
	}
	return entity.Product{}, false
}

// AppendAudit guarda una entrada replicada por el cliente.
func (d *Dataset) AppendAudit(entry entity.AuditLog) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.audits = append(d.audits, entry)
}

// Audits devuelve las entradas consolidadas más recientes primero.
func (d *Dataset) Audits() []entity.AuditLog {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]entity.AuditLog, len(d.audits))
	copy(out, d.audits)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
