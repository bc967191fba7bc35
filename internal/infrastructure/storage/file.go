package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var _ Store = (*FileStore)(nil)

// FileStore persiste las claves como un único documento JSON en disco. Es el
// backend por defecto del cliente local: un archivo por usuario, cada Set
// reescribe el documento completo (write-then-rename para no dejar archivos
// a medias).
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// NewFileStore abre (o crea) el archivo de datos. Un archivo corrupto no es
// fatal: se arranca con el mapa vacío y se sobrescribe en el próximo Set.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de datos: %w", err)
	}
	s := &FileStore{path: path, data: make(map[string]string)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("leer archivo de datos: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// Corrupto: se descarta y se arranca vacío.
		s.data = make(map[string]string)
	}
	return s, nil
}

// Get devuelve el valor o ErrKeyNotFound.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

// Set escribe el valor y persiste el documento completo.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.flush()
}

// Remove elimina la clave y persiste.
func (s *FileStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// flush escribe el documento a un temporal y lo renombra sobre el definitivo.
// Se llama con el mutex tomado.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar datos: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("escribir archivo temporal: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("renombrar archivo de datos: %w", err)
	}
	return nil
}
