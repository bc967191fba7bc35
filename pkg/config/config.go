package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	API     APIConfig
	Storage StorageConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Backend BackendConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// APIConfig cliente HTTP hacia el backend.
type APIConfig struct {
	BaseURL   string
	Retries   int
	UserAgent string
}

// StorageConfig persistencia local de sesión y carrito.
// Backend: memory | file | redis | postgres.
type StorageConfig struct {
	Backend     string
	FilePath    string // backend file
	RedisAddr   string // backend redis
	RedisDB     int
	KeyPrefix   string
	DatabaseURL string // backend postgres
}

// JWTConfig configuración de JWT (firma en el backend de desarrollo).
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BackendConfig servidor de la API de desarrollo (cmd/demoapi). El puerto por
// defecto coincide con el de API_BASE_URL para que ambos binarios conecten
// sin configuración.
type BackendConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha del backend (host:port).
func (c BackendConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, API_BASE_URL, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "tienda-spa"),
		},
		API: APIConfig{
			BaseURL:   getString(v, "API_BASE_URL", "http://localhost:3000"),
			Retries:   getInt(v, "API_RETRIES", 1),
			UserAgent: getString(v, "API_USER_AGENT", "tienda-spa/1.0"),
		},
		Storage: StorageConfig{
			Backend:     getString(v, "STORAGE_BACKEND", "file"),
			FilePath:    getString(v, "STORAGE_FILE_PATH", ".tienda-spa.json"),
			RedisAddr:   getString(v, "STORAGE_REDIS_ADDR", "localhost:6379"),
			RedisDB:     getInt(v, "STORAGE_REDIS_DB", 0),
			KeyPrefix:   getString(v, "STORAGE_KEY_PREFIX", "tienda"),
			DatabaseURL: getString(v, "DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "tienda-spa"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Backend: BackendConfig{
			Host: getString(v, "BACKEND_HOST", "0.0.0.0"),
			Port: getInt(v, "BACKEND_PORT", 3000),
		},
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
