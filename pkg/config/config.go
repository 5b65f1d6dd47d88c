package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración del servicio de órdenes (env vars con Viper, .env opcional).
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Redis  RedisConfig
	Orders OrdersConfig
}

type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig conexión a PostgreSQL. DatabaseURL tiene prioridad sobre los campos sueltos.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	ForceIPv4   bool // redes de contenedores sin IPv6
}

// ConnectionString devuelve DATABASE_URL o, si está vacío, el DSN armado con los campos sueltos.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Addr dirección de escucha host:port.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig URL vacía deshabilita la idempotencia de POST /orders.
type RedisConfig struct {
	URL            string
	IdempotencyTTL time.Duration
}

// OrdersConfig parámetros del motor de órdenes y stock.
type OrdersConfig struct {
	InvoiceMaxRetries    int    // candidatos antes del número con sufijo de tiempo
	InvoiceDefaultPrefix string // prefijo de ventas si ni bodega ni empresa lo definen
	AllowNegativeStock   bool
}

var defaults = map[string]interface{}{
	"APP_ENV":                "development",
	"APP_NAME":               "ordenes-api",
	"LOG_LEVEL":              "info",
	"DB_HOST":                "localhost",
	"DB_PORT":                5432,
	"DB_USER":                "postgres",
	"DB_NAME":                "ordenes",
	"DB_SSLMODE":             "disable",
	"DB_MAX_CONNS":           25,
	"DB_MIN_CONNS":           2,
	"DB_FORCE_IPV4":          false,
	"JWT_EXPIRATION_MINUTES": 60,
	"JWT_ISSUER":             "ordenes-api",
	"HTTP_HOST":              "0.0.0.0",
	"HTTP_PORT":              8080,
	"HTTP_TIMEOUT_SECONDS":   10,
	"IDEMPOTENCY_TTL_HOURS":  24,
	"INVOICE_MAX_RETRIES":    10,
	"INVOICE_DEFAULT_PREFIX": "INV",
	"STOCK_ALLOW_NEGATIVE":   true,
}

// Load lee .env / config.env si existen y luego el entorno, que tiene prioridad.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")
	for _, name := range []string{".env", "config"} {
		v.SetConfigName(name)
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		_ = v.MergeInConfig() // archivo opcional
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	timeout := time.Duration(v.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second
	cfg := &Config{
		App: AppConfig{
			Env:      v.GetString("APP_ENV"),
			Name:     v.GetString("APP_NAME"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		DB: DBConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetInt("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			MaxConns:    v.GetInt32("DB_MAX_CONNS"),
			MinConns:    v.GetInt32("DB_MIN_CONNS"),
			ForceIPv4:   v.GetBool("DB_FORCE_IPV4"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: v.GetInt("JWT_EXPIRATION_MINUTES"),
			Issuer:     v.GetString("JWT_ISSUER"),
		},
		HTTP: HTTPConfig{
			Host:         v.GetString("HTTP_HOST"),
			Port:         v.GetInt("HTTP_PORT"),
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		Redis: RedisConfig{
			URL:            v.GetString("REDIS_URL"),
			IdempotencyTTL: time.Duration(v.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
		Orders: OrdersConfig{
			InvoiceMaxRetries:    v.GetInt("INVOICE_MAX_RETRIES"),
			InvoiceDefaultPrefix: v.GetString("INVOICE_DEFAULT_PREFIX"),
			AllowNegativeStock:   v.GetBool("STOCK_ALLOW_NEGATIVE"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Orders.InvoiceMaxRetries < 1 {
		errs = append(errs, errors.New("INVOICE_MAX_RETRIES debe ser >= 1"))
	}
	if c.Orders.InvoiceDefaultPrefix == "" {
		errs = append(errs, errors.New("INVOICE_DEFAULT_PREFIX no puede estar vacío"))
	}
	if c.DB.MaxConns < 1 || c.DB.MinConns < 0 || c.DB.MinConns > c.DB.MaxConns {
		errs = append(errs, fmt.Errorf("pool inválido: DB_MIN_CONNS=%d DB_MAX_CONNS=%d", c.DB.MinConns, c.DB.MaxConns))
	}
	if c.Redis.URL != "" && c.Redis.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL_HOURS debe ser > 0"))
	}
	return errors.Join(errs...)
}
