// Package config собирает настройки сервера из флагов командной строки и
// переменных окружения INKPAGE_*. Флаг, заданный явно, важнее переменной.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "INKPAGE_"

// Поддерживаемые хранилища
const (
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// Форматы логов
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ErrInvalidConfig означает, что значение настройки недопустимо
var ErrInvalidConfig = errors.New("invalid config")

// Config содержит все настройки сервера
type Config struct {
	Addr      string // Addr адрес HTTP сервера
	Store     string // Store тип хранилища: sqlite или bolt
	DBPath    string // DBPath путь к файлу базы данных
	LogLevel  string
	LogFormat string

	CacheSize int // CacheSize размер LRU кеша страниц, 0 отключает кеш

	PollTimeout     time.Duration // PollTimeout время ожидания пустого long-poll запроса
	IdleTTL         time.Duration // IdleTTL простой, после которого состояние страницы в памяти удаляется
	JanitorInterval time.Duration
	ShutdownTimeout time.Duration

	FadeInterval time.Duration // FadeInterval период угасания, 0 отключает
	FadeDelta    float64
	FadeCutoff   float64

	RateLimit  int // RateLimit число мутаций на IP за RateWindow, 0 отключает
	RateWindow time.Duration

	ShowVersion bool
}

// Default возвращает настройки по умолчанию
func Default() Config {
	return Config{
		Addr:            ":8080",
		Store:           StoreSQLite,
		DBPath:          "inkpage.db",
		LogLevel:        "info",
		LogFormat:       LogFormatText,
		CacheSize:       1024,
		PollTimeout:     10 * time.Second,
		IdleTTL:         10 * time.Minute,
		JanitorInterval: time.Minute,
		ShutdownTimeout: 10 * time.Second,
		FadeInterval:    0,
		FadeDelta:       0.05,
		FadeCutoff:      0.1,
		RateLimit:       600,
		RateWindow:      time.Minute,
	}
}

// Parse разбирает args (без имени программы). getenv обычно os.Getenv.
// Переменные окружения задают значения по умолчанию для флагов.
func Parse(name string, args []string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	env := envReader{getenv: getenv}

	env.str("ADDR", &cfg.Addr)
	env.str("STORE", &cfg.Store)
	env.str("DB_PATH", &cfg.DBPath)
	env.str("LOG_LEVEL", &cfg.LogLevel)
	env.str("LOG_FORMAT", &cfg.LogFormat)
	env.integer("CACHE_SIZE", &cfg.CacheSize)
	env.duration("POLL_TIMEOUT", &cfg.PollTimeout)
	env.duration("IDLE_TTL", &cfg.IdleTTL)
	env.duration("JANITOR_INTERVAL", &cfg.JanitorInterval)
	env.duration("SHUTDOWN_TIMEOUT", &cfg.ShutdownTimeout)
	env.duration("FADE_INTERVAL", &cfg.FadeInterval)
	env.float("FADE_DELTA", &cfg.FadeDelta)
	env.float("FADE_CUTOFF", &cfg.FadeCutoff)
	env.integer("RATE_LIMIT", &cfg.RateLimit)
	env.duration("RATE_WINDOW", &cfg.RateWindow)
	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "page store: sqlite or bolt")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the database file")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")
	fs.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "pages kept in the LRU read cache (0 disables)")
	fs.DurationVar(&cfg.PollTimeout, "poll-timeout", cfg.PollTimeout, "how long an empty long-poll waits before a heartbeat")
	fs.DurationVar(&cfg.IdleTTL, "idle-ttl", cfg.IdleTTL, "drop in-memory page state idle for longer than this")
	fs.DurationVar(&cfg.JanitorInterval, "janitor-interval", cfg.JanitorInterval, "how often idle page state is reaped")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	fs.DurationVar(&cfg.FadeInterval, "fade-interval", cfg.FadeInterval, "period of the background fade pass (0 disables)")
	fs.Float64Var(&cfg.FadeDelta, "fade-delta", cfg.FadeDelta, "alpha subtracted from every shape per fade pass")
	fs.Float64Var(&cfg.FadeCutoff, "fade-cutoff", cfg.FadeCutoff, "shapes with alpha below this are removed")
	fs.IntVar(&cfg.RateLimit, "rate-limit", cfg.RateLimit, "mutating requests per client per window (0 disables)")
	fs.DurationVar(&cfg.RateWindow, "rate-window", cfg.RateWindow, "rate limit window")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.ShowVersion {
		return &cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Addr == "" {
		invalid("addr is empty")
	}
	if c.Store != StoreSQLite && c.Store != StoreBolt {
		invalid("unknown store %q", c.Store)
	}
	if c.DBPath == "" {
		invalid("db path is empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		invalid("unknown log format %q", c.LogFormat)
	}
	if c.CacheSize < 0 {
		invalid("cache size must not be negative")
	}
	if c.PollTimeout <= 0 {
		invalid("poll timeout must be positive")
	}
	if c.IdleTTL <= 0 {
		invalid("idle ttl must be positive")
	}
	if c.JanitorInterval < 0 || c.FadeInterval < 0 {
		invalid("intervals must not be negative")
	}
	if c.FadeInterval > 0 && c.FadeDelta <= 0 {
		invalid("fade delta must be positive when fading is enabled")
	}
	if c.RateLimit < 0 {
		invalid("rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		invalid("rate window must be positive")
	}

	return errors.Join(errs...)
}

// ParseLevel переводит имя уровня логирования в slog.Level
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, s)
	}
	return level, nil
}

// envReader читает INKPAGE_* переменные, накапливая ошибки разбора
type envReader struct {
	getenv func(string) string
	errs   []error
}

func (e *envReader) lookup(key string) (string, bool) {
	if e.getenv == nil {
		return "", false
	}
	v := e.getenv(EnvPrefix + key)
	return v, v != ""
}

func (e *envReader) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, key, err))
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.lookup(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.lookup(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, err)
			return
		}
		*dst = d
	}
}
