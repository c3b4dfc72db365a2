package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

// Cache backends.
const (
	CacheNull  = "null"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Artifact store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreGridFS = "gridfs"
)

// Server holds runtime settings for the HTTP server and the backends it
// shares with the CLI.
type Server struct {
	Addr         string        `env:"ADFORGE_ADDR" envDefault:":8080"`
	Catalog      string        `env:"ADFORGE_CATALOG"`
	ReadTimeout  time.Duration `env:"ADFORGE_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"ADFORGE_WRITE_TIMEOUT" envDefault:"2m"`
	MaxBodyBytes int64         `env:"ADFORGE_MAX_BODY_BYTES" envDefault:"10485760"`
	PublicURL    string        `env:"ADFORGE_PUBLIC_URL"`

	Cache    string `env:"ADFORGE_CACHE" envDefault:"file"`
	CacheDir string `env:"ADFORGE_CACHE_DIR"`
	RedisURL string `env:"ADFORGE_REDIS_URL" envDefault:"redis://localhost:6379/0"`

	Store       string `env:"ADFORGE_STORE" envDefault:"memory"`
	StoreDir    string `env:"ADFORGE_STORE_DIR" envDefault:"artifacts"`
	MongoURI    string `env:"ADFORGE_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string `env:"ADFORGE_MONGO_DB" envDefault:"adforge"`
	MongoBucket string `env:"ADFORGE_MONGO_BUCKET" envDefault:"artifacts"`

	JudgeURL   string `env:"ADFORGE_JUDGE_URL"`
	JudgeToken string `env:"ADFORGE_JUDGE_TOKEN"`
	NativePDF  bool   `env:"ADFORGE_NATIVE_PDF"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadServer reads and validates [Server] from the environment.
func LoadServer() (Server, error) {
	var s Server
	if err := ParseEnv(&s); err != nil {
		return Server{}, err
	}
	if err := s.Validate(); err != nil {
		return Server{}, err
	}
	return s, nil
}

// Validate checks backend names and limits.
func (s Server) Validate() error {
	if !slices.Contains([]string{CacheNull, CacheFile, CacheRedis}, s.Cache) {
		return fmt.Errorf("invalid cache backend %q (must be null, file or redis)", s.Cache)
	}
	if !slices.Contains([]string{StoreMemory, StoreFile, StoreGridFS}, s.Store) {
		return fmt.Errorf("invalid artifact store %q (must be memory, file or gridfs)", s.Store)
	}
	if s.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}
	return nil
}
