package config

import (
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/lazythumb/lazythumb/internal/domain"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Http    Http                  `yaml:"http"`
	Media   Media                 `yaml:"media"`
	Sizes   map[string]SizeOption `yaml:"sizes" validate:"required,min=1"`
	Logging Logging               `yaml:"logging"`
	JwtTTL  time.Duration         `yaml:"jwt_ttl" validate:"required"`
}

type Http struct {
	Port          int  `yaml:"port" validate:"required"`
	SecureCookies bool `yaml:"secure_cookies"`
}

type Media struct {
	// UploadDir is the root under which originals and variants live.
	UploadDir string `yaml:"upload_dir" validate:"required"`
	// BaseURL is the public URL prefix that maps onto UploadDir, e.g. "/media".
	BaseURL          string   `yaml:"base_url" validate:"required"`
	MaxUploadSizeMB  int64    `yaml:"max_upload_size_mb" validate:"required"`
	AllowedMimeTypes []string `yaml:"allowed_mime_types" validate:"required,min=1"`
	JpegQuality      int      `yaml:"jpeg_quality" validate:"min=1,max=100"`
	// Lookup selects the attachment reverse-lookup strategy: "native"
	// (indexed equality on the stored path) or "scan" (suffix scan for
	// installs migrated from a different directory layout).
	Lookup string `yaml:"lookup" validate:"oneof=native scan"`
}

// SizeOption is the config-file layer of a size definition. Registrations
// made in code take precedence over these per size name.
type SizeOption struct {
	Width  int               `yaml:"width"`
	Height int               `yaml:"height"`
	Crop   domain.CropPolicy `yaml:"crop"`
}

type Logging struct {
	Level string `yaml:"level"`
	Json  bool   `yaml:"json"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key" validate:"required"`
}

type Pg struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"required"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname" validate:"required"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		panic("invalid config: " + err.Error())
	}

	return cfg
}

// SizeDefinitions converts the config-file sizes into catalog definitions.
func (p *Public) SizeDefinitions() []domain.SizeDefinition {
	defs := make([]domain.SizeDefinition, 0, len(p.Sizes))
	for name, opt := range p.Sizes {
		defs = append(defs, domain.SizeDefinition{
			Name:   name,
			Width:  opt.Width,
			Height: opt.Height,
			Crop:   opt.Crop,
		})
	}
	return defs
}
