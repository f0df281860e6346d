package setup

import (
	"fmt"

	"github.com/lazythumb/lazythumb/internal/config"
	"github.com/lazythumb/lazythumb/internal/domain"
	"github.com/lazythumb/lazythumb/internal/handler"
	"github.com/lazythumb/lazythumb/internal/jwt"
	"github.com/lazythumb/lazythumb/internal/middleware"
	"github.com/lazythumb/lazythumb/internal/resizer"
	"github.com/lazythumb/lazythumb/internal/service"
	"github.com/lazythumb/lazythumb/internal/sizes"
	"github.com/lazythumb/lazythumb/internal/storage/fs"
	"github.com/lazythumb/lazythumb/internal/storage/pg"
	"github.com/lazythumb/lazythumb/internal/urlparse"
)

// Dependencies holds all initialized collaborators. Everything is built
// exactly once here and passed by reference; nothing in the request path
// reaches for globals or lazily initialized caches.
type Dependencies struct {
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Config         *config.Config
	Catalog        *sizes.Catalog
	MediaPrefix    string
}

// Options tweaks dependency construction beyond the config file.
type Options struct {
	// RegisteredSizes are code-level size registrations. They take
	// precedence over config-file sizes of the same name.
	RegisteredSizes []domain.SizeDefinition
	// AttachmentFilter, when set, can veto or swap reverse-lookup results.
	AttachmentFilter service.AttachmentFilter
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config, opts Options) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	media := cfg.Public.Media

	files, err := fs.New(media.UploadDir)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	parser, err := urlparse.New(files.Root(), media.BaseURL)
	if err != nil {
		storage.Cleanup()
		return nil, err
	}

	catalog := sizes.New(cfg.Public.SizeDefinitions(), opts.RegisteredSizes)

	executor := resizer.New(media.JpegQuality)

	var lookup pg.AttachmentLookup
	switch media.Lookup {
	case "scan":
		lookup = &pg.ScanLookup{Storage: storage}
	case "native", "":
		lookup = &pg.NativeLookup{Storage: storage}
	default:
		storage.Cleanup()
		return nil, fmt.Errorf("unknown lookup strategy %q", media.Lookup)
	}

	resolver := service.NewResolver(parser, catalog, lookup, opts.AttachmentFilter, executor)
	precompute := service.NewPrecomputer(catalog, storage, executor, parser)
	mediaService := service.NewMedia(files, storage, precompute, media.AllowedMimeTypes)

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	authMw := middleware.NewAuth(jwtService)

	h := handler.New(mediaService, resolver, catalog, cfg)

	return &Dependencies{
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: authMw,
		Config:         cfg,
		Catalog:        catalog,
		MediaPrefix:    parser.BasePath(),
	}, nil
}
