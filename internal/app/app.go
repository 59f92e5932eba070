package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/phenrril/stylevision/internal/adapters/httpserver"
	"github.com/phenrril/stylevision/internal/adapters/repo/memory"
	"github.com/phenrril/stylevision/internal/adapters/repo/postgres"
	"github.com/phenrril/stylevision/internal/domain"
	"github.com/phenrril/stylevision/internal/handoff"
	"github.com/phenrril/stylevision/internal/usecase"
)

type App struct {
	Config      Config
	DB          *gorm.DB
	KV          domain.KVStore
	Garments    domain.GarmentRepo
	Customers   domain.CustomerRepo
	Registry    *usecase.Registry
	CatalogUC   *usecase.CatalogUC
	CartUC      *usecase.CartUC
	PhotoUC     *usecase.PhotoUC
	FittingUC   *usecase.FittingUC
	OAuthConfig *oauth2.Config
}

// NewApp arma las dependencias. Con db nil o KV_DRIVER=memory todo queda en memoria.
func NewApp(cfg Config, db *gorm.DB) (*App, error) {
	a := &App{Config: cfg, DB: db}
	if db == nil || cfg.KVDriver == "memory" {
		a.DB = nil
		a.KV = memory.NewKVStore()
		a.Garments = memory.NewGarmentRepo(usecase.DefaultGarments()...)
		a.Customers = memory.NewCustomerRepo()
		log.Warn().Msg("almacenamiento en memoria: los datos no sobreviven un reinicio")
	} else {
		a.KV = postgres.NewKVStore(db)
		a.Garments = postgres.NewGarmentRepo(db)
		a.Customers = postgres.NewCustomerRepo(db)
	}

	if cfg.SessionKey == "" {
		log.Warn().Msg("SESSION_KEY vacío, las cookies se firman con una clave de desarrollo")
	}

	hc := handoff.NewComposer(cfg.WhatsAppNumber)
	a.Registry = usecase.NewRegistry(a.KV)
	a.PhotoUC = &usecase.PhotoUC{KV: a.KV, MaxBytes: cfg.MaxUploadMB << 20}
	a.CatalogUC = &usecase.CatalogUC{Garments: a.Garments, Handoff: hc}
	a.CartUC = &usecase.CartUC{Registry: a.Registry, Garments: a.Garments, Handoff: hc}
	a.FittingUC = &usecase.FittingUC{Registry: a.Registry, Garments: a.Garments, Photos: a.PhotoUC, KV: a.KV, Handoff: hc}

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		a.OAuthConfig = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.BaseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.CatalogUC, a.CartUC, a.FittingUC, a.PhotoUC, a.Customers, a.OAuthConfig, httpserver.Options{
		SessionKey:    []byte(a.Config.SessionKey),
		AdminAPIKey:   a.Config.AdminAPIKey,
		SecureCookies: a.Config.IsProduction(),
		MaxUploadMB:   a.Config.MaxUploadMB,
	})
}

// MigrateAndSeed crea las tablas y carga el catálogo inicial si está vacío.
func (a *App) MigrateAndSeed(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.AutoMigrate(&domain.Garment{}, &domain.KVEntry{}, &domain.Customer{}); err != nil {
		return err
	}
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_garments_category ON garments(category)").Error

	repo := postgres.NewGarmentRepo(a.DB)
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return seedGarments(ctx, repo)
}

func seedGarments(ctx context.Context, repo domain.GarmentRepo) error {
	for _, g := range usecase.DefaultGarments() {
		if err := repo.Save(ctx, &g); err != nil {
			return err
		}
	}
	log.Info().Int("garments", len(usecase.DefaultGarments())).Msg("catálogo inicial cargado")
	return nil
}

// Janitor vence los datos de sesión viejos y los probadores sin uso.
func (a *App) Janitor(ctx context.Context) {
	cutoff := time.Now().Add(-a.Config.SessionTTL)
	if p, ok := a.KV.(domain.KVPurger); ok {
		n, err := p.PurgeExpired(ctx, domain.SessionPrefix, cutoff)
		if err != nil {
			log.Error().Err(err).Msg("purga de sesiones")
		} else if n > 0 {
			log.Info().Int64("entries", n).Msg("sesiones vencidas eliminadas")
		}
	}
	if rooms, carts := a.Registry.Sweep(cutoff); rooms+carts > 0 {
		log.Info().Int("rooms", rooms).Int("carts", carts).Msg("estado inactivo descartado")
	}
}

// StartJanitor corre Janitor cada every hasta que ctx se cancele.
func (a *App) StartJanitor(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				a.Janitor(ctx)
			}
		}
	}()
}
