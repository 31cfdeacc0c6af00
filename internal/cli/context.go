package cli

import (
	"context"
	"io"

	"github.com/aimerfeng/PawPals/internal/config"
	"github.com/aimerfeng/PawPals/internal/database"
	"github.com/aimerfeng/PawPals/internal/geocode"
	"github.com/aimerfeng/PawPals/internal/ratings"
	"github.com/aimerfeng/PawPals/internal/store"
	"github.com/aimerfeng/PawPals/internal/ui"
	"github.com/rs/zerolog"
)

type Context struct {
	Out       io.Writer
	Err       io.Writer
	UI        *ui.UI
	Config    config.FileConfig
	ConfigDir string
	Logger    zerolog.Logger
	Version   string
	ColorMode ui.ColorMode

	// Connect opens the data sources a command needs
	Connect func(ctx context.Context, cfg config.FileConfig) (*Backend, error)
}

// Backend is what commands run against
type Backend struct {
	Store    store.Store
	Geocoder geocode.Geocoder
	Refresh  ratings.RefreshFunc
	Close    func()
}

// Connect dials Postgres and, when a token is configured, the geocoder
func Connect(ctx context.Context, cfg config.FileConfig) (*Backend, error) {
	if cfg.DatabaseURL == "" {
		return nil, errNoDatabase
	}
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	b := &Backend{
		Store:   store.NewPostgres(db.Pool),
		Refresh: ratings.NewRefresher(db.Pool).RefreshAll,
		Close:   db.Close,
	}
	if cfg.GeocoderToken != "" {
		b.Geocoder = geocode.NewMapbox(geocode.Options{AccessToken: cfg.GeocoderToken})
	}
	return b, nil
}

func (c *Context) backend(ctx context.Context) (*Backend, error) {
	connect := c.Connect
	if connect == nil {
		connect = Connect
	}
	b, err := connect(ctx, c.Config)
	if err != nil {
		return nil, err
	}
	if b.Close == nil {
		b.Close = func() {}
	}
	return b, nil
}
