package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aimerfeng/PawPals/internal/export"
	"github.com/aimerfeng/PawPals/internal/location"
	"github.com/aimerfeng/PawPals/internal/models"
	"github.com/aimerfeng/PawPals/internal/search"
)

type SearchCmd struct {
	Location string   `arg:"" optional:"" help:"Address or place to search around. Falls back to the configured default address."`
	Near     string   `help:"Explicit origin as \"lat,lng\"; takes precedence over the location argument."`
	Service  string   `short:"s" help:"Service type: walk, daycare, boarding, drop-in, training, house-sitting."`
	Breeds   []string `short:"b" sep:"," help:"Breeds to match (any of)."`
	Distance float64  `short:"d" help:"Radius in miles (default from config, else 5)."`
	Type     string   `short:"t" help:"Result type: all, jobs, providers." enum:"all,jobs,providers" default:"all"`
	Sort     string   `help:"Price order: none, lowToHigh, highToLow." default:"none"`
	Format   string   `short:"f" help:"Output format: table, csv, json, md (default from config)."`
}

func (s *SearchCmd) Run(ctx *Context) error {
	req, format, err := s.request(ctx)
	if err != nil {
		return err
	}

	runCtx := context.Background()
	b, err := ctx.backend(runCtx)
	if err != nil {
		return err
	}
	defer b.Close()

	svc := search.NewService(b.Store, b.Geocoder, search.Config{DefaultDistanceMiles: ctx.Config.DefaultDistance})
	resp, err := svc.Search(runCtx, req, search.Capabilities{})
	if err != nil {
		if errors.Is(err, search.ErrFetchFailed) {
			ctx.Logger.Debug().Err(err).Msg("search fetch failed")
			ctx.UI.Errorf("Failed to load services. Please try again.")
			return reportedError{err}
		}
		return err
	}

	for _, advisory := range resp.Advisories {
		ctx.UI.Warnf("%s", advisory)
	}
	if resp.LocationLabel != "" && format == export.FormatTable {
		ctx.UI.Infof("Within %.0f mi of %s", resp.DistanceMiles, resp.LocationLabel)
	}

	if err := export.WriteResults(ctx.Out, resp.Results, format, export.WriteOptions{ColorEnabled: ctx.UI.ColorEnabled}); err != nil {
		return err
	}
	if format == export.FormatTable {
		fmt.Fprintln(ctx.Out, ctx.UI.Muted(fmt.Sprintf("%d result(s)", resp.Total)))
	}
	return nil
}

// request validates flags and merges config defaults
func (s *SearchCmd) request(ctx *Context) (search.Request, export.Format, error) {
	var (
		req search.Request
		err error
	)

	format, err := export.ParseFormat(firstNonEmpty(s.Format, ctx.Config.DefaultFormat))
	if err != nil {
		return req, "", err
	}
	if req.ServiceType, err = models.ParseServiceType(s.Service); err != nil {
		return req, "", err
	}
	if req.ResultType, err = search.ParseResultType(s.Type); err != nil {
		return req, "", err
	}
	if req.SortOrder, err = search.ParseSortOrder(s.Sort); err != nil {
		return req, "", err
	}
	if !search.ValidDistance(s.Distance) {
		return req, "", fmt.Errorf("distance must be a finite, non-negative number of miles")
	}
	req.DistanceMiles = s.Distance
	req.Breeds = models.NormalizeBreeds(s.Breeds)

	if near := strings.TrimSpace(s.Near); near != "" {
		p, err := location.ParsePoint(near)
		if err != nil || !p.Valid() {
			return req, "", fmt.Errorf("invalid --near %q: expected \"lat,lng\" within range", near)
		}
		req.Point = &p
		return req, format, nil
	}
	req.Query = firstNonEmpty(s.Location, ctx.Config.DefaultAddress)
	return req, format, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
