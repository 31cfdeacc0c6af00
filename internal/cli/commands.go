package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aimerfeng/PawPals/internal/config"
)

type RefreshRatingsCmd struct {
	Timeout time.Duration `help:"Give up after this long." default:"2m"`
}

func (r *RefreshRatingsCmd) Run(ctx *Context) error {
	runCtx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()

	b, err := ctx.backend(runCtx)
	if err != nil {
		return err
	}
	defer b.Close()
	if b.Refresh == nil {
		return errors.New("rating refresh is not available for this backend")
	}

	n, err := b.Refresh(runCtx)
	if err != nil {
		return err
	}
	ctx.UI.Successf("Refreshed %d rating summaries", n)
	return nil
}

type ConfigCmd struct {
	Init InitConfigCmd `cmd:"" help:"Write a default config file."`
	Path PathConfigCmd `cmd:"" help:"Print config directory."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

func (c *InitConfigCmd) Run(ctx *Context) error {
	path, err := config.InitFileIn(ctx.ConfigDir)
	if err != nil {
		return err
	}
	if path == "" {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
		return nil
	}
	ctx.UI.Infof("Created: %s", path)
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.ConfigDir)
	return err
}

type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.Version)
	return err
}
