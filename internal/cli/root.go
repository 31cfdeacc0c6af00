// Package cli implements the pawpals command-line client
package cli

import (
	"errors"

	"github.com/alecthomas/kong"
)

var errNoDatabase = errors.New("no database configured; set PAWPALS_DATABASE_URL or run `pawpals config init`")

// reportedError wraps a failure whose user-facing message a command has
// already printed
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already shown to the user
func Reported(err error) bool {
	var r reportedError
	return errors.As(err, &r)
}

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto" env:"PAWPALS_COLOR"`
	Verbose bool   `help:"Enable debug logging." env:"PAWPALS_VERBOSE"`

	VersionFlag kong.VersionFlag `name:"version" help:"Print version."`

	Search         SearchCmd         `cmd:"" help:"Search job posts and providers."`
	Provider       ProviderCmd       `cmd:"" help:"Show a provider profile with its rating."`
	RefreshRatings RefreshRatingsCmd `cmd:"" name:"refresh-ratings" help:"Recompute stored rating summaries."`
	Config         ConfigCmd         `cmd:"" help:"Manage client configuration."`
	Version        VersionCmd        `cmd:"" help:"Print version."`
}
