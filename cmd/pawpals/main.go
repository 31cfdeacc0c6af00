package main

import (
	"fmt"
	"os"

	"github.com/aimerfeng/PawPals/internal/cli"
	"github.com/aimerfeng/PawPals/internal/config"
	"github.com/aimerfeng/PawPals/internal/ui"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	_ = godotenv.Load()

	root := &cli.CLI{}
	versionString := buildVersion()

	parser, err := kong.New(root,
		kong.Name("pawpals"),
		kong.Description("Find dog walkers, sitters and open job posts near you."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": versionString},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fallbackUI := ui.New(os.Stdout, os.Stderr, ui.NormalizeColorMode(os.Getenv("PAWPALS_COLOR")), false)
		fallbackUI.Errorf("%v", err)
		os.Exit(1)
	}

	colorMode := ui.NormalizeColorMode(root.Color)
	userInterface := ui.New(os.Stdout, os.Stderr, colorMode, false)

	cfg, err := config.LoadFile()
	if err != nil {
		userInterface.Errorf("%v", err)
		os.Exit(1)
	}
	configDir, err := config.ConfigDir()
	if err != nil {
		userInterface.Errorf("%v", err)
		os.Exit(1)
	}

	level := zerolog.WarnLevel
	if root.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	log.Logger = logger

	runCtx := &cli.Context{
		Out:       os.Stdout,
		Err:       os.Stderr,
		UI:        userInterface,
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
		Version:   versionString,
		ColorMode: colorMode,
	}

	if err := kctx.Run(runCtx); err != nil {
		if !cli.Reported(err) {
			userInterface.Errorf("%v", err)
		}
		os.Exit(1)
	}
}

func buildVersion() string {
	switch {
	case commit == "" && date == "":
		return version
	case commit == "":
		return fmt.Sprintf("%s (%s)", version, date)
	case date == "":
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}
