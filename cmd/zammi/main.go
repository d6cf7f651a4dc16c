// Command zammi runs the game.
//
// Settings come from an INI file (default settings.ini) with ZAMMI_* overrides
// from the environment and an optional .env file:
//
//	zammi -settings settings.ini -env .env
//
// Relative paths under [paths] resolve against paths.assets. With
// -script the game replays a JSON test script, injecting keys, clicks and
// poses and saving screenshots, then keeps running.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/phanxgames/zammi/game"
	"github.com/phanxgames/zammi/internal/config"
	zlog "github.com/phanxgames/zammi/internal/log"
)

func main() {
	settingsPath := flag.String("settings", "settings.ini", "settings file")
	envPath := flag.String("env", ".env", "environment file")
	script := flag.String("script", "", "JSON test script (overrides paths.test_script)")
	debug := flag.Bool("debug", false, "start with the debug overlay on")
	flag.Parse()

	if err := config.LoadEnvFile(*envPath); err != nil {
		fatal("env file", err)
	}
	s, err := config.Load(*settingsPath)
	if err != nil {
		fatal("settings", err)
	}
	if *script != "" {
		// A script named on the command line is relative to the working
		// directory, not to paths.assets.
		abs, err := filepath.Abs(*script)
		if err != nil {
			fatal("script", err)
		}
		s.Paths.TestScript = abs
	}
	if *debug {
		s.Debug.Enabled = true
	}

	zlog.Init(s.Log.Level)
	zlog.Info("settings loaded", "path", *settingsPath, "story", s.Paths.Story, "poses", s.Paths.Poses)
	if err := game.Run(s); err != nil {
		fatal("game", err)
	}
}

func fatal(msg string, err error) {
	zlog.Error(msg, "err", err)
	os.Exit(1)
}
