// Copyright 2023 The STVP Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"time"

	"github.com/pkg/errors"
	"github.com/spezifisch/stvp/logger"
	"github.com/spezifisch/stvp/mpvplayer"
	"github.com/spezifisch/stvp/playback"
	"github.com/spezifisch/stvp/remote"
	tviewcommand "github.com/spezifisch/tview-command"
	"github.com/spf13/viper"
)

var osExit = os.Exit  // A variable to allow mocking os.Exit in tests
var headlessMode bool // This can be set to true during tests
var testMode bool     // This can be set to true during tests, too

const DEVELOPMENT = "development"

// Name is the program name shown in the status bar
var Name string = "stvp"

// Version is the program version; usually set from BuildInfo
var Version string = DEVELOPMENT

// playerConfig is the validated view of the viper config
type playerConfig struct {
	Skip       playback.Options
	Autoplay   bool
	MpvOptions map[string]string

	FFprobe         string
	MetadataTimeout time.Duration
	Sniff           bool
	CacheSize       int

	Keybindings string

	// JSON mirror of the log page, set from the command line
	LogFile string
}

func setConfigDefaults() {
	defaults := playback.DefaultOptions()
	viper.SetDefault("player.skip-forward", defaults.SkipForward)
	viper.SetDefault("player.skip-backward", defaults.SkipBackward)
	viper.SetDefault("player.autoplay", false)
	viper.SetDefault("player.mpv-options", map[string]string{})
	viper.SetDefault("videos.urls", []string{})
	viper.SetDefault("metadata.ffprobe", "ffprobe")
	viper.SetDefault("metadata.timeout", 10*time.Second)
	viper.SetDefault("metadata.sniff", true)
	viper.SetDefault("metadata.cache-size", 32)
	viper.SetDefault("ui.keybindings", "keybindings.toml")
}

func readConfig(configFile *string) error {
	setConfigDefaults()

	if configFile != nil && *configFile != "" {
		// use custom config file
		viper.SetConfigFile(*configFile)
	} else {
		// lookup default dirs
		viper.SetConfigName("stvp")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/stvp")
		viper.AddConfigPath(".")
	}

	// read it
	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if (configFile != nil && *configFile != "") || !errors.As(err, &notFound) {
			return fmt.Errorf("Config file error: %s\n", err)
		}
		// no config file in the default dirs, defaults apply
	}

	return nil
}

func loadPlayerConfig() (cfg playerConfig, err error) {
	cfg = playerConfig{
		Skip: playback.Options{
			SkipForward:  viper.GetDuration("player.skip-forward"),
			SkipBackward: viper.GetDuration("player.skip-backward"),
		},
		Autoplay:        viper.GetBool("player.autoplay"),
		MpvOptions:      viper.GetStringMapString("player.mpv-options"),
		FFprobe:         viper.GetString("metadata.ffprobe"),
		MetadataTimeout: viper.GetDuration("metadata.timeout"),
		Sniff:           viper.GetBool("metadata.sniff"),
		CacheSize:       viper.GetInt("metadata.cache-size"),
		Keybindings:     viper.GetString("ui.keybindings"),
	}

	switch {
	case cfg.Skip.SkipForward <= 0:
		err = fmt.Errorf("Config property player.skip-forward must be positive\n")
	case cfg.Skip.SkipBackward <= 0:
		err = fmt.Errorf("Config property player.skip-backward must be positive\n")
	case cfg.MetadataTimeout <= 0:
		err = fmt.Errorf("Config property metadata.timeout must be positive\n")
	case cfg.CacheSize < 1:
		err = fmt.Errorf("Config property metadata.cache-size must be at least 1\n")
	}
	return
}

// videoSources returns the command line arguments, or the configured
// videos.urls if there are none.
func videoSources(args []string) ([]string, error) {
	sources := args
	if len(sources) == 0 {
		sources = viper.GetStringSlice("videos.urls")
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no video given; pass one on the command line or set videos.urls")
	}
	return sources, nil
}

// initCommandHandler routes tview-command messages to our log and checks the
// keybinding file. The bindings themselves are read by loadKeyBindings.
func initCommandHandler(logger *logger.Logger, configPath string) {
	tviewcommand.SetLogHandler(func(msg string) {
		logger.Print(msg)
	})

	if _, err := os.Stat(configPath); err != nil {
		logger.Printf("no keybinding config at %s, using built-in keys", configPath)
		return
	}

	// Load the configuration file
	config, err := tviewcommand.LoadConfig(configPath)
	if err != nil || config == nil {
		logger.PrintError("Failed to load command-shortcut config", err)
	}
}

// return codes:
// 0 - OK
// 1 - generic errors
// 2 - main config errors
func main() {
	// parse flags and config
	help := flag.Bool("help", false, "Print usage")
	enableMpris := flag.Bool("mpris", false, "Enable MPRIS2")
	logFile := flag.String("log", "", "also write log messages as JSON to `file`")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile := flag.String("memprofile", "", "write memory profile to `file`")
	configFile := flag.String("config", "", "use config `file`")
	version := flag.Bool("version", false, "print the stvp version and exit")

	flag.Parse()
	if *help {
		fmt.Printf("USAGE: %s <args> <video file or URL>...\n", os.Args[0])
		flag.Usage()
		osExit(0)
		return
	}
	if Version == DEVELOPMENT {
		if bi, ok := debug.ReadBuildInfo(); ok {
			Version = bi.Main.Version
		}
	}
	if *version {
		fmt.Printf("stvp %s\n", Version)
		osExit(0)
		return
	}

	// cpu/memprofile code straight from https://pkg.go.dev/runtime/pprof
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close() // error handling omitted for example
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	// config gathering
	if err := readConfig(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read configuration from file '%s': %v\n", *configFile, err)
		osExit(2)
		return
	}
	cfg, err := loadPlayerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		osExit(2)
		return
	}
	videos, err := videoSources(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		fmt.Printf("USAGE: %s <args> <video file or URL>...\n", os.Args[0])
		osExit(2)
		return
	}

	logger := logger.Init()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Printf("Unable to open log file: %s\n", err)
			osExit(1)
			return
		}
		defer f.Close()
		logger.SetOutput(f)
		cfg.LogFile = *logFile
	}
	initCommandHandler(logger, cfg.Keybindings)

	if headlessMode {
		fmt.Println("Running in headless mode for testing.")
		osExit(0)
		return
	}

	// init mpv engine
	player, err := mpvplayer.NewPlayer(logger, cfg.MpvOptions)
	if err != nil {
		fmt.Printf("Unable to initialize mpv (%s). Is mpv installed?\n", err)
		osExit(1)
		return
	}

	ui := InitGui(videos, cfg, player, logger)

	// init mpris2 player control (linux only but fails gracefully on other systems)
	if *enableMpris {
		mprisPlayer, err := remote.RegisterMprisPlayer(ui, logger)
		if err != nil {
			fmt.Printf("Unable to register MPRIS with DBUS: %s\n", err)
			fmt.Println("Try running without MPRIS")
			osExit(1)
			return
		}
		defer mprisPlayer.Close()
	}

	if testMode {
		fmt.Println("Running in test mode for testing.")
		osExit(0x23420001)
		return
	}

	// run main loop
	if err := ui.Run(); err != nil {
		panic(err)
	}

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close() // error handling omitted for example
		runtime.GC()    // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}
