package main

import (
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/domino14/dropfour/config"
	"github.com/domino14/dropfour/shell"
)

var (
	GitVersion string
)

//go:embed dropfour.txt
var banner string

func main() {
	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}
	exPath := filepath.Dir(ex)
	fmt.Println(banner)
	fmt.Println(GitVersion)

	// Anything after a bare -- is a shell command to run instead of the
	// interactive loop.
	args := os.Args[1:]
	var command []string
	for i, a := range args {
		if a == "--" {
			args, command = args[:i], args[i+1:]
			break
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Load(args); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
	log.Info().Str("executable-path", exPath).Interface("settings", cfg.SanitizedSettings()).Msg("loaded-config")

	if p := cfg.GetString(config.ConfigCPUProfile); p != "" {
		stop, err := startCPUProfile(p)
		if err != nil {
			log.Fatal().Err(err).Str("path", p).Msg("cpu-profile")
		}
		defer stop()
	}

	// The shell signals on sig when the user quits; so does the OS.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	sc := shell.NewShellController(&cfg, exPath, GitVersion)
	if len(command) == 0 {
		go sc.Loop(sig)
		<-sig
	} else {
		sc.Execute(sig, strings.Join(command, " "))
	}

	if p := cfg.GetString(config.ConfigMemProfile); p != "" {
		if err := writeMemProfile(p); err != nil {
			log.Error().Err(err).Str("path", p).Msg("mem-profile")
		}
	}

	sc.Cleanup()
	log.Info().Msg("shell-exit")
}

func startCPUProfile(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		pprof.StopCPUProfile()
		f.Close()
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	memstats := &runtime.MemStats{}
	runtime.ReadMemStats(memstats)
	log.Info().Uint64("heap-alloc", memstats.HeapAlloc).Uint32("num-gc", memstats.NumGC).Msg("memory-stats")
	return pprof.WriteHeapProfile(f)
}
