// Package config loads settings from command-line flags, the environment
// and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/domino14/dropfour/heuristic"
	"github.com/domino14/dropfour/solver"
)

const envPrefix = "DROPFOUR"

const (
	ConfigDebug            = "debug"
	ConfigWorkers          = "workers"
	ConfigLookahead        = "lookahead"
	ConfigDumpPath         = "dump-path"
	ConfigNatsURL          = "nats-url"
	ConfigSolveSubject     = "solve-subject"
	ConfigProgressInterval = "progress-interval"
	ConfigCoefMine         = "coef-mine"
	ConfigCoefTheirs       = "coef-theirs"
	ConfigCoefNeutral      = "coef-neutral"
	ConfigCoefMyTabu       = "coef-my-tabu"
	ConfigCoefTheirTabu    = "coef-their-tabu"
	ConfigCoefTabuDefense  = "coef-tabu-defense"
	ConfigMaxWorkers       = "max-workers"
	ConfigMaxLookahead     = "max-lookahead"
	ConfigBestStartDepth   = "best-start-depth"
	ConfigBestRespite      = "best-respite"
	ConfigBestTolerable    = "best-tolerable"
	ConfigCPUProfile       = "cpu-profile"
	ConfigMemProfile       = "mem-profile"
)

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrBadValue       = errors.New("bad setting value")
)

var keys = []string{
	ConfigDebug, ConfigWorkers, ConfigLookahead, ConfigDumpPath, ConfigNatsURL,
	ConfigSolveSubject, ConfigProgressInterval, ConfigCoefMine, ConfigCoefTheirs,
	ConfigCoefNeutral, ConfigCoefMyTabu, ConfigCoefTheirTabu, ConfigCoefTabuDefense,
	ConfigMaxWorkers, ConfigMaxLookahead, ConfigBestStartDepth, ConfigBestRespite,
	ConfigBestTolerable, ConfigCPUProfile, ConfigMemProfile,
}

type Config struct {
	*viper.Viper
}

func DefaultConfig() Config {
	c := Config{viper.New()}
	coeffs := heuristic.DefaultCoefficients()
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigWorkers, solver.DefaultWorkers())
	c.SetDefault(ConfigLookahead, solver.DefaultLookahead)
	c.SetDefault(ConfigDumpPath, "")
	c.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	c.SetDefault(ConfigSolveSubject, "dropfour.solve")
	c.SetDefault(ConfigProgressInterval, solver.DefaultProgressInterval)
	c.SetDefault(ConfigCoefMine, coeffs.Mine)
	c.SetDefault(ConfigCoefTheirs, coeffs.Theirs)
	c.SetDefault(ConfigCoefNeutral, coeffs.Neutral)
	c.SetDefault(ConfigCoefMyTabu, coeffs.MyTabu)
	c.SetDefault(ConfigCoefTheirTabu, coeffs.TheirTabu)
	c.SetDefault(ConfigCoefTabuDefense, coeffs.TabuDefense)
	c.SetDefault(ConfigMaxWorkers, runtime.NumCPU())
	c.SetDefault(ConfigMaxLookahead, 10)
	c.SetDefault(ConfigBestStartDepth, 6)
	c.SetDefault(ConfigBestRespite, 400*time.Millisecond)
	c.SetDefault(ConfigBestTolerable, 2800*time.Millisecond)
	c.SetDefault(ConfigCPUProfile, "")
	c.SetDefault(ConfigMemProfile, "")
	return c
}

// Load fills c from args and the environment. Anything not set there
// keeps its default.
func (c *Config) Load(args []string) error {
	if c.Viper == nil {
		*c = DefaultConfig()
	}
	c.SetEnvPrefix(envPrefix)
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	fs := pflag.NewFlagSet("dropfour", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, c.GetBool(ConfigDebug), "debug logging on")
	fs.Int(ConfigWorkers, c.GetInt(ConfigWorkers), "number of solver workers")
	fs.Int(ConfigLookahead, c.GetInt(ConfigLookahead), "depth of the exhaustive pre-check on new positions; 0 turns it off")
	fs.String(ConfigDumpPath, c.GetString(ConfigDumpPath), "write a YAML report of every solve to this file")
	fs.String(ConfigNatsURL, c.GetString(ConfigNatsURL), "the NATS server URL")
	fs.String(ConfigSolveSubject, c.GetString(ConfigSolveSubject), "the NATS subject solve requests arrive on")
	fs.Duration(ConfigProgressInterval, c.GetDuration(ConfigProgressInterval), "how often a running solve logs its progress")
	fs.Float32(ConfigCoefMine, float32(c.GetFloat64(ConfigCoefMine)), "weight of own potential lines")
	fs.Float32(ConfigCoefTheirs, float32(c.GetFloat64(ConfigCoefTheirs)), "weight of blocked opponent lines")
	fs.Float32(ConfigCoefNeutral, float32(c.GetFloat64(ConfigCoefNeutral)), "weight of lines nobody owns yet")
	fs.Float32(ConfigCoefMyTabu, float32(c.GetFloat64(ConfigCoefMyTabu)), "score of a move that lets the opponent win on top of it")
	fs.Float32(ConfigCoefTheirTabu, float32(c.GetFloat64(ConfigCoefTheirTabu)), "score of a move that creates a winning cell for us")
	fs.Float32(ConfigCoefTabuDefense, float32(c.GetFloat64(ConfigCoefTabuDefense)), "weight of removed opponent threats")
	fs.Int(ConfigMaxWorkers, c.GetInt(ConfigMaxWorkers), "most workers a bot request may ask for")
	fs.Int(ConfigMaxLookahead, c.GetInt(ConfigMaxLookahead), "deepest pre-check a bot request may ask for")
	fs.Int(ConfigBestStartDepth, c.GetInt(ConfigBestStartDepth), "depth of the first best-move search on a board")
	fs.Duration(ConfigBestRespite, c.GetDuration(ConfigBestRespite), "a best-move search faster than this deepens the next one")
	fs.Duration(ConfigBestTolerable, c.GetDuration(ConfigBestTolerable), "a best-move search slower than this makes the next one shallower")
	fs.String(ConfigCPUProfile, c.GetString(ConfigCPUProfile), "write a CPU profile to this file")
	fs.String(ConfigMemProfile, c.GetString(ConfigMemProfile), "write a memory profile to this file on exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return c.BindPFlags(fs)
}

// SanitizedSettings lists every setting for logging.
func (c Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	if u, ok := settings[ConfigNatsURL].(string); ok && strings.Contains(u, "@") {
		settings[ConfigNatsURL] = "<redacted>"
	}
	return settings
}

func (c Config) Coefficients() heuristic.Coefficients {
	return heuristic.Coefficients{
		Mine:        float32(c.GetFloat64(ConfigCoefMine)),
		Theirs:      float32(c.GetFloat64(ConfigCoefTheirs)),
		Neutral:     float32(c.GetFloat64(ConfigCoefNeutral)),
		MyTabu:      float32(c.GetFloat64(ConfigCoefMyTabu)),
		TheirTabu:   float32(c.GetFloat64(ConfigCoefTheirTabu)),
		TabuDefense: float32(c.GetFloat64(ConfigCoefTabuDefense)),
	}
}

// SolverConfig builds the settings of one solve.
func (c Config) SolverConfig() solver.Config {
	return solver.Config{
		Workers:          c.GetInt(ConfigWorkers),
		Lookahead:        c.GetInt(ConfigLookahead),
		Coefficients:     c.Coefficients(),
		DumpPath:         c.GetString(ConfigDumpPath),
		ProgressInterval: c.GetDuration(ConfigProgressInterval),
	}
}

// SetValue changes a setting from its text form. Only known keys are
// accepted, and the value must parse as the type of the default.
func (c Config) SetValue(key, value string) error {
	if !lo.Contains(keys, key) {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	var (
		v   any
		err error
	)
	switch DefaultConfig().Get(key).(type) {
	case bool:
		v, err = cast.ToBoolE(value)
	case int:
		v, err = cast.ToIntE(value)
	case time.Duration:
		v, err = cast.ToDurationE(value)
	case float32, float64:
		v, err = cast.ToFloat64E(value)
	default:
		v = value
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBadValue, key, err)
	}
	c.Set(key, v)
	return nil
}
