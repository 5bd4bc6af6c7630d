// Package config handles two unrelated configuration surfaces: (1) the
// smoothing family's `-<param>_<target>` config file format from spec §6,
// and (2) optional `.env`-sourced defaults for CLI flags (domain stack
// addition; see SPEC_FULL.md §6). Neither is required — ParseSmoothingConfig
// starts from smoothing.DefaultParams, so a value the file does not set keeps
// its default, and a run with no `.env` file falls back to cobra's built-in
// flag defaults.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/omenforge/omen/internal/errs"
	"github.com/omenforge/omen/internal/smoothing"
)

// ParseSmoothingConfig reads a smoothing config file: the first non-blank
// token names the family (only "additive" is implemented), followed by
// lines `-<param>_<target> <value>` where target ∈ {all, IP, CP, EP, LN}
// and param ∈ {delta, levelAdjust}. A later `all` or target-specific line
// overrides any earlier value for that target (spec §6).
func ParseSmoothingConfig(path string) (smoothing.Params, error) {
	p := smoothing.DefaultParams()

	f, err := os.Open(path)
	if err != nil {
		return p, errs.New(errs.KindIO, "config.ParseSmoothingConfig", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	family := ""
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if family == "" {
			family = line
			if family != "additive" {
				return p, errs.New(errs.KindConfig, "config.ParseSmoothingConfig", fmt.Errorf("unknown smoothing family %q", family))
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 || !strings.HasPrefix(fields[0], "-") {
			return p, errs.New(errs.KindConfig, "config.ParseSmoothingConfig", fmt.Errorf("malformed line %q", line))
		}
		key := strings.TrimPrefix(fields[0], "-")
		parts := strings.SplitN(key, "_", 2)
		if len(parts) != 2 {
			return p, errs.New(errs.KindConfig, "config.ParseSmoothingConfig", fmt.Errorf("malformed key %q", key))
		}
		param, target := parts[0], parts[1]
		value, err := strconv.Atoi(fields[1])
		if err != nil {
			return p, errs.New(errs.KindConfig, "config.ParseSmoothingConfig", fmt.Errorf("non-integer value in %q", line))
		}
		if err := applyOne(&p, param, target, value); err != nil {
			return p, errs.New(errs.KindConfig, "config.ParseSmoothingConfig", err)
		}
	}
	if err := sc.Err(); err != nil {
		return p, errs.New(errs.KindIO, "config.ParseSmoothingConfig", err)
	}
	return p, nil
}

func applyOne(p *smoothing.Params, param, target string, value int) error {
	kinds, err := targetsFor(target)
	if err != nil {
		return err
	}
	switch param {
	case "delta":
		for _, k := range kinds {
			p.Delta[k] = value
		}
	case "levelAdjust":
		for _, k := range kinds {
			p.LevelAdjust[k] = value
		}
	default:
		return fmt.Errorf("unknown smoothing param %q", param)
	}
	return nil
}

func targetsFor(target string) ([]smoothing.Kind, error) {
	switch target {
	case "all":
		return []smoothing.Kind{smoothing.KindIP, smoothing.KindCP, smoothing.KindEP, smoothing.KindLN}, nil
	case "IP":
		return []smoothing.Kind{smoothing.KindIP}, nil
	case "CP":
		return []smoothing.Kind{smoothing.KindCP}, nil
	case "EP":
		return []smoothing.Kind{smoothing.KindEP}, nil
	case "LN":
		return []smoothing.Kind{smoothing.KindLN}, nil
	default:
		return nil, fmt.Errorf("unknown smoothing target %q", target)
	}
}

// EnvDefaults holds `.env`-sourced flag defaults; zero values mean "not set,
// use the CLI's own default."
type EnvDefaults struct {
	ResultsDir  string
	MaxAttempts uint64
}

// LoadEnvDefaults loads a `.env` file from the working directory if present
// (silently doing nothing if absent — this layer is pure convenience, spec
// §6's "Environment: none required" still holds) and reads OMEN_RESULTS_DIR
// / OMEN_MAX_ATTEMPTS into an EnvDefaults.
func LoadEnvDefaults() EnvDefaults {
	_ = godotenv.Load() // optional; absence is not an error

	var d EnvDefaults
	d.ResultsDir = os.Getenv("OMEN_RESULTS_DIR")
	if v := os.Getenv("OMEN_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			d.MaxAttempts = n
		}
	}
	return d
}
