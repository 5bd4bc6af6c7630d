// Package model loads a trained OMEN model: the config header plus the
// four level arrays (IP, CP, EP, LN). Grounded on the reference
// implementation's nGramReader.c (read_config) and the <cp>.level /
// <ip>.level / <ep>.level / <len>.level file format from spec §6.
package model

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/omenforge/omen/internal/alphabet"
	"github.com/omenforge/omen/internal/errs"
)

// MaxPasswordLength bounds the LN array and the length scheduler (spec §3,
// Lmax_pw = 20).
const MaxPasswordLength = 20

// Model is the tuple ⟨n, Σ, L, IP, CP, EP, LN⟩ from spec §3.
type Model struct {
	N        int // n-gram order, n ∈ [2,5]
	MaxLevel int // L, levels are [0, L)
	Alphabet *alphabet.Alphabet

	IP []int // len == |Σ|^(n-1)
	CP []int // len == |Σ|^n
	EP []int // len == |Σ|^(n-1)
	LN []int // len == MaxPasswordLength
}

// Config is the parsed `#`-prefixed header of a model config file.
type Config struct {
	Alphabet      string
	AlphabetSize  int
	NGram         int
	MaxLevel      int
	CPFile        string
	IPFile        string
	EPFile        string
	LenFile       string
	InputFile     string
	SmoothingFile string
}

// ParseConfig reads the header lines (`# -key value`) of a model config
// file. Unrecognised keys are ignored, matching read_config's behavior of
// only acting on known argName values.
func ParseConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.KindIO, "model.ParseConfig", err)
	}
	defer f.Close()

	cfg := &Config{MaxLevel: 11} // spec §3 default
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "#"))
		if len(fields) < 2 || !strings.HasPrefix(fields[0], "-") {
			continue
		}
		key := strings.TrimPrefix(fields[0], "-")
		value := fields[1]
		switch key {
		case "alphabet":
			cfg.Alphabet = value
		case "alphabetsize":
			n, err := strconv.Atoi(value)
			if err != nil || n == 0 {
				return nil, errs.New(errs.KindConfig, "model.ParseConfig", fmt.Errorf("bad header: alphabetsize %q", value))
			}
			cfg.AlphabetSize = n
		case "ngram":
			n, err := strconv.Atoi(value)
			if err != nil || n < 2 || n > 5 {
				return nil, errs.New(errs.KindConfig, "model.ParseConfig", fmt.Errorf("bad header: ngram %q out of [2,5]", value))
			}
			cfg.NGram = n
		case "maxLevel":
			n, err := strconv.Atoi(value)
			if err != nil || n < 2 || n > 101 {
				return nil, errs.New(errs.KindConfig, "model.ParseConfig", fmt.Errorf("bad header: maxLevel %q out of [2,101]", value))
			}
			cfg.MaxLevel = n
		case "cpout":
			cfg.CPFile = value
		case "ipout":
			cfg.IPFile = value
		case "epout":
			cfg.EPFile = value
		case "lenout":
			cfg.LenFile = value
		case "input":
			cfg.InputFile = value
		case "smoo":
			cfg.SmoothingFile = value
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.New(errs.KindIO, "model.ParseConfig", err)
	}
	if cfg.Alphabet == "" || cfg.NGram == 0 {
		return nil, errs.New(errs.KindConfig, "model.ParseConfig", fmt.Errorf("missing required header keys (alphabet/ngram)"))
	}
	return cfg, nil
}

// Load reads a config file and its four level files (resolved relative to
// dir, the directory containing the config file) into a Model, validating
// every shape and range invariant from spec §3.
func Load(configPath string) (*Model, error) {
	cfg, err := ParseConfig(configPath)
	if err != nil {
		return nil, err
	}
	alpha, err := alphabet.New(cfg.Alphabet)
	if err != nil {
		return nil, errs.New(errs.KindModel, "model.Load", err)
	}
	if cfg.AlphabetSize != 0 && cfg.AlphabetSize != alpha.Size() {
		return nil, errs.New(errs.KindModel, "model.Load", fmt.Errorf("alphabetsize header %d does not match alphabet length %d", cfg.AlphabetSize, alpha.Size()))
	}

	dir := dirOf(configPath)
	ipLen := pow(alpha.Size(), cfg.NGram-1)
	cpLen := pow(alpha.Size(), cfg.NGram)

	ip, err := readLevels(dir+cfg.IPFile, ipLen, cfg.MaxLevel)
	if err != nil {
		return nil, err
	}
	cp, err := readLevels(dir+cfg.CPFile, cpLen, cfg.MaxLevel)
	if err != nil {
		return nil, err
	}
	ep, err := readLevels(dir+cfg.EPFile, ipLen, cfg.MaxLevel)
	if err != nil {
		return nil, err
	}
	ln, err := readLevels(dir+cfg.LenFile, MaxPasswordLength, cfg.MaxLevel)
	if err != nil {
		return nil, err
	}

	return &Model{
		N:        cfg.NGram,
		MaxLevel: cfg.MaxLevel,
		Alphabet: alpha,
		IP:       ip,
		CP:       cp,
		EP:       ep,
		LN:       ln,
	}, nil
}

// readLevels reads a `<name>.level` file: a `#`-prefixed header line
// followed by one integer per line, line i (0-based) = level of code i.
// Levels above maxLevel-1 are clamped, matching sort_ngrams' clamp-on-sweep
// behavior (spec §4.2).
func readLevels(path string, want, maxLevel int) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.KindIO, "model.readLevels", err)
	}
	defer f.Close()

	out := make([]int, 0, want)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			return nil, errs.New(errs.KindModel, "model.readLevels", fmt.Errorf("%s: non-integer level %q", path, line))
		}
		if v > maxLevel-1 {
			v = maxLevel - 1
		}
		if v < 0 {
			v = 0
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.New(errs.KindIO, "model.readLevels", err)
	}
	if len(out) != want {
		return nil, errs.New(errs.KindModel, "model.readLevels", fmt.Errorf("%s: expected %d entries, got %d", path, want, len(out)))
	}
	return out, nil
}

func dirOf(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i+1]
}

func pow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}
