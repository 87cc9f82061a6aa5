// Package settings loads the hot-reloadable rotation settings: how long to
// sleep before a forced rotation and how large the target may grow.
//
// The settings file is a JSON object (comments allowed) holding
// "sleep_counter" in seconds and exactly one size key:
//
//	{"sleep_counter": 30, "kb": 512}
//
// Size keys are "mb", "kb" and "bytes", lowercase only. Units are decimal:
// 1kb = 1000 bytes, 1mb = 1,000,000 bytes.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/muhammadmuzzammil1998/jsonc"
)

var (
	ErrNotFound = errors.New("settings file not found")
	ErrParse    = errors.New("settings parse error")
)

const (
	KeySleep = "sleep_counter"

	// EnvFileSize names the variable holding the default size, e.g. "1mb".
	EnvFileSize = "FILE_SIZE"

	DefaultSleep = time.Hour

	// longest sleep_counter a time.Duration can hold
	maxSleepSeconds = uint64(math.MaxInt64 / int64(time.Second))
)

// DefaultSize applies when neither the settings file nor FILE_SIZE give one.
var DefaultSize = Size{Unit: Megabytes, Magnitude: 1}

// Settings is replaced wholesale on every reload.
type Settings struct {
	SleepInterval time.Duration
	Size          Size
}

// Threshold is the rotation size in bytes.
func (s Settings) Threshold() int64 { return s.Size.Bytes() }

func (s Settings) String() string {
	return fmt.Sprintf("sleep=%s size=%s (%d bytes)", s.SleepInterval, s.Size, s.Threshold())
}

// Load reads and parses the settings file at path.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a settings document. Missing fields get defaults; unknown
// keys, wrong-case keys and more than one size key are errors.
func Parse(data []byte) (Settings, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var (
		out     Settings
		haveSz  bool
		sleepOK bool
	)

	for key, val := range raw {
		if key == KeySleep {
			var secs uint64
			if err := json.Unmarshal(val, &secs); err != nil {
				return Settings{}, fmt.Errorf("%w: %s: %v", ErrParse, KeySleep, err)
			}
			if secs == 0 {
				return Settings{}, fmt.Errorf("%w: %s must be positive", ErrParse, KeySleep)
			}
			if secs > maxSleepSeconds {
				return Settings{}, fmt.Errorf("%w: %s %d too large", ErrParse, KeySleep, secs)
			}
			out.SleepInterval = time.Duration(secs) * time.Second
			sleepOK = true
			continue
		}

		unit, ok := unitForKey(key)
		if !ok {
			return Settings{}, fmt.Errorf("%w: unknown field %q", ErrParse, key)
		}
		if haveSz {
			return Settings{}, fmt.Errorf("%w: more than one size field", ErrParse)
		}

		var n uint64
		if err := json.Unmarshal(val, &n); err != nil {
			return Settings{}, fmt.Errorf("%w: %s: %v", ErrParse, key, err)
		}
		if err := checkMagnitude(unit, n); err != nil {
			return Settings{}, err
		}
		out.Size = Size{Unit: unit, Magnitude: n}
		haveSz = true
	}

	if !sleepOK {
		out.SleepInterval = DefaultSleep
	}
	if !haveSz {
		sz, err := defaultSize()
		if err != nil {
			return Settings{}, err
		}
		out.Size = sz
	}

	return out, nil
}

func defaultSize() (Size, error) {
	v, ok := os.LookupEnv(EnvFileSize)
	if !ok || v == "" {
		return DefaultSize, nil
	}
	sz, err := ParseSize(v)
	if err != nil {
		return Size{}, fmt.Errorf("%s: %w", EnvFileSize, err)
	}
	return sz, nil
}
