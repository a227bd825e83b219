// Package config carries the token-budget tunables of §6.5: the one
// configuration surface core logic actually consults, loaded once at
// startup and threaded through constructors — never a package global.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Tunables holds every budget named in §6.5.
type Tunables struct {
	ChunkingThreshold      int   `toml:"chunking_threshold"`        // above this, a body is chunked
	MaxChunk               int   `toml:"max_chunk"`                 // target chunk upper bound
	GroupThreshold         int   `toml:"group_threshold"`           // batch size for inference calls
	FragmentThreshold      int   `toml:"fragment_threshold"`        // above this, fragment text is trimmed
	FragmentTrimmed        int   `toml:"fragment_trimmed"`          // trimmed fragment text size
	SpreadsheetThreshold   int   `toml:"spreadsheet_threshold"`     // spreadsheet chunk split threshold
	SpreadsheetChunkTrimmed int  `toml:"spreadsheet_chunk_trimmed"` // per-sheet trim size
	BatchSize              int   `toml:"batch_size"`                // concurrent query read batch
	ImageMinSidePx         int   `toml:"image_min_side_px"`         // below this, an image is discarded
	ImageMaxSidePx         int   `toml:"image_max_side_px"`         // above this, an image is downscaled
	RetryDelaySecs         []int `toml:"retry_delay_secs"`          // inference retry schedule
}

// DefaultTunables returns §6.5's documented defaults.
func DefaultTunables() Tunables {
	return Tunables{
		ChunkingThreshold:       20_000,
		MaxChunk:                8_000,
		GroupThreshold:          80_000,
		FragmentThreshold:       800_000,
		FragmentTrimmed:         600_000,
		SpreadsheetThreshold:    40_000,
		SpreadsheetChunkTrimmed: 20_000,
		BatchSize:               20,
		ImageMinSidePx:          64,
		ImageMaxSidePx:          2048,
		RetryDelaySecs:          []int{2, 30, 60},
	}
}

// LoadTunables loads Tunables starting from DefaultTunables, optionally
// overridden by a TOML file under the top-level "tunables" table.
func LoadTunables(path string) (Tunables, error) {
	t := DefaultTunables()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Tunables{}, fmt.Errorf("failed to read tunables file %s: %w", path, err)
	}

	var wrapper struct {
		Tunables Tunables `toml:"tunables"`
	}
	wrapper.Tunables = t
	if err := toml.Unmarshal(data, &wrapper); err != nil {
		return Tunables{}, fmt.Errorf("failed to parse tunables file %s: %w", path, err)
	}
	return wrapper.Tunables, nil
}
