package viewer

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/justyntemme/tome-t/internal/logging"
)

// OptionsKey is the storage key holding the serialized ViewerOptions
const OptionsKey = "viewerOptions"

// Font size limits accepted by the options panel
const (
	DefaultFontSize = 16
	MinFontSize     = 8
	MaxFontSize     = 48
)

// ViewerOptions are the last-used reading preferences, shared by every viewer.
// FontSize only affects reflowable content; Spread only paginated content.
type ViewerOptions struct {
	Direction Direction  `json:"direction"`
	Spread    SpreadMode `json:"spread"`
	FontSize  int        `json:"fontSize"`
}

// DefaultOptions returns the preferences used when nothing valid is stored
func DefaultOptions() ViewerOptions {
	return ViewerOptions{
		Direction: LTR,
		Spread:    SpreadNone,
		FontSize:  DefaultFontSize,
	}
}

// ClampFontSize limits n to the range the options panel accepts
func ClampFontSize(n int) int {
	return min(max(n, MinFontSize), MaxFontSize)
}

// OptionsBackend is the key/value persistence behind an OptionsStore
type OptionsBackend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// OptionsStore loads and saves ViewerOptions through an injected backend.
// Viewers read it once when they mount; a change made in one viewer is not
// pushed to another that is already open.
type OptionsStore struct {
	backend OptionsBackend
	logger  *slog.Logger
}

// NewOptionsStore creates a store over backend
func NewOptionsStore(backend OptionsBackend, logger *slog.Logger) *OptionsStore {
	return &OptionsStore{
		backend: backend,
		logger:  logging.OrDiscard(logger),
	}
}

// Load returns the stored options. Missing data silently yields defaults;
// unreadable or corrupt data is logged and also yields defaults.
func (s *OptionsStore) Load() ViewerOptions {
	raw, ok, err := s.backend.Get(OptionsKey)
	if err != nil {
		s.logger.Warn("failed to read viewer options", "err", err)
		return DefaultOptions()
	}
	if !ok {
		return DefaultOptions()
	}

	opts, err := DecodeOptions(raw)
	if err != nil {
		s.logger.Warn("failed to parse viewer options", "err", err)
		return DefaultOptions()
	}
	return opts
}

// Save persists opts
func (s *OptionsStore) Save(opts ViewerOptions) error {
	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}
	if err := s.backend.Set(OptionsKey, string(data)); err != nil {
		return fmt.Errorf("save viewer options: %w", err)
	}
	return nil
}

// DecodeOptions parses serialized options, rejecting unknown enum values
func DecodeOptions(raw string) (ViewerOptions, error) {
	opts := DefaultOptions()
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return DefaultOptions(), err
	}
	if err := opts.Validate(); err != nil {
		return DefaultOptions(), err
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	return opts, nil
}

// Validate rejects unknown direction and spread values
func (o ViewerOptions) Validate() error {
	if !o.Direction.valid() {
		return fmt.Errorf("unknown direction %q", o.Direction)
	}
	if !o.Spread.valid() {
		return fmt.Errorf("unknown spread mode %q", o.Spread)
	}
	return nil
}
