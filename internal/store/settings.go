package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ayusman/signbridge/internal/suggest"
)

// Settings keys.
const (
	KeyMirror           = "mirror"
	KeyDarkOverlay      = "dark_overlay"
	KeyAutoInput        = "auto_input"
	KeySuggestionMode   = "suggestion_mode"
	KeyStabilitySeconds = "stability_seconds"
)

// Bounds on the stability threshold offered by the shell.
const (
	MinStabilitySeconds = 1.0
	MaxStabilitySeconds = 5.0
)

// Settings is the persisted per-session configuration.
type Settings struct {
	Mirror           bool
	DarkOverlay      bool
	AutoInput        bool
	SuggestionMode   suggest.Mode
	StabilitySeconds float64
}

// DefaultSettings returns the settings used on first run.
func DefaultSettings() Settings {
	return Settings{
		Mirror:           true,
		DarkOverlay:      true,
		AutoInput:        true,
		SuggestionMode:   suggest.ModeInbuilt,
		StabilitySeconds: 1.0,
	}
}

// SettingsRepository reads and writes Settings.
type SettingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db, logger: s.logger}
}

// Load returns the stored settings. Missing keys take their default value;
// values that fail to parse are replaced with the default and logged.
func (r *SettingsRepository) Load() (Settings, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	raw := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		raw[key] = value
	}
	if err := rows.Err(); err != nil {
		return Settings{}, err
	}

	out := DefaultSettings()
	r.parseBool(raw, KeyMirror, &out.Mirror)
	r.parseBool(raw, KeyDarkOverlay, &out.DarkOverlay)
	r.parseBool(raw, KeyAutoInput, &out.AutoInput)

	if v, ok := raw[KeySuggestionMode]; ok {
		mode, err := suggest.ParseMode(v)
		if err != nil {
			r.corrupt(KeySuggestionMode, v, err)
		} else {
			out.SuggestionMode = mode
		}
	}

	if v, ok := raw[KeyStabilitySeconds]; ok {
		secs, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			r.corrupt(KeyStabilitySeconds, v, err)
		case secs <= 0:
			r.corrupt(KeyStabilitySeconds, v, fmt.Errorf("must be positive"))
		default:
			out.StabilitySeconds = secs
		}
	}

	return out, nil
}

// Save writes every setting in a single transaction.
func (r *SettingsRepository) Save(st Settings) error {
	if st.StabilitySeconds <= 0 {
		return fmt.Errorf("stability seconds must be positive, got %v", st.StabilitySeconds)
	}

	values := map[string]string{
		KeyMirror:           strconv.FormatBool(st.Mirror),
		KeyDarkOverlay:      strconv.FormatBool(st.DarkOverlay),
		KeyAutoInput:        strconv.FormatBool(st.AutoInput),
		KeySuggestionMode:   st.SuggestionMode.String(),
		KeyStabilitySeconds: strconv.FormatFloat(st.StabilitySeconds, 'f', -1, 64),
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for k, v := range values {
		if _, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			k, v,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SettingsRepository) parseBool(raw map[string]string, key string, dst *bool) {
	v, ok := raw[key]
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.corrupt(key, v, err)
		return
	}
	*dst = b
}

func (r *SettingsRepository) corrupt(key, value string, err error) {
	r.logger.Warn("ignoring corrupt setting",
		zap.String("key", key),
		zap.String("value", value),
		zap.Error(err),
	)
}

// ClampStability bounds secs to the range the shell offers.
func ClampStability(secs float64) float64 {
	if secs < MinStabilitySeconds {
		return MinStabilitySeconds
	}
	if secs > MaxStabilitySeconds {
		return MaxStabilitySeconds
	}
	return secs
}
