// Package settings persists operator preferences through the key-value
// collaborator. Corrupt or missing records degrade to defaults.
package settings

import (
	"encoding/json"
	"fmt"

	"github.com/proposalstudio/proposalstudio/internal/kvstore"
	"github.com/proposalstudio/proposalstudio/internal/prompt"
)

// storageKey is the persistence record holding the serialized settings.
const storageKey = "settings"

// Export format identifiers.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Settings are the persisted generation preferences.
type Settings struct {
	ToneInstitutional bool         `json:"tone_institutional"`
	SuppressMarketing bool         `json:"suppress_marketing"`
	DefaultDepth      prompt.Depth `json:"default_depth"`
	ExportFormat      string       `json:"export_format"`
}

// Default returns the out-of-the-box settings.
func Default() Settings {
	return Settings{
		ToneInstitutional: true,
		SuppressMarketing: true,
		DefaultDepth:      prompt.Depth15,
		ExportFormat:      FormatHTML,
	}
}

// Options converts the settings to per-invocation generation options.
func (s Settings) Options() prompt.Options {
	return prompt.Options{
		Depth:             s.DefaultDepth,
		ToneInstitutional: s.ToneInstitutional,
		SuppressMarketing: s.SuppressMarketing,
	}
}

// Load reads settings from the store. Missing or malformed records yield
// Default() without error; defaults also backfill unknown field values.
func Load(kv kvstore.KV) Settings {
	s := Default()
	data, found, err := kv.Get(storageKey)
	if err != nil || !found {
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Default()
	}
	if s.DefaultDepth != prompt.Depth15 && s.DefaultDepth != prompt.Depth30 {
		s.DefaultDepth = prompt.Depth15
	}
	if s.ExportFormat != FormatHTML && s.ExportFormat != FormatMarkdown {
		s.ExportFormat = FormatHTML
	}
	return s
}

// Save writes the settings to the store.
func Save(kv kvstore.KV, s Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("serializing settings: %w", err)
	}
	if err := kv.Set(storageKey, data); err != nil {
		return fmt.Errorf("persisting settings: %w", err)
	}
	return nil
}
