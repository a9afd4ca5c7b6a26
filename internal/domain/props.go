package domain

import (
	"encoding/json"
	"slices"
)

// Defaults for the ThemeProvider props.
const (
	DefaultStorageKey = "theme"
	DefaultAttribute  = "data-theme"
)

// DefaultThemes is the theme list used when none is configured.
var DefaultThemes = []string{ThemeLight, ThemeDark}

// Props mirrors the ThemeProvider component props as they appear in the
// integration config file. Unset fields take the documented defaults.
type Props struct {
	StorageKey                string            `yaml:"storageKey,omitempty" json:"storageKey,omitempty"`
	DefaultTheme              string            `yaml:"defaultTheme,omitempty" json:"defaultTheme,omitempty"`
	ForcedTheme               string            `yaml:"forcedTheme,omitempty" json:"forcedTheme,omitempty"`
	EnableSystem              *bool             `yaml:"enableSystem,omitempty" json:"enableSystem,omitempty"`
	EnableColorScheme         *bool             `yaml:"enableColorScheme,omitempty" json:"enableColorScheme,omitempty"`
	DisableTransitionOnChange bool              `yaml:"disableTransitionOnChange,omitempty" json:"disableTransitionOnChange,omitempty"`
	Themes                    []string          `yaml:"themes,omitempty" json:"themes,omitempty"`
	Attribute                 AttributeList     `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Value                     map[string]string `yaml:"value,omitempty" json:"value,omitempty"`
	Nonce                     string            `yaml:"nonce,omitempty" json:"nonce,omitempty"`
	ScriptProps               map[string]string `yaml:"scriptProps,omitempty" json:"scriptProps,omitempty"`
}

// Config applies defaults and returns the immutable theme configuration.
// When system detection is disabled and no default theme is given, the
// default theme is light.
func (p Props) Config() Config {
	enableSystem := boolOr(p.EnableSystem, true)
	cfg := Config{
		StorageKey:                p.StorageKey,
		DefaultTheme:              p.DefaultTheme,
		ForcedTheme:               p.ForcedTheme,
		EnableSystem:              enableSystem,
		EnableColorScheme:         boolOr(p.EnableColorScheme, true),
		DisableTransitionOnChange: p.DisableTransitionOnChange,
		Themes:                    slices.Clone(p.Themes),
		Attributes:                slices.Clone(p.Attribute),
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if cfg.DefaultTheme == "" {
		if enableSystem {
			cfg.DefaultTheme = ThemeSystem
		} else {
			cfg.DefaultTheme = ThemeLight
		}
	}
	if len(cfg.Themes) == 0 {
		cfg.Themes = slices.Clone(DefaultThemes)
	}
	if len(cfg.Attributes) == 0 {
		cfg.Attributes = []Attribute{DefaultAttribute}
	}
	if len(p.Value) > 0 {
		cfg.Value = make(map[string]string, len(p.Value))
		for k, v := range p.Value {
			cfg.Value[k] = v
		}
	}
	return cfg
}

// AttributeList is one or more target attributes. It decodes from either a
// single name or a list of names.
type AttributeList []Attribute

// UnmarshalJSON accepts "class" as well as ["class", "data-theme"].
func (l *AttributeList) UnmarshalJSON(b []byte) error {
	var one Attribute
	if err := json.Unmarshal(b, &one); err == nil {
		*l = single(one)
		return nil
	}
	var many []Attribute
	if err := json.Unmarshal(b, &many); err != nil {
		return ErrValidation("attribute must be a string or a list of strings")
	}
	*l = many
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence.
func (l *AttributeList) UnmarshalYAML(unmarshal func(any) error) error {
	var one Attribute
	if err := unmarshal(&one); err == nil {
		*l = single(one)
		return nil
	}
	var many []Attribute
	if err := unmarshal(&many); err != nil {
		return ErrValidation("attribute must be a string or a list of strings")
	}
	*l = many
	return nil
}

func single(a Attribute) AttributeList {
	if a == "" {
		return nil
	}
	return AttributeList{a}
}

// Bool returns a pointer to b, for building Props literals.
func Bool(b bool) *bool { return &b }

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Host build commands passed to the integration setup hook.
const (
	CommandDev     = "dev"
	CommandBuild   = "build"
	CommandPreview = "preview"
	CommandSync    = "sync"
)

// IntegrationOptions is the configuration surface exposed to the host build.
type IntegrationOptions struct {
	DevToolbar   *bool `yaml:"devToolbar,omitempty" json:"devToolbar,omitempty"`
	InjectScript bool  `yaml:"injectScript,omitempty" json:"injectScript,omitempty"`
	Props        Props `yaml:"props,omitempty" json:"props,omitempty"`
}

// DevToolbarEnabled reports the devToolbar flag, which defaults to true.
func (o IntegrationOptions) DevToolbarEnabled() bool { return boolOr(o.DevToolbar, true) }
