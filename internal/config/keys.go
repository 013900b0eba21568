package config

import (
	"fmt"
	"sort"
	"strings"
)

// Kind describes how a key's value is typed in the YAML file.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
)

// Key describes one recognized configuration setting.
type Key struct {
	Name    string // dotted viper path, e.g. "store.path"
	Kind    Kind
	Default string // rendered default; "" plus Dynamic means computed at runtime
	Dynamic string // human description of a runtime-computed default
	Help    string
}

// CurrentVersion is the config_version stamped by create and update.
const CurrentVersion = "1.0"

// registry lists every key dob recognizes, in file order.
var registry = []Key{
	{
		Name:    "config_version",
		Default: CurrentVersion,
		Help:    "Config file layout version; `dob config update` bumps it.",
	},
	{
		Name:    "store.path",
		Dynamic: "<data-dir>/dob.sqlite",
		Help:    "Path to the SQLite fact store.",
	},
	{
		Name:    "log.level",
		Default: "warn",
		Help:    "Log level: trace, debug, info, warn, error.",
	},
	{
		Name:    "log.file",
		Dynamic: "<data-dir>/dob.log",
		Help:    "Log file path.",
	},
	{
		Name:    "log.console",
		Kind:    KindBool,
		Default: "false",
		Help:    "Also echo log entries to stderr.",
	},
	{
		Name:    "term.use_color",
		Default: "auto",
		Help:    "Colorize output: auto, always, never.",
	},
	{
		Name:    "term.paging",
		Kind:    KindBool,
		Default: "false",
		Help:    "Page long output through $PAGER.",
	},
	{
		Name:    "term.row_limit",
		Kind:    KindInt,
		Default: "1001",
		Help:    "Maximum table rows printed before truncating; 0 disables.",
	},
	{
		Name:    "time.day_start",
		Default: "00:00",
		Help:    "Clock time (HH:MM) where \"today\" begins.",
	},
	{
		Name:    "fact.separators",
		Default: `[":", ","]`,
		Help:    "Factoid description separators, a JSON array string.",
	},
	{
		Name:    "export.path",
		Default: "",
		Help:    "Default export path; the format extension is appended.",
	},
}

// KnownKeys returns the sorted names of all recognized keys.
func KnownKeys() []string {
	names := make([]string, 0, len(registry))
	for _, k := range registry {
		names = append(names, k.Name)
	}
	sort.Strings(names)
	return names
}

// lookupKey returns the registry entry for name.
func lookupKey(name string) (Key, bool) {
	for _, k := range registry {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// errUnknownKey builds the error listing valid keys, shared by get and set.
func errUnknownKey(name string) error {
	return fmt.Errorf("unknown config key %q; valid keys: %s",
		name, strings.Join(KnownKeys(), ", "))
}
