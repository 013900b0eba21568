// Package config reads and writes dob's user configuration: a YAML file in
// the user config dir, with every key overridable through DOB_* environment
// variables (store.path -> DOB_STORE_PATH).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/spf13/viper"

	"github.com/ReblochonMasque/dob/internal/appdirs"
)

const (
	fileName = "dob"
	fileType = "yaml"
)

// Dir returns the directory holding the config file.
func Dir() (string, error) {
	return appdirs.ConfigDir()
}

// FilePath returns the full path to the config file (<config-dir>/dob.yaml).
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName+"."+fileType), nil
}

// Exists reports whether the config file is present on disk.
func Exists() (bool, error) {
	path, err := FilePath()
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Load initializes Viper to read from the config file and environment.
// A missing file is fine; defaults and DOB_* variables still apply.
func Load() {
	path, err := FilePath()
	if err == nil {
		viper.SetConfigFile(path)
	}
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix("DOB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for _, k := range registry {
		switch k.Kind {
		case KindBool:
			viper.SetDefault(k.Name, k.Default == "true")
		case KindInt:
			viper.SetDefault(k.Name, mustAtoi(k.Default))
		default:
			viper.SetDefault(k.Name, k.Default)
		}
	}

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

func mustAtoi(s string) int {
	var n int
	_, _ = fmt.Sscanf(s, "%d", &n)
	return n
}

// Get returns a config value by key, as a string.
func Get(key string) (string, error) {
	if _, ok := lookupKey(key); !ok {
		return "", errUnknownKey(key)
	}
	return viper.GetString(key), nil
}

// Set validates the key, stores the value, and saves the config file.
func Set(key, value string) error {
	k, ok := lookupKey(key)
	if !ok {
		return errUnknownKey(key)
	}

	switch k.Kind {
	case KindBool:
		if value != "true" && value != "false" {
			return fmt.Errorf("the %q config value %q is not a boolean (expected true or false)", key, value)
		}
		viper.Set(key, value == "true")
	case KindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("the %q config value %q is not a number", key, value)
		}
		viper.Set(key, n)
	default:
		viper.Set(key, value)
	}

	path, err := FilePath()
	if err != nil {
		return err
	}
	if err := appdirs.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Dump returns the effective configuration as a nested map suitable for
// YAML or JSON rendering.
func Dump() map[string]interface{} {
	root := map[string]interface{}{}
	for _, k := range registry {
		var v interface{}
		switch k.Kind {
		case KindBool:
			v = viper.GetBool(k.Name)
		case KindInt:
			v = viper.GetInt(k.Name)
		default:
			v = viper.GetString(k.Name)
		}
		setNested(root, strings.Split(k.Name, "."), v)
	}
	return root
}

func setNested(m map[string]interface{}, path []string, v interface{}) {
	if len(path) == 1 {
		m[path[0]] = v
		return
	}
	child, ok := m[path[0]].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
		m[path[0]] = child
	}
	setNested(child, path[1:], v)
}

// Create writes the annotated default config file. It refuses to overwrite
// an existing file unless force is set. The write is atomic.
func Create(force bool) (string, error) {
	path, err := FilePath()
	if err != nil {
		return "", err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config file exists at %s (use --force to overwrite)", path)
		}
	}
	if err := appdirs.EnsureDir(filepath.Dir(path)); err != nil {
		return "", err
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return "", fmt.Errorf("creating pending config file: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write([]byte(defaultConfigYAML)); err != nil {
		return "", fmt.Errorf("writing config defaults: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("replacing config file: %w", err)
	}
	return path, nil
}

// StorePath returns the SQLite store location: store.path when set,
// otherwise <data-dir>/dob.sqlite.
func StorePath() (string, error) {
	if p := viper.GetString("store.path"); p != "" {
		return p, nil
	}
	data, err := appdirs.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(data, "dob.sqlite"), nil
}

// LogFile returns the log file location: log.file when set, otherwise
// <data-dir>/dob.log.
func LogFile() (string, error) {
	if p := viper.GetString("log.file"); p != "" {
		return p, nil
	}
	data, err := appdirs.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(data, "dob.log"), nil
}

// LogLevel returns the configured log level name.
func LogLevel() string { return viper.GetString("log.level") }

// LogConsole reports whether log entries mirror to stderr.
func LogConsole() bool { return viper.GetBool("log.console") }

// UseColor returns the color mode: auto, always, or never.
func UseColor() string { return viper.GetString("term.use_color") }

// Paging reports whether long output should page.
func Paging() bool { return viper.GetBool("term.paging") }

// RowLimit returns the maximum table rows before truncation; 0 disables.
func RowLimit() int { return viper.GetInt("term.row_limit") }

// ExportPath returns the default export path prefix ("" when unset).
func ExportPath() string { return viper.GetString("export.path") }

// DayStart parses time.day_start and returns the hour and minute where a
// calendar day begins.
func DayStart() (hour, minute int, err error) {
	raw := viper.GetString("time.day_start")
	if _, err := fmt.Sscanf(raw, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("the 'time.day_start' config value %q is not HH:MM: %w", raw, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("the 'time.day_start' config value %q is out of range", raw)
	}
	return hour, minute, nil
}

// Separators parses fact.separators, the JSON array of strings that split a
// factoid's metadata from its description.
func Separators() ([]string, error) {
	raw := viper.GetString("fact.separators")
	if raw == "" {
		return nil, nil
	}
	var seps []string
	if err := json.Unmarshal([]byte(raw), &seps); err != nil {
		return nil, fmt.Errorf("the 'fact.separators' config value is not valid JSON: %w", err)
	}
	return seps, nil
}
