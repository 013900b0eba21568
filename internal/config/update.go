package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/renameio/v2"
	"go.yaml.in/yaml/v3"
)

// defaultConfigYAML is the annotated file written by `dob config create`.
// A package test keeps it aligned with the key registry.
const defaultConfigYAML = `# dob configuration.
#
# Edit by hand or with ` + "`dob config set KEY VALUE`" + `; environment
# variables (DOB_STORE_PATH, DOB_LOG_LEVEL, ...) override at runtime.

# Config file layout version; ` + "`dob config update`" + ` bumps it.
config_version: "1.0"

store:
  # Path to the SQLite fact store. Empty means <data-dir>/dob.sqlite.
  path: ""

log:
  # Log level: trace, debug, info, warn, error.
  level: warn
  # Log file path. Empty means <data-dir>/dob.log.
  file: ""
  # Also echo log entries to stderr.
  console: false

term:
  # Colorize output: auto, always, never.
  use_color: auto
  # Page long output through $PAGER.
  paging: false
  # Maximum table rows printed before truncating; 0 disables.
  row_limit: 1001

time:
  # Clock time (HH:MM) where "today" begins.
  day_start: "00:00"

fact:
  # Factoid description separators, a JSON array string.
  separators: '[":", ","]'

export:
  # Default export path; the format extension is appended.
  path: ""
`

// Update injects any keys missing from the config file and bumps
// config_version when the file's version is behind. It returns the names of
// injected keys and whether the version changed.
func Update() (added []string, bumped bool, err error) {
	path, err := FilePath()
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, fmt.Errorf("no config file at %s; run `dob config create` first", path)
		}
		return nil, false, fmt.Errorf("reading config file: %w", err)
	}

	var root map[string]interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, false, fmt.Errorf("parsing config file: %w", err)
	}
	if root == nil {
		root = map[string]interface{}{}
	}

	for _, k := range registry {
		if k.Name == "config_version" {
			continue
		}
		if hasNested(root, strings.Split(k.Name, ".")) {
			continue
		}
		var v interface{}
		switch k.Kind {
		case KindBool:
			v = k.Default == "true"
		case KindInt:
			v = mustAtoi(k.Default)
		default:
			v = k.Default
		}
		setNested(root, strings.Split(k.Name, "."), v)
		added = append(added, k.Name)
	}

	bumped, err = bumpVersion(root)
	if err != nil {
		return nil, false, err
	}
	if len(added) == 0 && !bumped {
		return nil, false, nil
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, false, fmt.Errorf("rendering config file: %w", err)
	}
	if err := renameio.WriteFile(path, out, 0o644); err != nil {
		return nil, false, fmt.Errorf("writing config file: %w", err)
	}
	return added, bumped, nil
}

// bumpVersion sets config_version to CurrentVersion when the stored version
// parses as an older semver (or is absent entirely).
func bumpVersion(root map[string]interface{}) (bool, error) {
	current, err := semver.NewVersion(CurrentVersion)
	if err != nil {
		return false, fmt.Errorf("parsing current config version: %w", err)
	}

	raw, ok := root["config_version"].(string)
	if !ok || raw == "" {
		root["config_version"] = CurrentVersion
		return true, nil
	}
	stored, err := semver.NewVersion(raw)
	if err != nil {
		return false, fmt.Errorf("config_version %q is not a version: %w", raw, err)
	}
	if stored.LessThan(current) {
		root["config_version"] = CurrentVersion
		return true, nil
	}
	return false, nil
}

func hasNested(m map[string]interface{}, path []string) bool {
	v, ok := m[path[0]]
	if !ok {
		return false
	}
	if len(path) == 1 {
		return true
	}
	child, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	return hasNested(child, path[1:])
}
