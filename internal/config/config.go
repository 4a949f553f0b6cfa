// Package config loads the two-layer server configuration and the tool settings.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/serverpreflight/configs"
	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

// Layer selects one of the two configuration layers.
type Layer string

const (
	// LayerUser holds operator overrides from the server configuration file.
	LayerUser Layer = "user"
	// LayerDefault holds the values shipped with the product.
	LayerDefault Layer = "default"
)

// DefaultUserConfigPath is where operators keep their overrides.
const DefaultUserConfigPath = "/etc/opscode/chef-server.yaml"

// Source is a read-only, two-layer configuration lookup keyed by dotted paths.
type Source interface {
	Get(key string, layer Layer) (any, bool)
}

// Layers is the in-memory Source built from the user and default YAML documents.
type Layers struct {
	User    map[string]any
	Default map[string]any

	// UserPath is the file the user layer was read from. Validator messages
	// point operators at it.
	UserPath string
}

// Get returns the value for key in the given layer. A YAML null counts as absent.
func (l *Layers) Get(key string, layer Layer) (any, bool) {
	var m map[string]any
	switch layer {
	case LayerUser:
		m = l.User
	case LayerDefault:
		m = l.Default
	}
	v, ok := m[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Keys returns the sorted dotted keys present in a layer.
func (l *Layers) Keys(layer Layer) []string {
	m := l.User
	if layer == LayerDefault {
		m = l.Default
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadLayers reads the user overrides from userPath and the shipped defaults
// from defaultsPath. An empty defaultsPath uses the embedded defaults.
// A missing user file is an empty layer; a missing defaults file is an error.
func LoadLayers(userPath, defaultsPath string) (*Layers, error) {
	if userPath == "" {
		userPath = DefaultUserConfigPath
	}

	var defaultsData []byte
	if defaultsPath == "" {
		defaultsData = []byte(configs.ShippedDefaults)
		defaultsPath = "<embedded defaults>"
	} else {
		data, err := os.ReadFile(defaultsPath)
		if err != nil {
			return nil, perrors.New(perrors.ErrCodeConfigNotFound,
				fmt.Sprintf("failed to read defaults file %s", defaultsPath), err)
		}
		defaultsData = data
	}

	defaults, err := parseLayer(defaultsData, defaultsPath)
	if err != nil {
		return nil, err
	}

	user := map[string]any{}
	data, err := os.ReadFile(userPath)
	switch {
	case err == nil:
		if user, err = parseLayer(data, userPath); err != nil {
			return nil, err
		}
	case os.IsNotExist(err):
		// No overrides is fine
	default:
		return nil, perrors.New(perrors.ErrCodeFilePermission,
			fmt.Sprintf("failed to read config file %s", userPath), err)
	}

	return &Layers{User: user, Default: defaults, UserPath: userPath}, nil
}

// parseLayer decodes a YAML document and flattens nested maps into dotted keys.
func parseLayer(data []byte, path string) (map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, perrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}
	flat := make(map[string]any)
	flatten("", doc, flat)
	return flat, nil
}

func flatten(prefix string, in map[string]any, out map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = v
	}
}

// attrName renders a dotted key the way operators write it in the server config,
// e.g. "opensearch.external_url" -> "opensearch['external_url']".
func attrName(key string) string {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return key
	}
	return fmt.Sprintf("%s['%s']", section, name)
}
