package config

import (
	"fmt"
	"math"

	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

// Dotted configuration keys read by the preflight validators.
const (
	KeyUseChefBackend = "use_chef_backend"

	KeySearchExternal    = "opensearch.external"
	KeySearchExternalURL = "opensearch.external_url"
	KeySearchEnable      = "opensearch.enable"
	KeySearchHeapSize    = "opensearch.heap_size"
	KeySearchVIP         = "opensearch.vip"
	KeySearchPort        = "opensearch.port"

	KeyErchefSearchProvider  = "opscode_erchef.search_provider"
	KeyErchefSearchQueueMode = "opscode_erchef.search_queue_mode"
	KeyErchefAuthUsername    = "opscode_erchef.search_auth_username"
	KeyErchefAuthPassword    = "opscode_erchef.search_auth_password"
	KeyErchefReindexSleepMin = "opscode_erchef.reindex_sleep_min_ms"
	KeyErchefReindexSleepMax = "opscode_erchef.reindex_sleep_max_ms"
)

// Values used when neither layer sets the internal search index address.
const (
	DefaultSearchVIP  = "127.0.0.1"
	DefaultSearchPort = 9200
)

// Snapshot is the typed, immutable view of both configuration layers
// for a single preflight run.
type Snapshot struct {
	UseChefBackend bool        `yaml:"use_chef_backend"`
	Search         SearchIndex `yaml:"opensearch"`
	Erchef         Erchef      `yaml:"opscode_erchef"`

	// UserConfigPath is where operators fix reported problems.
	UserConfigPath string `yaml:"-"`
}

// SearchIndex holds the search-index backend settings.
type SearchIndex struct {
	External    bool   `yaml:"external"`
	ExternalURL string `yaml:"external_url"`
	Enable      bool   `yaml:"enable"`
	HeapSizeMB  *int   `yaml:"heap_size"`
	VIP         string `yaml:"vip"`
	Port        int    `yaml:"port"`
}

// Erchef holds the sibling API service settings that concern search.
type Erchef struct {
	// SearchProvider is nil when no provider was configured.
	SearchProvider    *string     `yaml:"search_provider"`
	SearchQueueMode   string      `yaml:"search_queue_mode"`
	Credentials       Credentials `yaml:"credentials"`
	ReindexSleepMinMS *int        `yaml:"reindex_sleep_min_ms"`
	ReindexSleepMaxMS *int        `yaml:"reindex_sleep_max_ms"`
}

// Credentials is the search-index basic auth pair together with the layer it came from.
type Credentials struct {
	Username *string `yaml:"username"`
	Password *string `yaml:"password"`
	Layer    Layer   `yaml:"layer"`
}

// Complete reports whether both username and password are present.
func (c Credentials) Complete() bool {
	return c.Username != nil && c.Password != nil
}

// InternalSearchEnabled reports whether the bundled search index is turned on.
// The chef-backend topology never runs it.
func (s *Snapshot) InternalSearchEnabled() bool {
	if s.UseChefBackend {
		return false
	}
	return s.Search.Enable
}

// Redacted returns a copy with the password masked, for display.
func (s *Snapshot) Redacted() Snapshot {
	out := *s
	if out.Erchef.Credentials.Password != nil {
		masked := "********"
		out.Erchef.Credentials.Password = &masked
	}
	return out
}

// NewSnapshot resolves every key once. Scalars resolve user -> default.
// Credentials resolve as a pair: the user pair when both halves are set there,
// otherwise the default-layer pair, which may be incomplete.
func NewSnapshot(src Source, userConfigPath string) (*Snapshot, error) {
	r := resolver{src: src}
	s := &Snapshot{UserConfigPath: userConfigPath}

	s.UseChefBackend = r.boolean(KeyUseChefBackend)

	s.Search.External = r.boolean(KeySearchExternal)
	s.Search.ExternalURL = r.str(KeySearchExternalURL)
	s.Search.Enable = r.boolean(KeySearchEnable)
	s.Search.HeapSizeMB = r.optInt(KeySearchHeapSize)
	s.Search.VIP = r.str(KeySearchVIP)
	if s.Search.VIP == "" {
		s.Search.VIP = DefaultSearchVIP
	}
	s.Search.Port = r.port(KeySearchPort, DefaultSearchPort)

	s.Erchef.SearchProvider = r.optStr(KeyErchefSearchProvider)
	s.Erchef.SearchQueueMode = r.str(KeyErchefSearchQueueMode)
	s.Erchef.ReindexSleepMinMS = r.optInt(KeyErchefReindexSleepMin)
	s.Erchef.ReindexSleepMaxMS = r.optInt(KeyErchefReindexSleepMax)
	s.Erchef.Credentials = r.credentials()

	if r.err != nil {
		return nil, r.err
	}
	return s, nil
}

// LoadSnapshot loads both layers from disk and resolves them.
func LoadSnapshot(userPath, defaultsPath string) (*Snapshot, error) {
	layers, err := LoadLayers(userPath, defaultsPath)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(layers, layers.UserPath)
}

// resolver records the first type error so NewSnapshot can read linearly.
type resolver struct {
	src Source
	err error
}

func (r *resolver) lookup(key string) (any, Layer, bool) {
	if v, ok := r.src.Get(key, LayerUser); ok {
		return v, LayerUser, true
	}
	if v, ok := r.src.Get(key, LayerDefault); ok {
		return v, LayerDefault, true
	}
	return nil, "", false
}

func (r *resolver) fail(key string, layer Layer, want string, v any) {
	if r.err != nil {
		return
	}
	r.err = perrors.ConfigError(
		fmt.Sprintf("%s must be %s, got %T (%v) in the %s layer", attrName(key), want, v, v, layer), nil).
		WithDetail("key", key).
		WithDetail("layer", string(layer))
}

func (r *resolver) boolean(key string) bool {
	v, layer, ok := r.lookup(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(key, layer, "a boolean", v)
	}
	return b
}

func (r *resolver) optStr(key string) *string {
	v, layer, ok := r.lookup(key)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, layer, "a string", v)
		return nil
	}
	return &s
}

func (r *resolver) str(key string) string {
	if s := r.optStr(key); s != nil {
		return *s
	}
	return ""
}

func (r *resolver) optInt(key string) *int {
	v, layer, ok := r.lookup(key)
	if !ok {
		return nil
	}
	n, ok := toInt(v)
	if !ok {
		r.fail(key, layer, "an integer", v)
		return nil
	}
	return &n
}

// port resolves a TCP port, using fallback when neither layer sets key.
func (r *resolver) port(key string, fallback int) int {
	v, layer, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	n, ok := toInt(v)
	if !ok || n < 1 || n > 65535 {
		r.fail(key, layer, "a port between 1 and 65535", v)
		return fallback
	}
	return n
}

func (r *resolver) credentials() Credentials {
	pair := func(layer Layer) Credentials {
		c := Credentials{Layer: layer}
		if v, ok := r.src.Get(KeyErchefAuthUsername, layer); ok {
			c.Username = r.credential(KeyErchefAuthUsername, layer, v)
		}
		if v, ok := r.src.Get(KeyErchefAuthPassword, layer); ok {
			c.Password = r.credential(KeyErchefAuthPassword, layer, v)
		}
		return c
	}

	if user := pair(LayerUser); user.Complete() {
		return user
	}
	return pair(LayerDefault)
}

// credential accepts strings and scalars YAML may have typed, such as a numeric password.
func (r *resolver) credential(key string, layer Layer, v any) *string {
	switch t := v.(type) {
	case string:
		return &t
	case int, int64, uint64, float64, bool:
		s := fmt.Sprint(t)
		return &s
	default:
		r.fail(key, layer, "a string", v)
		return nil
	}
}

// toInt converts the numeric types YAML decodes into an int, rejecting
// fractional values and anything that does not fit.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if int64(int(n)) != n {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		// float64(math.MaxInt) rounds up to 2^63, so the upper bound is exclusive
		if n != math.Trunc(n) || n < math.MinInt || n >= math.MaxInt {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}
