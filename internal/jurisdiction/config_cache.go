package jurisdiction

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/*.yml
var defaultsFS embed.FS

// Defaults returns the jurisdiction configurations shipped with the binary.
func Defaults() fs.FS {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		panic(fmt.Sprintf("embedded defaults are missing: %v", err))
	}
	return sub
}

// Dir returns the configurations stored in dir, or the embedded defaults when
// dir is empty.
func Dir(dir string) fs.FS {
	if dir == "" {
		return Defaults()
	}
	return os.DirFS(dir)
}

type ConfigCache struct {
	fsys  fs.FS
	cache map[string]*Config
	mu    sync.RWMutex
}

func NewConfigCache(fsys fs.FS) *ConfigCache {
	return &ConfigCache{
		fsys:  fsys,
		cache: make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	files, err := fs.Glob(cc.fsys, "*.yml")
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".yml")

		config, err := cc.LoadConfig(name)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Jurisdiction loaded", "jurisdiction", name, "enabled", config.Settings.Enabled, "timezone", config.Timezone)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(name string) (*Config, error) {
	configFile := name + ".yml"
	config, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	config.Name = name

	if err := cc.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[config.Name] = config

	return config, nil
}

func (cc *ConfigCache) GetConfig(name string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	config, ok := cc.cache[name]
	if !ok {
		return nil, fmt.Errorf("jurisdiction config with name '%s' not found", name)
	}
	return config, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

// Names returns the loaded jurisdiction names in sorted order.
func (cc *ConfigCache) Names() []string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	names := make([]string, 0, len(cc.cache))
	for name := range cc.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := fs.ReadFile(cc.fsys, configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30
	}
	if config.Settings.EventWindow == 0 {
		config.Settings.EventWindow = 3
	}
	if config.Settings.CreatedAfter == "" {
		config.Settings.CreatedAfter = "2015-01-01"
	}
	if config.Status.LocationMarker == "" {
		config.Status.LocationMarker = "room"
	}

	return &config, nil
}

func (cc *ConfigCache) validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	requiredFields := map[string]string{
		"jurisdiction name": config.Name,
		"organization":      config.Organization,
		"timezone":          config.Timezone,
		"API URL":           config.APIURL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	loc, err := time.LoadLocation(config.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", config.Timezone, err)
	}
	config.location = loc

	urlFields := map[string]string{
		"API URL":       config.APIURL,
		"web URL":       config.WebURL,
		"events page":   config.EventsPage,
		"calendar feed": config.CalendarFeed,
	}

	for fieldName, fieldValue := range urlFields {
		if fieldValue == "" {
			continue
		}
		u, err := url.Parse(fieldValue)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL: %s", fieldName, fieldValue)
		}
	}

	nonNegativeFields := map[string]int{
		"timeout":      config.Settings.Timeout,
		"event window": config.Settings.EventWindow,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if _, err := config.Settings.GetCreatedAfter(loc); err != nil {
		return err
	}

	if config.Settings.ScrapeBills && len(config.Bills.Sessions) == 0 {
		return fmt.Errorf("bills require at least one session")
	}

	validBillCodes := map[string]bool{
		"":           true,
		"bill":       true,
		"resolution": true,
		"petition":   true,
		"none":       true,
	}

	for label, code := range config.Bills.Types {
		if !validBillCodes[code] {
			return fmt.Errorf("invalid bill type code for %q: %s", label, code)
		}
	}

	if config.Settings.ScrapeEvents && config.EventsPage == "" {
		return fmt.Errorf("events require an events page")
	}

	return nil
}
