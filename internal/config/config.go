package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "mapview.cfg.json"

// ErrNotFound is returned by Load when no configuration file exists. Defaults
// still apply.
var ErrNotFound = errors.New("config file not found")

// InputConfig locates the two CSV exports and the media directory.
type InputConfig struct {
	Media     string `json:"media" mapstructure:"media"`
	Events    string `json:"events" mapstructure:"events"`
	MediaRoot string `json:"mediaRoot" mapstructure:"mediaRoot"`
}

// BuildConfig holds settings used while normalizing input.
type BuildConfig struct {
	LogLevel     string      `json:"logLevel" mapstructure:"logLevel"`
	LogsDir      string      `json:"logsDir" mapstructure:"logsDir"`
	Timezone     string      `json:"timezone" mapstructure:"timezone"`
	PrimaryMatch string      `json:"primaryMatch" mapstructure:"primaryMatch"`
	Input        InputConfig `json:"input" mapstructure:"input"`
}

// Location resolves Timezone, falling back to UTC.
func (c BuildConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("error loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// OverlayConfig holds accuracy circle settings.
type OverlayConfig struct {
	Enabled       bool    `json:"enabled" mapstructure:"enabled"`
	FillOpacity   float64 `json:"fillOpacity" mapstructure:"fillOpacity"`
	StrokeOpacity float64 `json:"strokeOpacity" mapstructure:"strokeOpacity"`
	Weight        int     `json:"weight" mapstructure:"weight"`
	Segments      int     `json:"segments" mapstructure:"segments"`
}

// ClusterConfig holds marker clustering options passed to the map.
type ClusterConfig struct {
	MaxClusterRadius           int     `json:"maxClusterRadius" mapstructure:"maxClusterRadius"`
	DisableClusteringAtZoom    int     `json:"disableClusteringAtZoom" mapstructure:"disableClusteringAtZoom"`
	SpiderfyDistanceMultiplier float64 `json:"spiderfyDistanceMultiplier" mapstructure:"spiderfyDistanceMultiplier"`
}

// InteractionConfig holds viewer filter policy.
type InteractionConfig struct {
	UndatedInRange bool `json:"undatedInRange" mapstructure:"undatedInRange"`
}

// ServerConfig holds viewer server settings.
type ServerConfig struct {
	Address     string `json:"address" mapstructure:"address"`
	MediaPrefix string `json:"mediaPrefix" mapstructure:"mediaPrefix"`
}

// PostgresConfig holds the postgres sink connection string.
type PostgresConfig struct {
	DSN string `json:"dsn" mapstructure:"dsn"`
}

// StorageConfig selects and configures the output sink.
type StorageConfig struct {
	Type           string         `json:"type" mapstructure:"type"`
	OutputDir      string         `json:"outputDir" mapstructure:"outputDir"`
	OutputName     string         `json:"outputName" mapstructure:"outputName"`
	CompressOutput bool           `json:"compressOutput" mapstructure:"compressOutput"`
	Postgres       PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("timezone", "UTC")

	viper.SetDefault("input.media", "media_markers_import.csv")
	viper.SetDefault("input.events", "MasterMapData.csv")
	viper.SetDefault("input.mediaRoot", "Media")

	viper.SetDefault("event.primaryMatch", "ATT Location")

	viper.SetDefault("overlay.enabled", true)
	viper.SetDefault("overlay.fillOpacity", 0.15)
	viper.SetDefault("overlay.strokeOpacity", 0.35)
	viper.SetDefault("overlay.weight", 1)
	viper.SetDefault("overlay.segments", 48)

	viper.SetDefault("cluster.maxClusterRadius", 50)
	viper.SetDefault("cluster.disableClusteringAtZoom", 18)
	viper.SetDefault("cluster.spiderfyDistanceMultiplier", 2)

	viper.SetDefault("interaction.undatedInRange", true)

	viper.SetDefault("server.address", "localhost:8001")
	viper.SetDefault("server.mediaPrefix", "/media")

	viper.SetDefault("storage.type", "html")
	viper.SetDefault("storage.outputDir", ".")
	viper.SetDefault("storage.outputName", "media_map")
	viper.SetDefault("storage.compressOutput", false)
	viper.SetDefault("storage.postgres.dsn", "")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "mapview")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load sets default values and reads the JSON config file from configDir.
// A missing file yields an error wrapping ErrNotFound; defaults remain in
// effect.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", ErrNotFound)
		}
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"media":      "input.media",
	"events":     "input.events",
	"media-root": "input.mediaRoot",
	"out":        "storage.outputDir",
	"name":       "storage.outputName",
	"storage":    "storage.type",
	"log-level":  "logLevel",
	"address":    "server.address",
}

// BindFlags binds the known flags of fs into viper so that explicitly set
// flags override file values. Unknown flags are ignored.
func BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("error binding flag %s: %w", name, err)
		}
	}
	return nil
}

// InFile reports whether key is set in the loaded config file.
func InFile(key string) bool {
	return viper.InConfig(key)
}

// Set overrides a config value.
func Set(key string, value any) {
	viper.Set(key, value)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetBuildConfig returns the normalization settings.
func GetBuildConfig() BuildConfig {
	return BuildConfig{
		LogLevel:     viper.GetString("logLevel"),
		LogsDir:      viper.GetString("logsDir"),
		Timezone:     viper.GetString("timezone"),
		PrimaryMatch: viper.GetString("event.primaryMatch"),
		Input: InputConfig{
			Media:     viper.GetString("input.media"),
			Events:    viper.GetString("input.events"),
			MediaRoot: viper.GetString("input.mediaRoot"),
		},
	}
}

// GetOverlayConfig returns the accuracy overlay settings.
func GetOverlayConfig() OverlayConfig {
	return OverlayConfig{
		Enabled:       viper.GetBool("overlay.enabled"),
		FillOpacity:   viper.GetFloat64("overlay.fillOpacity"),
		StrokeOpacity: viper.GetFloat64("overlay.strokeOpacity"),
		Weight:        viper.GetInt("overlay.weight"),
		Segments:      viper.GetInt("overlay.segments"),
	}
}

// GetClusterConfig returns the clustering options.
func GetClusterConfig() ClusterConfig {
	return ClusterConfig{
		MaxClusterRadius:           viper.GetInt("cluster.maxClusterRadius"),
		DisableClusteringAtZoom:    viper.GetInt("cluster.disableClusteringAtZoom"),
		SpiderfyDistanceMultiplier: viper.GetFloat64("cluster.spiderfyDistanceMultiplier"),
	}
}

// GetInteractionConfig returns the viewer filter policy.
func GetInteractionConfig() InteractionConfig {
	return InteractionConfig{
		UndatedInRange: viper.GetBool("interaction.undatedInRange"),
	}
}

// GetServerConfig returns the viewer server settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Address:     viper.GetString("server.address"),
		MediaPrefix: viper.GetString("server.mediaPrefix"),
	}
}

// GetStorageConfig returns the output sink settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type:           viper.GetString("storage.type"),
		OutputDir:      viper.GetString("storage.outputDir"),
		OutputName:     viper.GetString("storage.outputName"),
		CompressOutput: viper.GetBool("storage.compressOutput"),
		Postgres: PostgresConfig{
			DSN: viper.GetString("storage.postgres.dsn"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
