package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type SourceType string

const (
	SourceCamera SourceType = "Camera"
	SourceVideo  SourceType = "Video"

	DefaultConfigPath string = "config.json"
	EnvPrefix         string = "FACECAM"
)

type CameraConfig struct {
	DeviceID int `json:"device_id" mapstructure:"device_id"`
}

type VideoConfig struct {
	Path      string `json:"path" mapstructure:"path"`
	BrowseDir string `json:"browse_dir" mapstructure:"browse_dir"`
}

// CascadeConfig points at the Haar cascade XML models.
type CascadeConfig struct {
	Dir          string  `json:"dir" mapstructure:"dir"`
	FaceFile     string  `json:"face_file" mapstructure:"face_file"`
	EyeFile      string  `json:"eye_file" mapstructure:"eye_file"`
	ScaleFactor  float64 `json:"scale_factor" mapstructure:"scale_factor"`
	MinNeighbors int     `json:"min_neighbors" mapstructure:"min_neighbors"`
}

type PlotConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`
}

type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
	File  string `json:"file" mapstructure:"file"`
}

type Config struct {
	mu   sync.RWMutex
	path string

	ActiveSource SourceType `json:"active_source" mapstructure:"active_source"`
	TargetFPS    uint       `json:"target_fps" mapstructure:"target_fps"`
	ScaledWidth  int        `json:"scaled_width" mapstructure:"scaled_width"`
	ScaledHeight int        `json:"scaled_height" mapstructure:"scaled_height"`

	Camera  CameraConfig  `json:"camera" mapstructure:"camera"`
	Video   VideoConfig   `json:"video" mapstructure:"video"`
	Cascade CascadeConfig `json:"cascade" mapstructure:"cascade"`
	Plot    PlotConfig    `json:"plot" mapstructure:"plot"`
	Log     LogConfig     `json:"log" mapstructure:"log"`
}

func (c *Config) GetFPS() uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.TargetFPS
}

func (c *Config) SetFPS(fps uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TargetFPS = fps
}

func (c *Config) GetWidth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ScaledWidth
}

func (c *Config) SetWidth(width int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ScaledWidth = width
}

func (c *Config) GetHeight() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ScaledHeight
}

func (c *Config) SetHeight(height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ScaledHeight = height
}

func (c *Config) GetDeviceID() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Camera.DeviceID
}

func (c *Config) SetDeviceID(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Camera.DeviceID = id
}

func (c *Config) GetPlotEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Plot.Enabled
}

func (c *Config) SetPlotEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Plot.Enabled = enabled
}

func (c *Config) SetActiveSource(source SourceType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ActiveSource = source
}

func (c *Config) SetVideoPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Video.Path = path
}

// Save writes the config as indented JSON, truncating any previous content.
func (c *Config) Save(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return nil
}

// SaveByDefault writes back to the file the config was loaded from.
func (c *Config) SaveByDefault() {
	path := c.path
	if path == "" {
		path = DefaultConfigPath
	}

	if err := c.Save(path); err != nil {
		log.WithError(err).Warn("failed to save config")
	}
}

// Load layers defaults, the JSON file at path (if it exists) and FACECAM_*
// environment variables, in that order.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Infof("config file %s does not exist, using defaults", path)
		} else {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			log.Infof("config loaded from %s", path)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := NewDefaultConfig()

	v.SetDefault("active_source", string(def.ActiveSource))
	v.SetDefault("target_fps", def.TargetFPS)
	v.SetDefault("scaled_width", def.ScaledWidth)
	v.SetDefault("scaled_height", def.ScaledHeight)

	v.SetDefault("camera.device_id", def.Camera.DeviceID)
	v.SetDefault("video.path", def.Video.Path)
	v.SetDefault("video.browse_dir", def.Video.BrowseDir)

	v.SetDefault("cascade.dir", def.Cascade.Dir)
	v.SetDefault("cascade.face_file", def.Cascade.FaceFile)
	v.SetDefault("cascade.eye_file", def.Cascade.EyeFile)
	v.SetDefault("cascade.scale_factor", def.Cascade.ScaleFactor)
	v.SetDefault("cascade.min_neighbors", def.Cascade.MinNeighbors)

	v.SetDefault("plot.enabled", def.Plot.Enabled)
	v.SetDefault("plot.output_dir", def.Plot.OutputDir)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.file", def.Log.File)
}

func NewDefaultConfig() *Config {
	return &Config{
		ActiveSource: SourceCamera,
		TargetFPS:    30,
		ScaledWidth:  640,
		ScaledHeight: 480,
		Camera:       CameraConfig{DeviceID: 0},
		Video:        VideoConfig{Path: "", BrowseDir: "videos"},
		Cascade: CascadeConfig{
			Dir:          "/usr/share/opencv4/haarcascades",
			FaceFile:     "haarcascade_frontalface_default.xml",
			EyeFile:      "haarcascade_eye.xml",
			ScaleFactor:  1.1,
			MinNeighbors: 6,
		},
		Plot: PlotConfig{Enabled: false, OutputDir: "plots"},
		Log:  LogConfig{Level: "info", File: ""},
	}
}
