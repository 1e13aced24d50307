package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Model      ModelConfig
	Detector   DetectorConfig
	Matcher    MatcherConfig
	Registry   RegistryConfig
	Attendance AttendanceConfig
	Web        WebConfig
}

type ModelConfig struct {
	Path string // path to the ONNX embedding model (e.g., models/facenet.onnx)
}

type DetectorConfig struct {
	CascadePath  string  // path to the Haar cascade XML
	ScaleFactor  float64 `yaml:"scale_factor"`
	MinNeighbors int     `yaml:"min_neighbors"`
	MinSize      int     `yaml:"min_size"`
	CropSize     int     `yaml:"crop_size"`
}

type MatcherConfig struct {
	Threshold float64 `yaml:"threshold"` // cosine distance cutoff, strict less-than
	Index     string  // "linear" (default) or "hnsw"
}

type RegistryConfig struct {
	Path string // embedding snapshot file (e.g., data/registry.gob)
}

type AttendanceConfig struct {
	CSVPath string // attendance ledger CSV (e.g., data/attendance.csv)
}

type WebConfig struct {
	Host string // defaults to 0.0.0.0
	Port int    // defaults to 8080
}

// Addr returns the host:port listen address for the web server.
func (c *WebConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// defaults holds the tuning parameters baked into the binary. Env vars
// override them per deployment.
type defaults struct {
	Detector DetectorConfig `yaml:"detector"`
	Matcher  MatcherConfig  `yaml:"matcher"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var def defaults
	if err := yaml.Unmarshal(defaultsYAML, &def); err != nil {
		// Embedded file, cannot fail at runtime unless the build is broken.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	return &Config{
		Model: ModelConfig{
			Path: envString("MODEL_PATH", "models/facenet.onnx"),
		},
		Detector: DetectorConfig{
			CascadePath:  envString("CASCADE_PATH", "models/haarcascade_frontalface_default.xml"),
			ScaleFactor:  envFloat("DETECTOR_SCALE_FACTOR", def.Detector.ScaleFactor),
			MinNeighbors: envInt("DETECTOR_MIN_NEIGHBORS", def.Detector.MinNeighbors),
			MinSize:      envInt("DETECTOR_MIN_SIZE", def.Detector.MinSize),
			CropSize:     envInt("DETECTOR_CROP_SIZE", def.Detector.CropSize),
		},
		Matcher: MatcherConfig{
			Threshold: envFloat("MATCH_THRESHOLD", def.Matcher.Threshold),
			Index:     envString("MATCH_INDEX", "linear"),
		},
		Registry: RegistryConfig{
			Path: envString("REGISTRY_PATH", "data/registry.gob"),
		},
		Attendance: AttendanceConfig{
			CSVPath: envString("ATTENDANCE_CSV", "data/attendance.csv"),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
	}
}
