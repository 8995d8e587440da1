// Package conf contains the runtime configuration.
package conf

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/judocare/hevcrec/pkg/demux"
	"github.com/judocare/hevcrec/pkg/rtph265"
	"github.com/judocare/hevcrec/pkg/segment"
)

const minBufferSize = 16

// Log is the log configuration.
//   - output: stdout, stderr
//   - format: empty (autodetect color support), color, text, json
//   - time:   empty (disable timestamp), a Go time layout, UNIXMS, UNIXMICRO, UNIXNANO
//   - level:  disabled, trace, debug, info, warn, error
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	Time   string `yaml:"time"`
}

// Buffers is the configuration of the buffers of the pipeline.
type Buffers struct {
	Network    int `yaml:"network"`
	AccessUnit int `yaml:"access_unit"`
}

// Segment is the configuration of output segments.
type Segment struct {
	TempSuffix string `yaml:"temp_suffix"`
	Provider   string `yaml:"provider"`
}

// RTSP is the configuration of the camera session.
type RTSP struct {
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `yaml:"user_agent"`
}

// Conf is the configuration.
type Conf struct {
	Log     Log     `yaml:"log"`
	Buffers Buffers `yaml:"buffers"`
	Segment Segment `yaml:"segment"`
	RTSP    RTSP    `yaml:"rtsp"`
}

// Default returns the default configuration.
func Default() *Conf {
	return &Conf{
		Log: Log{
			Level:  "info",
			Output: "stderr",
			Time:   "UNIXMS",
		},
		Buffers: Buffers{
			Network:    demux.DefaultBufferSize,
			AccessUnit: rtph265.DefaultBufferSize,
		},
		Segment: Segment{
			TempSuffix: segment.DefaultTempSuffix,
			Provider:   "judocare.cz",
		},
		RTSP: RTSP{
			RequestTimeout: 10 * time.Second,
			UserAgent:      "agent",
		},
	}
}

// Load loads the configuration from a YAML file.
// Values that are not present in the file keep their default.
// An empty path returns the default configuration.
func Load(path string) (*Conf, error) {
	c := Default()

	if path == "" {
		return c, nil
	}

	byts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = c.Unmarshal(byts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Unmarshal decodes YAML over the current values and validates the result.
func (c *Conf) Unmarshal(byts []byte) error {
	err := yaml.Unmarshal(byts, c)
	if err != nil {
		return err
	}

	return c.Validate()
}

// Validate checks the configuration.
func (c Conf) Validate() error {
	switch c.Log.Output {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("invalid log output '%s'", c.Log.Output)
	}

	switch c.Log.Format {
	case "", "color", "text", "json":
	default:
		return fmt.Errorf("invalid log format '%s'", c.Log.Format)
	}

	if c.Buffers.Network < minBufferSize {
		return fmt.Errorf("network buffer size (%d) is lower than minimum (%d)",
			c.Buffers.Network, minBufferSize)
	}

	if c.Buffers.AccessUnit < minBufferSize {
		return fmt.Errorf("access unit buffer size (%d) is lower than minimum (%d)",
			c.Buffers.AccessUnit, minBufferSize)
	}

	if c.Segment.TempSuffix == "" {
		return fmt.Errorf("temporary suffix is empty")
	}

	if c.RTSP.ReadTimeout < 0 || c.RTSP.RequestTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}

	return nil
}
