package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type appConfig struct {
	nodeID   int
	nodeCost int

	serialEnable bool
	serialDev    string
	serialBaud   int
	serialReadTO time.Duration

	uhfEnable bool
	uhfDev    string
	uhfBaud   int
	uhfReadTO time.Duration

	autoDiscovery bool

	logFormat string
	logLevel  string

	metricsAddr string

	shortBuffers int
	largeBuffers int

	tickInterval time.Duration
}

func parseFlags() (*appConfig, bool) {
	cfg := &appConfig{}
	nodeID := flag.Int("node-id", 1, "This node's 1-byte identity on the mesh (1-255)")
	nodeCost := flag.Int("node-cost", 1, "Self-reported forwarding cost contributed to routed frames")

	serialEnable := flag.Bool("serial-enable", false, "Attach the serial medium")
	serialDev := flag.String("serial-dev", "/dev/ttyUSB0", "Serial device path")
	serialBaud := flag.Int("serial-baud", 115200, "Serial baud rate")
	serialReadTO := flag.Duration("serial-read-timeout", 50*time.Millisecond, "Serial read timeout")

	uhfEnable := flag.Bool("uhf-enable", false, "Attach the UHF medium")
	uhfDev := flag.String("uhf-dev", "/dev/ttyUSB1", "UHF modem device path")
	uhfBaud := flag.Int("uhf-baud", 9600, "UHF modem baud rate")
	uhfReadTO := flag.Duration("uhf-read-timeout", 50*time.Millisecond, "UHF modem read timeout")

	autoDiscovery := flag.Bool("auto-discovery", true, "Periodically broadcast Hello on broadcast-capable media")

	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")

	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")

	shortBuffers := flag.Int("short-buffers", 16, "Short-class framebuf pool size")
	largeBuffers := flag.Int("large-buffers", 16, "Large-class (MTU) framebuf pool size")

	tickInterval := flag.Duration("tick-interval", 5*time.Millisecond, "Scheduler tick interval")

	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })

	cfg.nodeID = *nodeID
	cfg.nodeCost = *nodeCost
	cfg.serialEnable = *serialEnable
	cfg.serialDev = *serialDev
	cfg.serialBaud = *serialBaud
	cfg.serialReadTO = *serialReadTO
	cfg.uhfEnable = *uhfEnable
	cfg.uhfDev = *uhfDev
	cfg.uhfBaud = *uhfBaud
	cfg.uhfReadTO = *uhfReadTO
	cfg.autoDiscovery = *autoDiscovery
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.shortBuffers = *shortBuffers
	cfg.largeBuffers = *largeBuffers
	cfg.tickInterval = *tickInterval

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

// validate performs basic semantic validation of the parsed configuration.
// It does not attempt to open devices — only checks values/ranges.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	if c.nodeID < 1 || c.nodeID > 255 {
		return fmt.Errorf("node-id must be in 1-255 (got %d)", c.nodeID)
	}
	if c.nodeCost < 0 || c.nodeCost > 0xFFFF {
		return fmt.Errorf("node-cost must fit in 16 bits (got %d)", c.nodeCost)
	}
	if !c.serialEnable && !c.uhfEnable {
		return errors.New("at least one of serial-enable or uhf-enable must be set")
	}
	if c.serialBaud <= 0 {
		return fmt.Errorf("serial-baud must be > 0 (got %d)", c.serialBaud)
	}
	if c.uhfBaud <= 0 {
		return fmt.Errorf("uhf-baud must be > 0 (got %d)", c.uhfBaud)
	}
	if c.serialReadTO <= 0 {
		return errors.New("serial-read-timeout must be > 0")
	}
	if c.uhfReadTO <= 0 {
		return errors.New("uhf-read-timeout must be > 0")
	}
	if c.shortBuffers < 0 || c.largeBuffers < 0 {
		return errors.New("buffer pool sizes must be >= 0")
	}
	if c.tickInterval <= 0 {
		return errors.New("tick-interval must be > 0")
	}
	return nil
}

// applyEnvOverrides maps MESHD_* environment variables to config fields
// unless a corresponding flag was explicitly set. Flag wins over env.
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }

	if _, ok := set["node-id"]; !ok {
		if v, ok := get("MESHD_NODE_ID"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.nodeID = n
			} else if firstErr == nil {
				firstErr = fmt.Errorf("invalid MESHD_NODE_ID: %w", err)
			}
		}
	}
	if _, ok := set["node-cost"]; !ok {
		if v, ok := get("MESHD_NODE_COST"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.nodeCost = n
			} else if firstErr == nil {
				firstErr = fmt.Errorf("invalid MESHD_NODE_COST: %w", err)
			}
		}
	}
	if _, ok := set["serial-enable"]; !ok {
		if v, ok := get("MESHD_SERIAL_ENABLE"); ok && v != "" {
			c.serialEnable = parseBool(v, c.serialEnable)
		}
	}
	if _, ok := set["serial-dev"]; !ok {
		if v, ok := get("MESHD_SERIAL_DEV"); ok && v != "" {
			c.serialDev = v
		}
	}
	if _, ok := set["serial-baud"]; !ok {
		if v, ok := get("MESHD_SERIAL_BAUD"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.serialBaud = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MESHD_SERIAL_BAUD: %w", err)
			}
		}
	}
	if _, ok := set["uhf-enable"]; !ok {
		if v, ok := get("MESHD_UHF_ENABLE"); ok && v != "" {
			c.uhfEnable = parseBool(v, c.uhfEnable)
		}
	}
	if _, ok := set["uhf-dev"]; !ok {
		if v, ok := get("MESHD_UHF_DEV"); ok && v != "" {
			c.uhfDev = v
		}
	}
	if _, ok := set["uhf-baud"]; !ok {
		if v, ok := get("MESHD_UHF_BAUD"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.uhfBaud = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MESHD_UHF_BAUD: %w", err)
			}
		}
	}
	if _, ok := set["auto-discovery"]; !ok {
		if v, ok := get("MESHD_AUTO_DISCOVERY"); ok && v != "" {
			c.autoDiscovery = parseBool(v, c.autoDiscovery)
		}
	}
	if _, ok := set["log-format"]; !ok {
		if v, ok := get("MESHD_LOG_FORMAT"); ok && v != "" {
			c.logFormat = v
		}
	}
	if _, ok := set["log-level"]; !ok {
		if v, ok := get("MESHD_LOG_LEVEL"); ok && v != "" {
			c.logLevel = v
		}
	}
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("MESHD_METRICS_ADDR"); ok {
			c.metricsAddr = v
		}
	}
	return firstErr
}

func parseBool(v string, current bool) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return current
	}
}
