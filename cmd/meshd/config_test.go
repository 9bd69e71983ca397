package main

import (
	"testing"
	"time"
)

func baseConfig() *appConfig {
	return &appConfig{
		nodeID:       1,
		nodeCost:     1,
		serialEnable: true,
		serialDev:    "/dev/null",
		serialBaud:   115200,
		serialReadTO: 10 * time.Millisecond,
		uhfDev:       "/dev/null",
		uhfBaud:      9600,
		uhfReadTO:    10 * time.Millisecond,
		logFormat:    "text",
		logLevel:     "info",
		shortBuffers: 4,
		largeBuffers: 4,
		tickInterval: time.Millisecond,
	}
}

func TestConfigValidateOK(t *testing.T) {
	if err := baseConfig().validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*appConfig)
	}{
		{"badFormat", func(c *appConfig) { c.logFormat = "xx" }},
		{"badLevel", func(c *appConfig) { c.logLevel = "nope" }},
		{"nodeIDLow", func(c *appConfig) { c.nodeID = 0 }},
		{"nodeIDHigh", func(c *appConfig) { c.nodeID = 256 }},
		{"nodeCostNegative", func(c *appConfig) { c.nodeCost = -1 }},
		{"nodeCostOverflow", func(c *appConfig) { c.nodeCost = 0x10000 }},
		{"noMedium", func(c *appConfig) { c.serialEnable, c.uhfEnable = false, false }},
		{"badSerialBaud", func(c *appConfig) { c.serialBaud = 0 }},
		{"badUHFBaud", func(c *appConfig) { c.uhfBaud = 0 }},
		{"badSerialTO", func(c *appConfig) { c.serialReadTO = 0 }},
		{"badUHFTO", func(c *appConfig) { c.uhfReadTO = 0 }},
		{"negativeBuffers", func(c *appConfig) { c.shortBuffers = -1 }},
		{"badTick", func(c *appConfig) { c.tickInterval = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := baseConfig()
			tc.mod(c)
			if err := c.validate(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
