package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the simulator's top-level configuration, loaded from YAML
// and then overridable by CLI flags (see main.go).
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	Firmware FirmwareConfig `yaml:"firmware"`
	Capacity CapacityConfig `yaml:"capacity"`
	Seed     []SeedUser     `yaml:"seed"`
	Logs     LogsConfig     `yaml:"logs"`
}

// DeviceConfig controls how the simulator listens.
type DeviceConfig struct {
	IP       string `yaml:"ip"`
	Port     int    `yaml:"port"`
	UDP      bool   `yaml:"udp"`
	Password string `yaml:"password"`
}

// FirmwareConfig is the static device identity reported by GET
// VERSION, OPTIONS RRQ, and GET PIN WIDTH.
type FirmwareConfig struct {
	Version      string `yaml:"version"`
	SerialNumber string `yaml:"serial_number"`
	Platform     string `yaml:"platform"`
	DeviceName   string `yaml:"device_name"`
	MAC          string `yaml:"mac"`
	NetMask      string `yaml:"netmask"`
	GatewayIP    string `yaml:"gateway_ip"`
	PinWidth     int    `yaml:"pin_width"`
}

// CapacityConfig sets the maximums device.Capacity reports.
type CapacityConfig struct {
	MaxUsers      int `yaml:"max_users"`
	MaxTemplates  int `yaml:"max_templates"`
	MaxAttendance int `yaml:"max_attendance"`
}

// SeedUser is one user installed into the device model at startup.
type SeedUser struct {
	UID    int    `yaml:"uid"`
	Name   string `yaml:"name"`
	UserID string `yaml:"user_id"`
}

// LogsConfig controls the per-frame trace writer.
type LogsConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
	Level         string `yaml:"level"`
}

// Load reads a YAML config file, applying defaults first so any
// section the file omits still gets a usable value.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			IP:   "0.0.0.0",
			Port: 4370,
		},
		Firmware: FirmwareConfig{
			Version:      "Ver 6.60 Nov 13 2019",
			SerialNumber: "0000000000001",
			Platform:     "ZEM560",
			DeviceName:   "ZKTerm",
			MAC:          "00:17:61:01:02:03",
			NetMask:      "255.255.255.0",
			GatewayIP:    "192.168.1.1",
			PinWidth:     5,
		},
		Capacity: CapacityConfig{
			MaxUsers:      3000,
			MaxTemplates:  10000,
			MaxAttendance: 100000,
		},
		Logs: LogsConfig{
			Path:          "/data/logs",
			RetentionDays: 14,
			Level:         "info",
		},
	}
}
