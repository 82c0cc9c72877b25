package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.bug.st/serial"
	"gopkg.in/yaml.v3"
)

// config holds the connection settings for the device's calibration console.
type config struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

func loadConfig(path string) (config, error) {
	cfg := config{Baud: 115200}
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("error reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

func main() {
	var configPath, port string
	var baud int
	flag.StringVar(&configPath, "config", "", "Path to a YAML file with port/baud settings")
	flag.StringVar(&port, "port", "", "Serial port of the device (overrides config)")
	flag.IntVar(&baud, "baud", 0, "Baud rate (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if port != "" {
		cfg.Port = port
	}
	if baud != 0 {
		cfg.Baud = baud
	}
	if cfg.Port == "" {
		logger.Error("no serial port configured, use -port or -config")
		os.Exit(1)
	}

	conn, err := serial.Open(cfg.Port, &serial.Mode{BaudRate: cfg.Baud})
	if err != nil {
		logger.Error("failed to open serial port", "port", cfg.Port, "error", err)
		os.Exit(1)
	}

	logger.Info("connected to calibration console", "port", cfg.Port, "baud", cfg.Baud)
	logger.Info("the console only responds while the device is in CALIBRATION mode; send 'H' for help")

	// Whichever side finishes first ends the session. The copies report back
	// here so the port is always closed before exiting.
	done := make(chan error, 2)
	go func() {
		_, err := io.Copy(conn, os.Stdin)
		done <- err
	}()
	go func() {
		_, err := io.Copy(os.Stdout, conn)
		done <- err
	}()

	err = <-done
	conn.Close()
	if err != nil {
		logger.Error("serial session failed", "error", err)
		os.Exit(1)
	}
}
