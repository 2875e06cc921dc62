package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"zkterm/config"
	"zkterm/device"
	"zkterm/netlog"
	"zkterm/session"
	"zkterm/transport"
)

// Version info - increment based on change magnitude:
// Major (x.0.0): Breaking changes, major rewrites
// Minor (0.y.0): New features, significant enhancements
// Patch (0.0.z): Bug fixes, minor improvements
var Version = "1.0.0"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	ip := flag.String("ip", "", "Override listen IP from config")
	port := flag.Int("port", 0, "Override listen port from config")
	password := flag.String("password", "", "Override device password from config")
	udp := flag.Bool("udp", false, "Serve in UDP (datagram) mode instead of TCP")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *ip != "" {
		cfg.Device.IP = *ip
	}
	if *port != 0 {
		cfg.Device.Port = *port
	}
	if *password != "" {
		cfg.Device.Password = *password
	}
	if *udp {
		cfg.Device.UDP = true
	}

	if lvl, err := log.ParseLevel(cfg.Logs.Level); err == nil {
		log.SetLevel(lvl)
	}

	log.Infof("Starting zkterm v%s", Version)
	log.Infof("  listen: %s:%d (udp=%v)", cfg.Device.IP, cfg.Device.Port, cfg.Device.UDP)
	log.Infof("  firmware: %s, serial=%s, platform=%s", cfg.Firmware.Version, cfg.Firmware.SerialNumber, cfg.Firmware.Platform)
	log.Infof("  capacity: users=%d templates=%d attendance=%d", cfg.Capacity.MaxUsers, cfg.Capacity.MaxTemplates, cfg.Capacity.MaxAttendance)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down...")
		cancel()
	}()

	model := device.New(device.Capacity{
		MaxUsers:      cfg.Capacity.MaxUsers,
		MaxTemplates:  cfg.Capacity.MaxTemplates,
		MaxAttendance: cfg.Capacity.MaxAttendance,
	})
	if len(cfg.Seed) > 0 {
		users := make([]device.User, len(cfg.Seed))
		for i, s := range cfg.Seed {
			users[i] = device.User{UID: uint16(s.UID), Name: s.Name, UserID: s.UserID}
		}
		model.Seed(users)
		log.Infof("  seeded %d users", len(users))
	}

	identity := session.Identity{
		FirmwareVersion: cfg.Firmware.Version,
		SerialNumber:    cfg.Firmware.SerialNumber,
		Platform:        cfg.Firmware.Platform,
		DeviceName:      cfg.Firmware.DeviceName,
		MAC:             cfg.Firmware.MAC,
		IPAddress:       cfg.Device.IP,
		NetMask:         cfg.Firmware.NetMask,
		GatewayIP:       cfg.Firmware.GatewayIP,
		PinWidth:        byte(cfg.Firmware.PinWidth),
		Password:        cfg.Device.Password,
	}

	var trace *netlog.Writer
	if cfg.Logs.Path != "" {
		trace = netlog.NewWriter(cfg.Logs.Path, cfg.Logs.RetentionDays)
		defer trace.Close()

		go func() {
			ticker := time.NewTicker(24 * time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					trace.Cleanup()
				}
			}
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Device.IP, cfg.Device.Port)

	if cfg.Device.UDP {
		ln, err := transport.ListenUDP(addr, model, identity, trace)
		if err != nil {
			log.Fatalf("failed to bind udp listener: %v", err)
		}
		log.Infof("listening on udp %s", ln.Addr())
		if err := ln.Serve(ctx); err != nil {
			log.Fatalf("udp listener error: %v", err)
		}
		return
	}

	ln, err := transport.ListenTCP(addr, model, identity, trace)
	if err != nil {
		log.Fatalf("failed to bind tcp listener: %v", err)
	}
	log.Infof("listening on tcp %s", ln.Addr())
	if err := ln.Serve(ctx); err != nil {
		log.Fatalf("tcp listener error: %v", err)
	}
}
