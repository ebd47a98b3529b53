// dhcp4d — an embeddable DHCPv4 server: wire codec, single-threaded
// receive/dispatch loop, and an example lease-allocation handler.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foxglove-dhcp/dhcp4d/internal/allocator"
	"github.com/foxglove-dhcp/dhcp4d/internal/config"
	"github.com/foxglove-dhcp/dhcp4d/internal/dhcpd"
	"github.com/foxglove-dhcp/dhcp4d/internal/logging"
	"github.com/foxglove-dhcp/dhcp4d/pkg/dhcpv4"
)

// SO_BINDTODEVICE pins the socket to a specific interface (Linux only, value 25).
const soBindToDevice = 25

func main() {
	configPath := flag.String("config", "/etc/dhcp4d/config.toml", "path to configuration file")
	metricsAddr := flag.String("metrics-addr", "", "address to serve Prometheus metrics on (e.g. :9090); empty disables it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Server.LogLevel, os.Stdout)
	logger.Info("dhcp4d starting", "config", *configPath, "interface", cfg.Server.Interface)

	serverIP := cfg.ServerIP()
	if serverIP == nil {
		logger.Error("server.server_id is required and must be a valid IPv4 address")
		os.Exit(1)
	}

	if *metricsAddr != "" {
		mux := nethttp.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics server listening", "addr", *metricsAddr)
			if err := nethttp.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	pool, err := allocator.NewPool(net.ParseIP(cfg.Pool.Start), net.ParseIP(cfg.Pool.End))
	if err != nil {
		logger.Error("building address pool", "error", err)
		os.Exit(1)
	}

	var prober *allocator.Prober
	if cfg.Conflict.Enabled {
		prober = allocator.NewProber(logger)
		defer prober.Close()
	}

	handler := allocator.New(pool, prober, allocator.Config{
		SubnetMask: net.ParseIP(cfg.Pool.SubnetMask),
		Routers:    config.IPs(cfg.Pool.Routers),
		DNS:        config.IPs(cfg.Pool.DNS),
		LeaseTime:  cfg.Pool.LeaseDuration(),
		ProbeWait:  cfg.Conflict.ProbeDuration(),
	}, logger)

	conn, err := listen(cfg.Server.BindAddress, cfg.Server.Interface, logger)
	if err != nil {
		logger.Error("listening for DHCP traffic", "error", err)
		os.Exit(1)
	}

	var limiter *dhcpd.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = dhcpd.NewRateLimiter(cfg.RateLimit.MaxDiscoversPerSecond, cfg.RateLimit.MaxPerMACPerSecond)
	}

	server := dhcpd.NewServer(logger, limiter)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		conn.Close()
	}()

	logger.Info("DHCP server listening", "addr", conn.LocalAddr(), "server_ip", serverIP)
	mask := cfg.SubnetMaskIP()
	if err := server.ServeInSubnet(conn, serverIP, mask, handler); err != nil {
		logger.Error("server loop exited", "error", err)
		os.Exit(1)
	}
}

// listen binds a UDP socket with SO_BROADCAST set, per the server
// loop's socket contract (spec §6): broadcast datagrams to
// 255.255.255.255 must be received and broadcast replies permitted. If
// iface is set, the socket is additionally pinned to that interface.
func listen(bindAddress, iface string, logger *slog.Logger) (*net.UDPConn, error) {
	if bindAddress == "" {
		bindAddress = fmt.Sprintf(":%d", dhcpv4.ServerPort)
	}

	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var firstErr error
			c.Control(func(fd uintptr) {
				if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
					logger.Warn("failed to set SO_REUSEADDR", "error", err)
				}
				if err := syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1); err != nil {
					logger.Warn("failed to set SO_BROADCAST", "error", err)
					firstErr = err
				}
				if iface != "" {
					if err := syscall.SetsockoptString(int(fd), syscall.SOL_SOCKET, soBindToDevice, iface); err != nil {
						logger.Debug("SO_BINDTODEVICE not available", "interface", iface, "error", err)
					} else {
						logger.Info("socket bound to interface", "interface", iface)
					}
				}
			})
			return firstErr
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp4", bindAddress)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", bindAddress, err)
	}
	return pc.(*net.UDPConn), nil
}
