package easyremote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"time"
)

// ScanResult represents a console that answered a scan.
type ScanResult struct {
	IP string
}

// Scan searches the local /24 subnets for consoles.
// It sends the ready message to every host on the configured port and
// collects the addresses that answer. Only WithPort, WithLocalAddr and
// WithLogger apply.
// The context controls the overall scan duration.
// If the context has no deadline, a 3-second timeout is applied.
func Scan(ctx context.Context, opts ...Option) ([]ScanResult, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	// Find local IPs and scan each /24
	ips, err := getLocalIPs()
	if err != nil {
		return nil, fmt.Errorf("get local IPs: %w", err)
	}

	var targets []*net.UDPAddr
	for _, ip := range ips {
		baseIP := ip.To4().Mask(net.CIDRMask(24, 32))
		for i := 1; i < 255; i++ {
			targets = append(targets, &net.UDPAddr{
				IP:   net.IPv4(baseIP[0], baseIP[1], baseIP[2], byte(i)),
				Port: cfg.port,
			})
		}
	}

	conn, err := net.ListenUDP("udp4", cfg.localAddr)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}
	defer conn.Close()

	return scanTargets(ctx, conn, targets, cfg)
}

// scanTargets probes every target from conn and collects distinct
// responders until the context ends.
func scanTargets(ctx context.Context, conn *net.UDPConn, targets []*net.UDPAddr, cfg *sessionConfig) ([]ScanResult, error) {
	// Apply default timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
	}

	for _, t := range targets {
		if _, err := conn.WriteToUDP([]byte(readyMessage), t); err != nil {
			// Unreachable hosts on a subnet are expected.
			if cfg.logger != nil {
				cfg.logger.Debug("scan probe failed", "target", t.String(), "error", err)
			}
		}
	}

	deadline, _ := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	seen := make(map[string]bool)
	var results []ScanResult
	buf := make([]byte, MaxDatagramSize)
	for {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break
			}
			return results, err
		}

		if _, err := ParseMessage(buf[:n]); err != nil {
			continue
		}

		ip := from.IP.String()
		if !seen[ip] {
			seen[ip] = true
			results = append(results, ScanResult{IP: ip})
			if cfg.logger != nil {
				cfg.logger.Debug("console answered", "ip", ip)
			}
		}
	}

	slices.SortFunc(results, func(a, b ScanResult) int {
		return bytes.Compare(net.ParseIP(a.IP).To16(), net.ParseIP(b.IP).To16())
	})
	return results, nil
}

func getLocalIPs() ([]net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	return ips, nil
}
