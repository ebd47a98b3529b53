package allocator

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// Prober sends ICMP Echo Requests to check whether a candidate address
// is already in use before an offer is committed to. If the raw ICMP
// socket can't be opened (missing CAP_NET_RAW), it degrades to always
// reporting "clear" rather than failing allocation outright.
type Prober struct {
	conn      *icmp.PacketConn
	logger    *slog.Logger
	available bool
	seq       uint16
	mu        sync.Mutex
}

// NewProber opens the ICMP listener used for conflict probes.
func NewProber(logger *slog.Logger) *Prober {
	p := &Prober{logger: logger}

	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		logger.Warn("ICMP conflict probing disabled: failed to open raw socket",
			"error", err, "hint", "grant CAP_NET_RAW or run as root")
		return p
	}
	p.conn = conn
	p.available = true
	return p
}

// Available reports whether the prober has a working ICMP socket.
func (p *Prober) Available() bool {
	return p.available
}

// Close releases the ICMP socket.
func (p *Prober) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Probe sends an ICMP Echo Request to target and reports true if a
// reply arrives before ctx is done (meaning the address is already in
// use). A degraded prober always reports clear.
func (p *Prober) Probe(ctx context.Context, target net.IP) (bool, error) {
	if !p.available {
		return false, nil
	}

	p.mu.Lock()
	p.seq++
	seq := p.seq
	p.mu.Unlock()

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  int(seq),
			Data: []byte("dhcp4d-probe"),
		},
	}
	wire, err := msg.Marshal(nil)
	if err != nil {
		return false, fmt.Errorf("marshalling ICMP echo request: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		if err := p.conn.SetDeadline(deadline); err != nil {
			return false, fmt.Errorf("setting ICMP deadline: %w", err)
		}
	}

	if _, err := p.conn.WriteTo(wire, &net.IPAddr{IP: target}); err != nil {
		return false, fmt.Errorf("sending ICMP echo to %s: %w", target, err)
	}

	buf := make([]byte, 1500)
	for {
		select {
		case <-ctx.Done():
			return false, nil
		default:
		}

		n, _, err := p.conn.ReadFrom(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				return false, nil
			}
			return false, fmt.Errorf("reading ICMP reply: %w", err)
		}

		reply, err := icmp.ParseMessage(1, buf[:n])
		if err != nil || reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		if echo, ok := reply.Body.(*icmp.Echo); ok {
			if echo.ID == os.Getpid()&0xffff && echo.Seq == int(seq) {
				return true, nil
			}
		}
	}
}

