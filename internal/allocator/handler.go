package allocator

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/foxglove-dhcp/dhcp4d/internal/dhcpd"
	"github.com/foxglove-dhcp/dhcp4d/internal/metrics"
	"github.com/foxglove-dhcp/dhcp4d/pkg/dhcpv4"
)

// Allocator implements dhcpd.Handler: the example DORA cycle (RFC 2131
// §4.3) built on a flat address Pool and an in-memory LeaseStore. It is
// the one piece of this repository the core protocol library and
// server harness know nothing about.
type Allocator struct {
	pool       *Pool
	leases     *LeaseStore
	prober     *Prober
	subnetMask net.IP
	routers    []net.IP
	dns        []net.IP
	leaseTime  time.Duration
	probeWait  time.Duration
	logger     *slog.Logger
}

// Config bundles the network options an offered lease carries.
type Config struct {
	SubnetMask net.IP
	Routers    []net.IP
	DNS        []net.IP
	LeaseTime  time.Duration
	ProbeWait  time.Duration
}

// New builds an Allocator over pool, using prober (may report
// unavailable) to skip addresses that answer an ICMP probe.
func New(pool *Pool, prober *Prober, cfg Config, logger *slog.Logger) *Allocator {
	if cfg.LeaseTime <= 0 {
		cfg.LeaseTime = time.Hour
	}
	if cfg.ProbeWait <= 0 {
		cfg.ProbeWait = 300 * time.Millisecond
	}
	return &Allocator{
		pool:       pool,
		leases:     NewLeaseStore(),
		prober:     prober,
		subnetMask: cfg.SubnetMask,
		routers:    cfg.Routers,
		dns:        cfg.DNS,
		leaseTime:  cfg.LeaseTime,
		probeWait:  cfg.ProbeWait,
		logger:     logger,
	}
}

// HandleRequest dispatches a decoded packet to the DORA step matching
// its message type, per dhcpd.Handler.
func (a *Allocator) HandleRequest(server *dhcpd.Server, packet *dhcpv4.Packet) {
	msgType, err := packet.MessageType()
	if err != nil {
		return
	}

	switch msgType {
	case dhcpv4.MessageTypeDiscover:
		a.handleDiscover(server, packet)
	case dhcpv4.MessageTypeRequest:
		a.handleRequest(server, packet)
	case dhcpv4.MessageTypeDecline:
		a.handleDecline(packet)
	case dhcpv4.MessageTypeRelease:
		a.handleRelease(packet)
	case dhcpv4.MessageTypeInform:
		a.handleInform(server, packet)
	}
}

func (a *Allocator) handleDiscover(server *dhcpd.Server, packet *dhcpv4.Packet) {
	offerIP, ok := a.leases.Lookup(packet.CHAddr)
	if !ok {
		offerIP = a.findAvailable(packet.CHAddr)
		if offerIP == nil {
			if a.logger != nil {
				a.logger.Warn("pool exhausted, no address to offer")
			}
			return
		}
	}

	if err := server.Reply(dhcpv4.MessageTypeOffer, a.offerOptions(), offerIP, packet); err != nil && a.logger != nil {
		a.logger.Error("sending offer", "error", err)
	}
}

func (a *Allocator) handleRequest(server *dhcpd.Server, packet *dhcpv4.Packet) {
	if _, ok := packet.Option(dhcpv4.OptionCodeServerIdentifier); ok && !server.ForThisServer(packet) {
		return
	}

	requested := requestedIP(packet)
	if requested == nil {
		requested = packet.CIAddr
	}
	if requested == nil || requested.Equal(net.IPv4zero) {
		a.nak(server, packet, "no requested address")
		return
	}

	if !a.leases.Available(requested, packet.CHAddr) || !a.pool.Contains(requested) {
		a.nak(server, packet, "address unavailable")
		return
	}

	if a.prober != nil && a.prober.Available() {
		ctx, cancel := context.WithTimeout(context.Background(), a.probeWait)
		inUse, _ := a.prober.Probe(ctx, requested)
		cancel()
		if inUse {
			metrics.ConflictsDetected.Inc()
			a.nak(server, packet, "address answered ICMP probe")
			return
		}
	}

	a.pool.AllocateSpecific(requested)
	a.leases.Assign(packet.CHAddr, requested, a.leaseTime)
	a.updatePoolMetrics()

	if err := server.Reply(dhcpv4.MessageTypeAck, a.offerOptions(), requested, packet); err != nil && a.logger != nil {
		a.logger.Error("sending ack", "error", err)
	}
}

func (a *Allocator) handleDecline(packet *dhcpv4.Packet) {
	if ip, ok := a.leases.Lookup(packet.CHAddr); ok {
		a.pool.Release(ip)
		a.leases.Release(packet.CHAddr)
		a.updatePoolMetrics()
	}
}

func (a *Allocator) handleRelease(packet *dhcpv4.Packet) {
	if ip, ok := a.leases.Lookup(packet.CHAddr); ok {
		a.pool.Release(ip)
		a.leases.Release(packet.CHAddr)
		a.updatePoolMetrics()
	}
}

func (a *Allocator) handleInform(server *dhcpd.Server, packet *dhcpv4.Packet) {
	ciaddr := packet.CIAddr
	if ciaddr == nil || ciaddr.Equal(net.IPv4zero) {
		return
	}
	if err := server.Reply(dhcpv4.MessageTypeAck, a.offerOptions(), ciaddr, packet); err != nil && a.logger != nil {
		a.logger.Error("sending inform ack", "error", err)
	}
}

func (a *Allocator) nak(server *dhcpd.Server, packet *dhcpv4.Packet, reason string) {
	opts := []dhcpv4.Option{dhcpv4.MessageOption{Text: reason}}
	if err := server.Reply(dhcpv4.MessageTypeNak, opts, net.IPv4zero, packet); err != nil && a.logger != nil {
		a.logger.Error("sending nak", "error", err)
	}
}

// findAvailable allocates the next free address in the pool, skipping
// any that answer an ICMP probe.
func (a *Allocator) findAvailable(chaddr [6]byte) net.IP {
	candidate := a.pool.Allocate()
	if candidate == nil {
		return nil
	}

	if a.prober != nil && a.prober.Available() {
		ctx, cancel := context.WithTimeout(context.Background(), a.probeWait)
		inUse, _ := a.prober.Probe(ctx, candidate)
		cancel()
		if inUse {
			metrics.ConflictsDetected.Inc()
			// Keep the conflicting address marked while searching on, so
			// the next Allocate moves past it instead of returning it again.
			next := a.findAvailable(chaddr)
			a.pool.Release(candidate)
			return next
		}
	}

	a.pool.Release(candidate) // only reserved for real on REQUEST
	return candidate
}

func (a *Allocator) offerOptions() []dhcpv4.Option {
	opts := make([]dhcpv4.Option, 0, 4)
	if a.subnetMask != nil {
		opts = append(opts, dhcpv4.SubnetMaskOption{IP: a.subnetMask})
	}
	if len(a.routers) > 0 {
		opts = append(opts, dhcpv4.RouterOption{IPs: a.routers})
	}
	if len(a.dns) > 0 {
		opts = append(opts, dhcpv4.DomainNameServerOption{IPs: a.dns})
	}
	opts = append(opts, dhcpv4.IPAddressLeaseTimeOption{Seconds: uint32(a.leaseTime.Seconds())})
	return opts
}

func (a *Allocator) updatePoolMetrics() {
	metrics.PoolSize.Set(float64(a.pool.Size()))
	metrics.PoolAllocated.Set(float64(a.pool.Allocated()))
	metrics.PoolUtilization.Set(a.pool.Utilization())
}

func requestedIP(packet *dhcpv4.Packet) net.IP {
	opt, ok := packet.Option(dhcpv4.OptionCodeRequestedIPAddress)
	if !ok {
		return nil
	}
	return opt.(dhcpv4.RequestedIPAddressOption).IP
}
