// Package dhcpd is the DHCPv4 server harness: a single-socket receive/
// dispatch loop over the pkg/dhcpv4 wire codec, a reply assembler that
// injects mandatory options and honors a client's Parameter Request
// List, and the unicast-vs-broadcast send policy.
package dhcpd

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/foxglove-dhcp/dhcp4d/internal/metrics"
	"github.com/foxglove-dhcp/dhcp4d/pkg/dhcpv4"
)

// Server owns one UDP socket and runs a strictly single-threaded
// receive/decode/dispatch loop (§5): it blocks on ReadFromUDP, runs the
// handler to completion, and only then returns to receive. Replies to
// packet N are always sent before packet N+1 is read.
type Server struct {
	conn        *net.UDPConn
	serverIP    net.IP
	broadcastIP net.IP
	handler     Handler
	logger      *slog.Logger
	limiter     *RateLimiter

	sendBuf []byte
	peer    *net.UDPAddr
}

// NewServer builds a Server. logger and limiter may be nil: a nil
// logger silently discards decode-failure diagnostics (spec.md §7 — the
// core never requires logging), and a nil limiter disables rate
// limiting entirely.
func NewServer(logger *slog.Logger, limiter *RateLimiter) *Server {
	return &Server{
		logger:  logger,
		limiter: limiter,
		sendBuf: make([]byte, dhcpv4.MaxPacketSize),
	}
}

// Serve enters the receive loop with the broadcast scope defaulting to
// the limited broadcast address (no subnet mask known).
func (s *Server) Serve(conn *net.UDPConn, serverIP net.IP, handler Handler) error {
	return s.ServeInSubnet(conn, serverIP, nil, handler)
}

// ServeInSubnet enters the receive loop with an explicit subnet mask,
// from which the broadcast destination is derived as
// (server_ip & mask) | (255.255.255.255 & ^mask).
func (s *Server) ServeInSubnet(conn *net.UDPConn, serverIP net.IP, mask net.IPMask, handler Handler) error {
	s.conn = conn
	s.serverIP = serverIP
	s.handler = handler
	s.broadcastIP = deriveBroadcastIP(serverIP, mask)

	for {
		recvBuf := getBuffer()
		n, addr, err := conn.ReadFromUDP(recvBuf)
		if err != nil {
			putBuffer(recvBuf)
			return fmt.Errorf("reading from udp: %w", err)
		}
		s.peer = addr

		packet, err := dhcpv4.Decode(recvBuf[:n])
		putBuffer(recvBuf)
		if err != nil {
			metrics.PacketsDropped.WithLabelValues("decode").Inc()
			if s.logger != nil {
				s.logger.Warn("dropping malformed packet", "error", err, "src", addr.String())
			}
			continue
		}

		if s.limiter != nil && !s.limiter.Allow(packet.CHAddr) {
			metrics.PacketsDropped.WithLabelValues("rate_limited").Inc()
			continue
		}

		msgType, mtErr := packet.MessageType()
		label := "unknown"
		if mtErr == nil {
			label = msgType.String()
		}
		metrics.PacketsReceived.WithLabelValues(label).Inc()

		start := time.Now()
		handler.HandleRequest(s, packet)
		metrics.HandlerDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}
}

// ForThisServer reports whether packet carries a ServerIdentifier option
// equal to this server's address — handlers use it to ignore requests a
// client addressed to a different DHCP server on the same broadcast
// domain.
func (s *Server) ForThisServer(packet *dhcpv4.Packet) bool {
	opt, ok := packet.Option(dhcpv4.OptionCodeServerIdentifier)
	if !ok {
		return false
	}
	return opt.(dhcpv4.ServerIdentifierOption).IP.Equal(s.serverIP)
}

// Reply assembles a reply to request (mandatory options + additional,
// PRL-filtered) and sends it.
func (s *Server) Reply(msgType dhcpv4.MessageType, additional []dhcpv4.Option, offerIP net.IP, request *dhcpv4.Packet) error {
	reply := buildReply(request, msgType, s.serverIP, offerIP, additional)
	return s.Send(reply)
}

// Send encodes packet and writes it to the destination chosen by the
// send policy (§4.4): the derived broadcast address when the packet's
// broadcast flag is set or the recorded peer is unspecified, otherwise
// the recorded peer address verbatim.
func (s *Server) Send(packet *dhcpv4.Packet) error {
	encoded := dhcpv4.Encode(packet, s.sendBuf)

	dst := s.sendDestination(packet)
	if _, err := s.conn.WriteToUDP(encoded, dst); err != nil {
		return fmt.Errorf("sending to %s: %w", dst, err)
	}

	msgType, err := packet.MessageType()
	label := "unknown"
	if err == nil {
		label = msgType.String()
	}
	metrics.PacketsSent.WithLabelValues(label).Inc()
	return nil
}

func (s *Server) sendDestination(packet *dhcpv4.Packet) *net.UDPAddr {
	peerUnspecified := s.peer == nil || s.peer.IP.IsUnspecified()
	if packet.Broadcast || peerUnspecified {
		port := dhcpv4.ClientPort
		if s.peer != nil {
			port = s.peer.Port
		}
		return &net.UDPAddr{IP: s.broadcastIP, Port: port}
	}
	return s.peer
}

// deriveBroadcastIP computes (server_ip & mask) | (255.255.255.255 & ^mask),
// falling back to the limited broadcast address when mask is nil.
func deriveBroadcastIP(serverIP net.IP, mask net.IPMask) net.IP {
	if mask == nil {
		return dhcpv4.BroadcastIP
	}
	ip4 := serverIP.To4()
	if ip4 == nil {
		return dhcpv4.BroadcastIP
	}
	network := ip4.Mask(mask)
	out := make(net.IP, 4)
	for i := range out {
		out[i] = network[i] | ^mask[i]
	}
	return out
}
