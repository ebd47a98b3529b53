package dhcpd

import (
	"net"

	"github.com/foxglove-dhcp/dhcp4d/pkg/dhcpv4"
)

// mandatoryHeader is the fixed-order set of options the reply assembler
// pins at the head of every reply, ahead of anything the client's
// Parameter Request List asks for.
var mandatoryHeader = []dhcpv4.OptionCode{
	dhcpv4.OptionCodeDHCPMessageType,
	dhcpv4.OptionCodeServerIdentifier,
	dhcpv4.OptionCodeIPAddressLeaseTime,
}

// buildReply assembles a reply packet from a request, per RFC 2131 §4.3.1:
// mandatory options first, then the handler's additional options, then
// (if the client sent a Parameter Request List) filtered and reordered
// to the client's preference.
func buildReply(request *dhcpv4.Packet, msgType dhcpv4.MessageType, serverIP net.IP, offerIP net.IP, additional []dhcpv4.Option) *dhcpv4.Packet {
	ciaddr := net.IPv4zero
	if msgType != dhcpv4.MessageTypeNak {
		ciaddr = request.CIAddr
	}

	opts := make([]dhcpv4.Option, 0, 2+len(additional))
	opts = append(opts,
		dhcpv4.MessageTypeOption{Type: msgType},
		dhcpv4.ServerIdentifierOption{IP: serverIP},
	)
	opts = append(opts, additional...)

	if prl, ok := request.Option(dhcpv4.OptionCodeParameterRequestList); ok {
		opts = filterOptionsByPRL(opts, prl.(dhcpv4.ParameterRequestListOption).Codes)
	}

	return &dhcpv4.Packet{
		Reply:     true,
		Hops:      0,
		XID:       request.XID,
		Secs:      0,
		Broadcast: request.Broadcast,
		CIAddr:    ciaddr,
		YIAddr:    offerIP,
		SIAddr:    net.IPv4zero,
		GIAddr:    request.GIAddr,
		CHAddr:    request.CHAddr,
		Options:   opts,
	}
}

// filterOptionsByPRL reorders opts so the mandatory header options come
// first in fixed order, followed by whatever the client's Parameter
// Request List asks for in the client's own order. Anything neither
// mandatory nor requested is dropped. Mutates and returns a prefix of opts.
func filterOptionsByPRL(opts []dhcpv4.Option, prl []dhcpv4.OptionCode) []dhcpv4.Option {
	wanted := make([]dhcpv4.OptionCode, 0, len(mandatoryHeader)+len(prl))
	wanted = append(wanted, mandatoryHeader...)
	wanted = append(wanted, prl...)

	pos := 0
	for _, code := range wanted {
		at := -1
		for i := pos; i < len(opts); i++ {
			if opts[i].Code() == code {
				at = i
				break
			}
		}
		if at < 0 {
			continue
		}
		opts[pos], opts[at] = opts[at], opts[pos]
		pos++
	}
	return opts[:pos]
}
