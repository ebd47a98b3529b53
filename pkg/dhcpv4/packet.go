package dhcpv4

import (
	"encoding/binary"
	"net"
)

// Packet is a decoded DHCPv4 message (RFC 2131 §2). Options preserve the
// order in which they were parsed (or inserted, for a packet built by the
// application); the encoder never reorders them — see internal/dhcpd's
// reply assembler for the PRL-driven reordering applied before a reply
// actually goes on the wire.
type Packet struct {
	Reply     bool // false = BOOTREQUEST, true = BOOTREPLY
	Hops      byte
	XID       uint32
	Secs      uint16
	Broadcast bool
	CIAddr    net.IP
	YIAddr    net.IP
	SIAddr    net.IP
	GIAddr    net.IP
	CHAddr    [6]byte
	Options   []Option
}

// Option returns the first option matching code, if present.
func (p *Packet) Option(code OptionCode) (Option, bool) {
	for _, o := range p.Options {
		if o.Code() == code {
			return o, true
		}
	}
	return nil, false
}

// MessageType returns the packet's DHCP message type (option 53).
func (p *Packet) MessageType() (MessageType, error) {
	o, ok := p.Option(OptionCodeDHCPMessageType)
	if !ok {
		return 0, newDecodeError(ErrUnrecognizedMessageType, "no message type option present")
	}
	return o.(MessageTypeOption).Type, nil
}

// Decode parses a raw DHCPv4 datagram into a Packet (RFC 2131 §2, §3).
func Decode(data []byte) (*Packet, error) {
	if len(data) < MinHeaderSize {
		return nil, newDecodeError(ErrTruncatedPacket, "need at least 240 bytes")
	}

	var reply bool
	switch OpCode(data[0]) {
	case OpRequest:
		reply = false
	case OpReply:
		reply = true
	default:
		return nil, newDecodeError(ErrInvalidOpCode, "")
	}

	if data[2] != 6 {
		return nil, newDecodeError(ErrInvalidHlen, "")
	}

	if data[236] != MagicCookie[0] || data[237] != MagicCookie[1] ||
		data[238] != MagicCookie[2] || data[239] != MagicCookie[3] {
		return nil, newDecodeError(ErrInvalidCookie, "")
	}

	p := &Packet{
		Reply:     reply,
		Hops:      data[3],
		XID:       binary.BigEndian.Uint32(data[4:8]),
		Secs:      binary.BigEndian.Uint16(data[8:10]),
		Broadcast: data[10]&0x80 != 0,
		CIAddr:    cloneIP(data[12:16]),
		YIAddr:    cloneIP(data[16:20]),
		SIAddr:    cloneIP(data[20:24]),
		GIAddr:    cloneIP(data[24:28]),
	}
	copy(p.CHAddr[:], data[28:34])

	opts, err := decodeOptions(data[MinHeaderSize:])
	if err != nil {
		return nil, err
	}
	p.Options = opts

	return p, nil
}

func cloneIP(b []byte) net.IP {
	ip := make(net.IP, 4)
	copy(ip, b)
	return ip
}

// decodeOptions reads the TLV options region: code, then (unless END/PAD)
// a length byte and that many payload bytes. A length that would read
// past the input end fails the decode.
func decodeOptions(data []byte) ([]Option, error) {
	var opts []Option
	i := 0
	for i < len(data) {
		code := OptionCode(data[i])
		i++

		if code == OptionCodeEnd {
			return opts, nil
		}
		if code == OptionCodePad {
			continue
		}

		if i >= len(data) {
			return nil, newDecodeError(ErrTruncatedPacket, "option "+Title(code)+" missing length byte")
		}
		length := int(data[i])
		i++

		if i+length > len(data) {
			return nil, newDecodeError(ErrTruncatedPacket, "option "+Title(code)+" payload runs past end of input")
		}

		opt, err := decodeOption(code, data[i:i+length])
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
		i += length
	}
	// No END marker: RFC 2131 requires one, but the source this library
	// descends from tolerates options that run exactly to the buffer's
	// end without a trailing END/PAD (see DESIGN.md's Open Question
	// resolution), so the option list decoded so far is accepted.
	return opts, nil
}

// Encode serializes p into buf, which must be at least MaxPacketSize
// bytes, and returns the written subslice. Encoding never fails for
// well-formed inputs: UTF-8-valid text options and option payloads no
// longer than 255 bytes.
func Encode(p *Packet, buf []byte) []byte {
	for i := 0; i < MinHeaderSize; i++ {
		buf[i] = 0
	}

	if p.Reply {
		buf[0] = byte(OpReply)
	} else {
		buf[0] = byte(OpRequest)
	}
	buf[1] = byte(HTypeEthernet)
	buf[2] = 6
	buf[3] = p.Hops
	binary.BigEndian.PutUint32(buf[4:8], p.XID)
	binary.BigEndian.PutUint16(buf[8:10], p.Secs)
	if p.Broadcast {
		buf[10] = 0x80
	}
	buf[11] = 0

	putIP(buf[12:16], p.CIAddr)
	putIP(buf[16:20], p.YIAddr)
	putIP(buf[20:24], p.SIAddr)
	putIP(buf[24:28], p.GIAddr)
	copy(buf[28:34], p.CHAddr[:])
	// buf[34:236] is the zeroed sname/file region.

	copy(buf[236:240], MagicCookie[:])

	length := MinHeaderSize
	for _, opt := range p.Options {
		length = opt.writeTLV(buf, length)
	}
	buf[length] = byte(OptionCodeEnd)
	length++

	if length < MinPacketSize {
		for i := length; i < MinPacketSize; i++ {
			buf[i] = 0
		}
		length = MinPacketSize
	}

	return buf[:length]
}

func putIP(dst []byte, ip net.IP) {
	if ip == nil {
		return
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return
	}
	copy(dst, ip4)
}
