package dhcpd

import (
	"net"
	"testing"

	"github.com/foxglove-dhcp/dhcp4d/pkg/dhcpv4"
)

func TestFilterOptionsByPRLPinsMandatoryHeader(t *testing.T) {
	opts := []dhcpv4.Option{
		dhcpv4.MessageTypeOption{Type: dhcpv4.MessageTypeOffer},
		dhcpv4.ServerIdentifierOption{IP: net.IPv4(192, 168, 0, 76)},
		dhcpv4.IPAddressLeaseTimeOption{Seconds: 7200},
		dhcpv4.SubnetMaskOption{IP: net.IPv4(255, 255, 255, 0)},
		dhcpv4.RouterOption{IPs: []net.IP{net.IPv4(192, 168, 0, 254)}},
		dhcpv4.DomainNameServerOption{IPs: []net.IP{net.IPv4(8, 8, 8, 8), net.IPv4(4, 4, 4, 4)}},
	}
	prl := []dhcpv4.OptionCode{1, 3, 6, 51}

	got := filterOptionsByPRL(opts, prl)

	wantCodes := []dhcpv4.OptionCode{
		dhcpv4.OptionCodeDHCPMessageType,
		dhcpv4.OptionCodeServerIdentifier,
		dhcpv4.OptionCodeIPAddressLeaseTime,
		dhcpv4.OptionCodeSubnetMask,
		dhcpv4.OptionCodeRouter,
		dhcpv4.OptionCodeDomainNameServer,
	}
	if len(got) != len(wantCodes) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(wantCodes))
	}
	for i, code := range wantCodes {
		if got[i].Code() != code {
			t.Errorf("got[%d].Code() = %v, want %v", i, got[i].Code(), code)
		}
	}
}

func TestFilterOptionsByPRLDropsUnrequested(t *testing.T) {
	opts := []dhcpv4.Option{
		dhcpv4.MessageTypeOption{Type: dhcpv4.MessageTypeOffer},
		dhcpv4.ServerIdentifierOption{IP: net.IPv4(192, 168, 0, 76)},
		dhcpv4.HostNameOption{Name: "unrequested"},
	}
	got := filterOptionsByPRL(opts, []dhcpv4.OptionCode{})

	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2 (mandatory header only)", len(got))
	}
	for _, o := range got {
		if o.Code() == dhcpv4.OptionCodeHostName {
			t.Error("HostName option survived filtering despite not being mandatory or requested")
		}
	}
}

func TestFilterOptionsByPRLLeaseTimeSurvivesWithoutPRLEntry(t *testing.T) {
	opts := []dhcpv4.Option{
		dhcpv4.MessageTypeOption{Type: dhcpv4.MessageTypeOffer},
		dhcpv4.ServerIdentifierOption{IP: net.IPv4(192, 168, 0, 76)},
		dhcpv4.IPAddressLeaseTimeOption{Seconds: 3600},
	}
	got := filterOptionsByPRL(opts, []dhcpv4.OptionCode{1, 3})

	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	if got[2].Code() != dhcpv4.OptionCodeIPAddressLeaseTime {
		t.Errorf("got[2].Code() = %v, want IPAddressLeaseTime", got[2].Code())
	}
}

func TestBuildReplyNakZeroesAddresses(t *testing.T) {
	req := &dhcpv4.Packet{
		XID:    0xCAFEBABE,
		CIAddr: net.IPv4(10, 0, 0, 5),
		CHAddr: [6]byte{1, 2, 3, 4, 5, 6},
	}
	reply := buildReply(req, dhcpv4.MessageTypeNak, net.IPv4(192, 168, 0, 76), net.IPv4zero,
		[]dhcpv4.Option{dhcpv4.MessageOption{Text: "no lease for you"}})

	if !reply.CIAddr.Equal(net.IPv4zero) {
		t.Errorf("CIAddr = %s, want 0.0.0.0", reply.CIAddr)
	}
	if !reply.YIAddr.Equal(net.IPv4zero) {
		t.Errorf("YIAddr = %s, want 0.0.0.0", reply.YIAddr)
	}
	mt, err := reply.MessageType()
	if err != nil || mt != dhcpv4.MessageTypeNak {
		t.Errorf("MessageType = %v, %v; want Nak, nil", mt, err)
	}
	if reply.Options[0].Code() != dhcpv4.OptionCodeDHCPMessageType ||
		reply.Options[1].Code() != dhcpv4.OptionCodeServerIdentifier ||
		reply.Options[2].Code() != dhcpv4.OptionCodeMessage {
		t.Errorf("Options = %v, want [DHCPMessageType ServerIdentifier Message]", reply.Options)
	}
}

func TestBuildReplyAckCopiesCIAddr(t *testing.T) {
	req := &dhcpv4.Packet{
		XID:    1,
		CIAddr: net.IPv4(192, 168, 0, 181),
		CHAddr: [6]byte{1, 2, 3, 4, 5, 6},
	}
	reply := buildReply(req, dhcpv4.MessageTypeAck, net.IPv4(192, 168, 0, 76), net.IPv4(192, 168, 0, 181), nil)

	if !reply.CIAddr.Equal(req.CIAddr) {
		t.Errorf("CIAddr = %s, want %s", reply.CIAddr, req.CIAddr)
	}
	if reply.XID != req.XID {
		t.Errorf("XID = %d, want %d", reply.XID, req.XID)
	}
	if !reply.Reply {
		t.Error("Reply = false, want true")
	}
}
