package dhcpv4

import (
	"net"
	"testing"
)

func TestDecodeOptionIPFields(t *testing.T) {
	tests := []struct {
		name string
		code OptionCode
		data []byte
	}{
		{"ServerIdentifier", OptionCodeServerIdentifier, []byte{192, 168, 1, 1}},
		{"RequestedIPAddress", OptionCodeRequestedIPAddress, []byte{10, 0, 0, 5}},
		{"SubnetMask", OptionCodeSubnetMask, []byte{255, 255, 255, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt, err := decodeOption(tt.code, tt.data)
			if err != nil {
				t.Fatalf("decodeOption error: %v", err)
			}
			if opt.Code() != tt.code {
				t.Errorf("Code() = %v, want %v", opt.Code(), tt.code)
			}
		})
	}
}

func TestDecodeOptionIPFieldWrongLength(t *testing.T) {
	_, err := decodeOption(OptionCodeServerIdentifier, []byte{1, 2, 3})
	if err == nil {
		t.Fatal("expected error for 3-byte IP option, got nil")
	}
	if de := err.(*DecodeError); de.Kind != ErrTruncatedPacket {
		t.Errorf("Kind = %v, want ErrTruncatedPacket", de.Kind)
	}
}

func TestDecodeOptionHostNameNonUTF8(t *testing.T) {
	_, err := decodeOption(OptionCodeHostName, []byte{0xff, 0xfe})
	if err == nil {
		t.Fatal("expected error for non-UTF-8 hostname, got nil")
	}
	if de := err.(*DecodeError); de.Kind != ErrNonUtf8String {
		t.Errorf("Kind = %v, want ErrNonUtf8String", de.Kind)
	}
}

func TestDecodeOptionMessageTypeInvalid(t *testing.T) {
	_, err := decodeOption(OptionCodeDHCPMessageType, []byte{0})
	if err == nil {
		t.Fatal("expected error for message type 0, got nil")
	}
	if de := err.(*DecodeError); de.Kind != ErrUnrecognizedMessageType {
		t.Errorf("Kind = %v, want ErrUnrecognizedMessageType", de.Kind)
	}

	_, err = decodeOption(OptionCodeDHCPMessageType, []byte{9})
	if err == nil {
		t.Fatal("expected error for message type 9, got nil")
	}
}

func TestDecodeOptionRouterList(t *testing.T) {
	opt, err := decodeOption(OptionCodeRouter, []byte{192, 168, 1, 1, 192, 168, 1, 2})
	if err != nil {
		t.Fatalf("decodeOption error: %v", err)
	}
	r := opt.(RouterOption)
	if len(r.IPs) != 2 {
		t.Fatalf("len(IPs) = %d, want 2", len(r.IPs))
	}
	if !r.IPs[0].Equal(net.IPv4(192, 168, 1, 1)) || !r.IPs[1].Equal(net.IPv4(192, 168, 1, 2)) {
		t.Errorf("IPs = %v, want [192.168.1.1 192.168.1.2]", r.IPs)
	}
}

func TestDecodeOptionRouterListBadLength(t *testing.T) {
	for _, data := range [][]byte{{}, {1, 2, 3}} {
		if _, err := decodeOption(OptionCodeRouter, data); err == nil {
			t.Errorf("data=%v: expected error, got nil", data)
		}
	}
}

func TestDecodeOptionUnknownIsRaw(t *testing.T) {
	opt, err := decodeOption(77, []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("decodeOption error: %v", err)
	}
	raw, ok := opt.(RawOption)
	if !ok {
		t.Fatalf("type = %T, want RawOption", opt)
	}
	if raw.Code() != 77 {
		t.Errorf("Code() = %v, want 77", raw.Code())
	}
}

func TestDecodeOptionParameterRequestList(t *testing.T) {
	opt, err := decodeOption(OptionCodeParameterRequestList, []byte{1, 3, 6, 51})
	if err != nil {
		t.Fatalf("decodeOption error: %v", err)
	}
	prl := opt.(ParameterRequestListOption)
	want := []OptionCode{1, 3, 6, 51}
	if len(prl.Codes) != len(want) {
		t.Fatalf("len(Codes) = %d, want %d", len(prl.Codes), len(want))
	}
	for i, c := range want {
		if prl.Codes[i] != c {
			t.Errorf("Codes[%d] = %v, want %v", i, prl.Codes[i], c)
		}
	}
}

func TestTitleKnownAndUnknown(t *testing.T) {
	if got := Title(OptionCodeSubnetMask); got != "Subnet Mask" {
		t.Errorf("Title(1) = %q, want %q", got, "Subnet Mask")
	}
	if got := Title(254); got != "Unknown (254)" {
		t.Errorf("Title(254) = %q, want %q", got, "Unknown (254)")
	}
}

func TestOptionWriteTLVOffsets(t *testing.T) {
	buf := make([]byte, 16)
	end := MessageTypeOption{Type: MessageTypeAck}.writeTLV(buf, 0)
	if end != 3 {
		t.Fatalf("end = %d, want 3", end)
	}
	if buf[0] != byte(OptionCodeDHCPMessageType) || buf[1] != 1 || buf[2] != byte(MessageTypeAck) {
		t.Errorf("buf[0:3] = %v, want [53 1 5]", buf[0:3])
	}
}
