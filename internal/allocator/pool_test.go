package allocator

import (
	"net"
	"testing"
)

func TestPoolAllocateSequential(t *testing.T) {
	p, err := NewPool(net.IPv4(192, 168, 0, 180), net.IPv4(192, 168, 0, 182))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if p.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", p.Size())
	}

	var got []net.IP
	for i := 0; i < 3; i++ {
		ip := p.Allocate()
		if ip == nil {
			t.Fatalf("Allocate() #%d returned nil", i)
		}
		got = append(got, ip)
	}
	if p.Allocate() != nil {
		t.Error("Allocate() on a full pool should return nil")
	}
	for _, ip := range got {
		if !p.IsAllocated(ip) {
			t.Errorf("IsAllocated(%s) = false, want true", ip)
		}
	}
}

func TestPoolReleaseFreesSlot(t *testing.T) {
	p, err := NewPool(net.IPv4(10, 0, 0, 1), net.IPv4(10, 0, 0, 1))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	ip := p.Allocate()
	if ip == nil {
		t.Fatal("Allocate() returned nil on a fresh single-address pool")
	}
	if !p.Release(ip) {
		t.Fatal("Release() = false, want true")
	}
	if p.IsAllocated(ip) {
		t.Error("IsAllocated after Release = true, want false")
	}
	if p.Allocate() == nil {
		t.Error("Allocate() after Release returned nil, want the freed address")
	}
}

func TestPoolAllocateSpecificRejectsOutOfRange(t *testing.T) {
	p, err := NewPool(net.IPv4(192, 168, 0, 100), net.IPv4(192, 168, 0, 110))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	if p.AllocateSpecific(net.IPv4(192, 168, 0, 200)) {
		t.Error("AllocateSpecific out of range = true, want false")
	}
	if !p.AllocateSpecific(net.IPv4(192, 168, 0, 105)) {
		t.Error("AllocateSpecific in range = false, want true")
	}
	if p.AllocateSpecific(net.IPv4(192, 168, 0, 105)) {
		t.Error("AllocateSpecific on already-allocated address = true, want false")
	}
}

func TestPoolUtilization(t *testing.T) {
	p, err := NewPool(net.IPv4(192, 168, 0, 1), net.IPv4(192, 168, 0, 4))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	p.Allocate()
	if got := p.Utilization(); got != 25 {
		t.Errorf("Utilization() = %v, want 25", got)
	}
}
