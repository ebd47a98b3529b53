package dhcpd

import (
	"sync"

	"github.com/foxglove-dhcp/dhcp4d/pkg/dhcpv4"
)

// bufferPool reuses MaxPacketSize byte slices for the receive buffer
// (the send buffer is allocated once per Server). The server loop is single-threaded (§5), so a buffer is
// always returned before the next one is taken; pooling still avoids
// repeated allocation across the life of a long-running server.
var bufferPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, dhcpv4.MaxPacketSize)
	},
}

func getBuffer() []byte {
	return bufferPool.Get().([]byte)
}

func putBuffer(b []byte) {
	for i := range b {
		b[i] = 0
	}
	bufferPool.Put(b)
}
