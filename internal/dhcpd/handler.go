package dhcpd

import "github.com/foxglove-dhcp/dhcp4d/pkg/dhcpv4"

// Handler is the single collaborator contract the Server Loop delivers
// decoded packets to. HandleRequest is invoked once per successfully
// decoded datagram; it may call Server.Reply and/or Server.Send any
// number of times, including zero. There is no return value — the loop
// never consults the handler to decide whether to keep serving.
type Handler interface {
	HandleRequest(server *Server, packet *dhcpv4.Packet)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(server *Server, packet *dhcpv4.Packet)

func (f HandlerFunc) HandleRequest(server *Server, packet *dhcpv4.Packet) {
	f(server, packet)
}
