package dhcpv4

import "strconv"

// optionTitles maps well-known option codes to their RFC 2132 name, for
// display and diagnostics only. No mutable state, no I/O.
var optionTitles = map[OptionCode]string{
	1:   "Subnet Mask",
	2:   "Time Offset",
	3:   "Router",
	4:   "Time Server",
	5:   "Name Server",
	6:   "Domain Name Server",
	7:   "Log Server",
	8:   "Cookie Server",
	9:   "LPR Server",
	10:  "Impress Server",
	11:  "Resource Location Server",
	12:  "Host Name",
	13:  "Boot File Size",
	14:  "Merit Dump File",
	15:  "Domain Name",
	16:  "Swap Server",
	17:  "Root Path",
	18:  "Extensions Path",
	19:  "IP Forwarding Enable/Disable",
	20:  "Non-Local Source Routing Enable/Disable",
	21:  "Policy Filter",
	22:  "Maximum Datagram Reassembly Size",
	23:  "Default IP Time-to-live",
	24:  "Path MTU Aging Timeout",
	25:  "Path MTU Plateau Table",
	26:  "Interface MTU",
	27:  "All Subnets are Local",
	28:  "Broadcast Address",
	29:  "Perform Mask Discovery",
	30:  "Mask Supplier",
	31:  "Perform Router Discovery",
	32:  "Router Solicitation Address",
	33:  "Static Route",
	34:  "Trailer Encapsulation",
	35:  "ARP Cache Timeout",
	36:  "Ethernet Encapsulation",
	37:  "TCP Default TTL",
	38:  "TCP Keepalive Interval",
	39:  "TCP Keepalive Garbage",
	40:  "Network Information Service Domain",
	41:  "Network Information Servers",
	42:  "Network Time Protocol Servers",
	43:  "Vendor Specific Information",
	44:  "NetBIOS over TCP/IP Name Server",
	45:  "NetBIOS over TCP/IP Datagram Distribution Server",
	46:  "NetBIOS over TCP/IP Node Type",
	47:  "NetBIOS over TCP/IP Scope",
	48:  "X Window System Font Server",
	49:  "X Window System Display Manager",
	50:  "Requested IP Address",
	51:  "IP Address Lease Time",
	52:  "Overload",
	53:  "DHCP Message Type",
	54:  "Server Identifier",
	55:  "Parameter Request List",
	56:  "Message",
	57:  "Maximum DHCP Message Size",
	58:  "Renewal (T1) Time Value",
	59:  "Rebinding (T2) Time Value",
	60:  "Vendor Class Identifier",
	61:  "Client-identifier",
	64:  "Network Information Service+ Domain",
	65:  "Network Information Service+ Servers",
	66:  "TFTP Server Name",
	67:  "Bootfile Name",
	68:  "Mobile IP Home Agent",
	69:  "Simple Mail Transport Protocol (SMTP) Server",
	70:  "Post Office Protocol (POP3) Server",
	71:  "Network News Transport Protocol (NNTP) Server",
	72:  "Default World Wide Web (WWW) Server",
	73:  "Default Finger Server",
	74:  "Default Internet Relay Chat (IRC) Server",
	75:  "StreetTalk Server",
	76:  "StreetTalk Directory Assistance (STDA) Server",
	77:  "User Class",
	82:  "Relay Agent Information",
	93:  "Client Architecture",
	100: "TZ-POSIX String",
	101: "TZ-Database String",
	118: "Subnet Selection",
	121: "Classless Route Format",
}

// Title returns the canonical human name for a well-known option code, or
// "Unknown (<n>)" when the code is not in the registry.
func Title(code OptionCode) string {
	if t, ok := optionTitles[code]; ok {
		return t
	}
	return "Unknown (" + strconv.Itoa(int(code)) + ")"
}
