// Package wol builds and sends Wake-on-LAN magic packets.
package wol

import (
	"fmt"
	"net"
	"strings"
)

// DefaultBroadcastAddr is the limited-broadcast address on the discard
// port, the conventional Wake-on-LAN target.
const DefaultBroadcastAddr = "255.255.255.255:9"

const (
	macLen    = 6
	packetLen = macLen + 16*macLen // 6x 0xFF followed by 16 repetitions of the MAC
)

// MAC is a hardware address in its 6-byte binary form.
type MAC [macLen]byte

// ParseMAC accepts exactly six colon-separated two-digit hexadecimal
// octets ("AA:BB:CC:DD:EE:FF"). net.ParseMAC is deliberately not used:
// it admits dash and dot separators and EUI-64 forms that the wake
// protocol does not speak.
func ParseMAC(s string) (MAC, error) {
	var mac MAC
	parts := strings.Split(s, ":")
	if len(parts) != macLen {
		return MAC{}, fmt.Errorf("wol: malformed MAC address %q", s)
	}
	for i, part := range parts {
		if len(part) != 2 {
			return MAC{}, fmt.Errorf("wol: malformed MAC address %q", s)
		}
		hi, ok1 := hexDigit(part[0])
		lo, ok2 := hexDigit(part[1])
		if !ok1 || !ok2 {
			return MAC{}, fmt.Errorf("wol: malformed MAC address %q", s)
		}
		mac[i] = hi<<4 | lo
	}
	return mac, nil
}

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func (m MAC) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", m[0], m[1], m[2], m[3], m[4], m[5])
}

// MagicPacket returns the 102-byte broadcast payload for mac: six bytes
// of 0xFF followed by the MAC repeated 16 times.
func MagicPacket(mac MAC) []byte {
	packet := make([]byte, 0, packetLen)
	for i := 0; i < macLen; i++ {
		packet = append(packet, 0xFF)
	}
	for i := 0; i < 16; i++ {
		packet = append(packet, mac[:]...)
	}
	return packet
}

// Send emits the magic packet for mac as a single UDP datagram to addr
// from an ephemeral local port. Fire and forget: there is no
// acknowledgement, and a failure here is non-fatal to the caller's
// session.
func Send(mac MAC, addr string) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return fmt.Errorf("wol: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(MagicPacket(mac)); err != nil {
		return fmt.Errorf("wol: send magic packet: %w", err)
	}
	return nil
}
