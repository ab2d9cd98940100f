package wol

import (
	"bytes"
	"net"
	"testing"
	"time"
)

func TestMagicPacketLayout(t *testing.T) {
	mac, err := ParseMAC("AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}

	packet := MagicPacket(mac)
	if len(packet) != 102 {
		t.Fatalf("expected 102 bytes, got %d", len(packet))
	}
	for i := 0; i < 6; i++ {
		if packet[i] != 0xFF {
			t.Fatalf("byte %d: expected 0xFF, got %#x", i, packet[i])
		}
	}
	want := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	for rep := 0; rep < 16; rep++ {
		got := packet[6+rep*6 : 6+(rep+1)*6]
		if !bytes.Equal(got, want) {
			t.Fatalf("repetition %d: expected % X, got % X", rep, want, got)
		}
	}
}

func TestParseMAC(t *testing.T) {
	if _, err := ParseMAC("AA:BB:CC:DD:EE:FF"); err != nil {
		t.Fatalf("expected valid MAC, got %v", err)
	}
	if _, err := ParseMAC("aa:bb:cc:dd:ee:ff"); err != nil {
		t.Fatalf("expected lowercase to parse, got %v", err)
	}

	bad := []string{
		"AA:BB:CC",                // wrong segment count
		"GG:BB:CC:DD:EE:FF",       // non-hex digit
		"AA:BB:CC:DD:EE:FF:00",    // too many segments
		"AAA:BB:CC:DD:EE:F",       // wrong segment widths
		"AA-BB-CC-DD-EE-FF",       // dash separators
		"aabb.ccdd.eeff",          // dot form
		"",                        // empty
		"AA:BB:CC:DD:EE: F",       // whitespace
		"0xAA:BB:CC:DD:EE:FF",     // prefix junk
		"AA:BB:CC:DD:EE:FF ",      // trailing junk
	}
	for _, s := range bad {
		if _, err := ParseMAC(s); err == nil {
			t.Fatalf("expected %q to fail", s)
		}
	}
}

func TestSendDeliversDatagram(t *testing.T) {
	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer listener.Close()

	mac, err := ParseMAC("01:02:03:04:05:06")
	if err != nil {
		t.Fatalf("ParseMAC: %v", err)
	}
	if err := Send(mac, listener.LocalAddr().String()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	_ = listener.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 256)
	n, _, err := listener.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if !bytes.Equal(buf[:n], MagicPacket(mac)) {
		t.Fatalf("received datagram does not match magic packet")
	}
}
