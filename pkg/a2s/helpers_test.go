package a2s

import (
	"bytes"
	"encoding/binary"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// packet builds reply datagrams for tests.
type packet struct {
	bytes.Buffer
}

func newPacket(header byte) *packet {
	p := &packet{}
	p.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF, header})
	return p
}

func (p *packet) u8(b ...byte) *packet {
	p.Write(b)
	return p
}

func (p *packet) cstr(s string) *packet {
	p.WriteString(s)
	p.WriteByte(0)
	return p
}

func (p *packet) le(v any) *packet {
	_ = binary.Write(&p.Buffer, binary.LittleEndian, v)
	return p
}

// infoPacket returns a Source A2S_INFO reply up to and including the EDF byte.
func infoPacket(edf byte) *packet {
	return newPacket(0x49).
		u8(17).
		cstr("Test Server").
		cstr("de_dust2").
		cstr("cstrike").
		cstr("Counter-Strike: Source").
		le(uint16(240)).
		u8(5, 24, 1).
		u8('d', 'l', 0, 1).
		cstr("1.0.0.71").
		u8(edf)
}

// fakeServer is a loopback UDP server recording every request it receives.
type fakeServer struct {
	conn     *net.UDPConn
	mu       sync.Mutex
	requests [][]byte
}

func newFakeServer(t *testing.T, handle func(req []byte) []byte) *fakeServer {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	srv := &fakeServer{conn: conn}
	done := make(chan struct{})

	go func() {
		defer close(done)

		buf := make([]byte, 1500)
		for {
			n, from, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}

			req := append([]byte(nil), buf[:n]...)
			srv.mu.Lock()
			srv.requests = append(srv.requests, req)
			srv.mu.Unlock()

			if resp := handle(req); resp != nil {
				_, _ = conn.WriteToUDP(resp, from)
			}
		}
	}()

	t.Cleanup(func() {
		_ = conn.Close()
		<-done
	})

	return srv
}

func (s *fakeServer) addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

func (s *fakeServer) received() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([][]byte(nil), s.requests...)
}
