package a2s

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// session owns one ephemeral UDP socket for the duration of a query call.
// Every round trip is exactly one send followed by one receive.
type session struct {
	conn    *net.UDPConn
	timeout time.Duration
	bufSize int
}

// dial connects the socket to addr, so the kernel drops datagrams from any
// other source. A server answering from another address times out.
func dial(addr *net.UDPAddr, timeout time.Duration, bufSize int) (*session, error) {
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &session{conn: conn, timeout: timeout, bufSize: bufSize}, nil
}

// Close releases the socket.
func (s *session) Close() error {
	return s.conn.Close()
}

// exchange sends req and waits for a single reply datagram.
// The deadline is applied to the send and the receive independently.
func (s *session) exchange(req []byte) ([]byte, error) {
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil {
		return nil, err
	}
	if _, err := s.conn.Write(req); err != nil {
		return nil, transportError("send request", err)
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, s.bufSize)
	n, err := s.conn.Read(buf)
	if err != nil {
		return nil, transportError("read response", err)
	}

	return buf[:n], nil
}

func transportError(op string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	return fmt.Errorf("%s: %w", op, err)
}
