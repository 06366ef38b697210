// Package a2s implements the client side of the Source/GoldSrc server query
// protocol (A2S_INFO and A2S_PLAYER) over UDP.
package a2s

import (
	"fmt"
	"net"
	"time"
)

const (
	// DefaultTimeout is applied to every send and receive when no timeout is set.
	DefaultTimeout = 5 * time.Second

	// DefaultBufferSize is the receive buffer for one reply datagram.
	DefaultBufferSize uint16 = 4096
)

const (
	singlePacket int32 = -1 // FF FF FF FF
	multiPacket  int32 = -2 // FE FF FF FF

	opInfo   byte = 0x54
	opPlayer byte = 0x55
)

// Client queries a single server endpoint.
// It holds configuration only, every call opens and releases its own socket,
// so a Client may be used from several goroutines at once.
type Client struct {
	// Addr is the resolved UDP endpoint of the server query port.
	Addr *net.UDPAddr

	// Timeout bounds each send and each receive separately.
	Timeout time.Duration

	// BufferSize is the size of the receive buffer.
	BufferSize uint16
}

// New returns a Client for addr with default timeout and buffer size.
func New(addr *net.UDPAddr) *Client {
	return &Client{
		Addr:       addr,
		Timeout:    DefaultTimeout,
		BufferSize: DefaultBufferSize,
	}
}

// QueryInfo requests A2S_INFO from addr. A non-positive timeout means DefaultTimeout.
func QueryInfo(addr *net.UDPAddr, timeout time.Duration) (*Info, error) {
	c := New(addr)
	c.Timeout = timeout
	return c.GetInfo()
}

// QueryPlayers requests the player list from addr. A non-positive timeout means DefaultTimeout.
func QueryPlayers(addr *net.UDPAddr, timeout time.Duration) ([]Player, error) {
	c := New(addr)
	c.Timeout = timeout
	return c.GetPlayers()
}

func (c *Client) open() (*session, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	bufSize := c.BufferSize
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	return dial(c.Addr, timeout, int(bufSize))
}

// readPacketHeader consumes the 4-byte packet marker and returns the header byte.
func readPacketHeader(r *reader) (byte, error) {
	marker, err := r.readInt32()
	if err != nil {
		return 0, err
	}

	switch marker {
	case singlePacket:
	case multiPacket:
		return 0, ErrMultiPacket
	default:
		return 0, fmt.Errorf("unexpected packet marker 0x%08X", uint32(marker))
	}

	return r.readByte()
}
