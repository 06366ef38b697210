package a2s

import (
	"fmt"
	"time"
)

// ServerType is the server-type tag of an A2S_INFO reply.
type ServerType byte

// Known server types.
const (
	ServerTypeDedicated    ServerType = 'd'
	ServerTypeNonDedicated ServerType = 'l'
	ServerTypeProxy        ServerType = 'p'
)

func (t ServerType) String() string {
	switch t {
	case ServerTypeDedicated:
		return "dedicated"
	case ServerTypeNonDedicated:
		return "non-dedicated"
	case ServerTypeProxy:
		return "proxy"
	default:
		return unknownTag(byte(t))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t ServerType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Environment is the operating system tag of an A2S_INFO reply.
type Environment byte

// Known environments. Older servers report Mac as 'o'.
const (
	EnvironmentLinux   Environment = 'l'
	EnvironmentWindows Environment = 'w'
	EnvironmentMac     Environment = 'm'
	EnvironmentMacOSX  Environment = 'o'
)

func (e Environment) String() string {
	switch e {
	case EnvironmentLinux:
		return "Linux"
	case EnvironmentWindows:
		return "Windows"
	case EnvironmentMac, EnvironmentMacOSX:
		return "Mac"
	default:
		return unknownTag(byte(e))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Environment) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Visibility tells whether the server requires a password.
type Visibility byte

// Known visibility values.
const (
	VisibilityPublic  Visibility = 0
	VisibilityPrivate Visibility = 1
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	default:
		return unknownTag(byte(v))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Visibility) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// VAC is the anti-cheat tag of an A2S_INFO reply.
type VAC byte

// Known anti-cheat values.
const (
	VACUnsecured VAC = 0
	VACSecured   VAC = 1
)

func (v VAC) String() string {
	switch v {
	case VACUnsecured:
		return "unsecured"
	case VACSecured:
		return "secured"
	default:
		return unknownTag(byte(v))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v VAC) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// ExtraDataFlag is the bitmask announcing the optional trailing fields of an A2S_INFO reply.
type ExtraDataFlag byte

// Extra data bits.
const (
	EDFGameID    ExtraDataFlag = 0x01
	EDFSteamID   ExtraDataFlag = 0x10
	EDFKeywords  ExtraDataFlag = 0x20
	EDFSpectator ExtraDataFlag = 0x40
	EDFPort      ExtraDataFlag = 0x80
)

// Has reports whether every bit of f is set.
func (e ExtraDataFlag) Has(f ExtraDataFlag) bool {
	return e&f == f
}

func unknownTag(b byte) string {
	return fmt.Sprintf("unknown(0x%02x)", b)
}

// Info is a snapshot of server metadata returned by A2S_INFO.
type Info struct {
	// betteralign:ignore

	Name          string        `json:"name"`
	Map           string        `json:"map"`
	Folder        string        `json:"folder"`
	Game          string        `json:"game"`
	Version       string        `json:"version"`
	SpectatorName string        `json:"spectator_name,omitempty"`
	Keywords      string        `json:"keywords,omitempty"`
	SteamID       uint64        `json:"steam_id,omitempty"`
	GameID        uint64        `json:"game_id,omitempty"`
	AppID         uint16        `json:"app_id"`
	Port          uint16        `json:"port,omitempty"`
	SpectatorPort uint16        `json:"spectator_port,omitempty"`
	Header        byte          `json:"-"`
	Protocol      byte          `json:"protocol"`
	Players       byte          `json:"players"`
	MaxPlayers    byte          `json:"max_players"`
	Bots          byte          `json:"bots"`
	ServerType    ServerType    `json:"server_type"`
	Environment   Environment   `json:"environment"`
	Visibility    Visibility    `json:"visibility"`
	VAC           VAC           `json:"vac"`
	EDF           ExtraDataFlag `json:"edf"`
}

// Player is one connected player returned by A2S_PLAYER.
type Player struct {
	Name     string  `json:"name"`
	Score    int32   `json:"score"`
	Duration float32 `json:"duration"`
}

// Connected returns how long the player has been connected.
func (p Player) Connected() time.Duration {
	return time.Duration(float64(p.Duration) * float64(time.Second))
}
