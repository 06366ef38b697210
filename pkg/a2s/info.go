package a2s

import (
	"fmt"
)

var infoRequest = append([]byte{0xFF, 0xFF, 0xFF, 0xFF, opInfo}, "Source Engine Query\x00"...)

// extraField decodes the trailing fields announced by one extra data bit.
type extraField struct {
	decode func(r *reader, info *Info) error
	flag   ExtraDataFlag
}

// extraFields is ordered as the fields appear on the wire, not by bit value.
var extraFields = [...]extraField{
	{flag: EDFPort, decode: func(r *reader, info *Info) (err error) {
		info.Port, err = r.readUint16()
		return err
	}},
	{flag: EDFSteamID, decode: func(r *reader, info *Info) (err error) {
		info.SteamID, err = r.readUint64()
		return err
	}},
	{flag: EDFSpectator, decode: func(r *reader, info *Info) (err error) {
		if info.SpectatorPort, err = r.readUint16(); err != nil {
			return err
		}
		info.SpectatorName, err = r.readCString()
		return err
	}},
	{flag: EDFKeywords, decode: func(r *reader, info *Info) (err error) {
		info.Keywords, err = r.readCString()
		return err
	}},
	{flag: EDFGameID, decode: func(r *reader, info *Info) (err error) {
		info.GameID, err = r.readUint64()
		return err
	}},
}

// GetInfo sends A2S_INFO and decodes the reply.
func (c *Client) GetInfo() (*Info, error) {
	s, err := c.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	reply, err := s.exchange(infoRequest)
	if err != nil {
		return nil, err
	}

	info, err := decodeInfo(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInfo, err)
	}

	return info, nil
}

// decodeInfo parses a complete A2S_INFO reply datagram. It never returns a partial Info.
func decodeInfo(data []byte) (*Info, error) {
	r := newReader(data)

	var (
		info Info
		err  error
	)

	if info.Header, err = readPacketHeader(r); err != nil {
		return nil, err
	}
	if info.Protocol, err = r.readByte(); err != nil {
		return nil, err
	}

	for _, s := range []*string{&info.Name, &info.Map, &info.Folder, &info.Game} {
		if *s, err = r.readCString(); err != nil {
			return nil, err
		}
	}

	if info.AppID, err = r.readUint16(); err != nil {
		return nil, err
	}

	for _, b := range []*byte{&info.Players, &info.MaxPlayers, &info.Bots} {
		if *b, err = r.readByte(); err != nil {
			return nil, err
		}
	}

	// tags: server type, environment, visibility, vac
	tags, err := r.next(4)
	if err != nil {
		return nil, err
	}
	info.ServerType = ServerType(tags[0])
	info.Environment = Environment(tags[1])
	info.Visibility = Visibility(tags[2])
	info.VAC = VAC(tags[3])

	if info.Version, err = r.readCString(); err != nil {
		return nil, err
	}

	edf, err := r.readByte()
	if err != nil {
		return nil, err
	}
	info.EDF = ExtraDataFlag(edf)

	if err := decodeExtraData(r, &info); err != nil {
		return nil, err
	}

	return &info, nil
}

// decodeExtraData reads exactly the fields whose bit is set in info.EDF.
func decodeExtraData(r *reader, info *Info) error {
	for _, f := range extraFields {
		if !info.EDF.Has(f.flag) {
			continue
		}
		if err := f.decode(r, info); err != nil {
			return err
		}
	}

	return nil
}
