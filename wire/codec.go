package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnknownTag is returned by Decode when the tag byte does not match any
// message, and by DecodeClientMessage and DecodeServerMessage when it does
// not match a message of the reader's expected direction.
var ErrUnknownTag = errors.New("wire: unknown tag")

// Encode writes m to w in its wire format.
func Encode(w io.Writer, m Message) error {
	e := &encoder{w: w}
	e.writeU8(byte(m.Tag))
	switch m.Tag {
	case TagJoin:
		e.writeStr8(m.Name)
	case TagReady, TagLeave, TagShutdown:
		// empty payload
	case TagTileExchange:
		e.writeU8(byte(len(m.TileIDs)))
		for _, id := range m.TileIDs {
			e.writeU8(id)
		}
	case TagPlaceTiles:
		e.writeU8(byte(len(m.Placements)))
		for _, p := range m.Placements {
			e.writeU8(p.Position)
			e.writeU8(p.TileID)
			e.writeOptStr(p.Letter)
		}
	case TagChat, TagActionRejected, TagNotification:
		e.writeStr16(m.Text)
	case TagJoinOk:
		e.writeU8(m.SelfID)
		e.writeU8(byte(len(m.Players)))
		for _, p := range m.Players {
			e.writeU8(p.ID)
			e.writeU8(bool01(p.Ready))
			e.writeStr8(p.Name)
		}
	case TagPlayerJoined:
		e.writeU8(m.PlayerID)
		e.writeStr8(m.Name)
	case TagPlayerLeft, TagPlayerReady:
		e.writeU8(m.PlayerID)
	case TagStartTurn:
		e.writeU8(m.TurnID)
		e.writeU8(m.TilesLeft)
		e.writeU8(byte(len(m.Rack)))
		for _, rt := range m.Rack {
			e.writeU8(rt.TileID)
			e.writeU8(rt.Points)
			e.writeOptStr(rt.Letter)
		}
		e.writeU8(byte(len(m.TileCounts)))
		for _, tc := range m.TileCounts {
			e.writeU8(tc.ID)
			e.writeU8(tc.Count)
		}
	case TagEndTurn:
		e.writeU8(m.PlayerID)
		e.writeI16(m.Score)
		e.writeU8(byte(len(m.Placed)))
		for _, p := range m.Placed {
			e.writeU8(p.Position)
			e.writeU8(p.Points)
			e.writeStr8(p.Letter)
		}
	case TagEndGame:
		e.writeU8(byte(len(m.Scores)))
		for _, s := range m.Scores {
			e.writeU8(s.ID)
			e.writeI16(s.Score)
		}
	case TagPlayerChat:
		e.writeU8(m.PlayerID)
		e.writeStr16(m.Text)
	default:
		return fmt.Errorf("wire: encode: %w: %v", ErrUnknownTag, m.Tag)
	}
	return e.err
}

// Decode reads one message from r. The tag and embedded length prefixes
// drive exactly how many further bytes are read; no other framing is used.
func Decode(r *bufio.Reader) (Message, error) {
	d := &decoder{r: r}
	tag := Tag(d.readU8())
	if d.err != nil {
		return Message{}, d.err
	}
	m := Message{Tag: tag}
	switch tag {
	case TagJoin:
		m.Name = d.readStr8()
	case TagReady, TagLeave, TagShutdown:
		// empty payload
	case TagTileExchange:
		n := d.readU8()
		m.TileIDs = make([]uint8, n)
		for i := range m.TileIDs {
			m.TileIDs[i] = d.readU8()
		}
	case TagPlaceTiles:
		n := d.readU8()
		m.Placements = make([]Placement, n)
		for i := range m.Placements {
			m.Placements[i] = Placement{
				Position: d.readU8(),
				TileID:   d.readU8(),
				Letter:   d.readOptStr(),
			}
		}
	case TagChat, TagActionRejected, TagNotification:
		m.Text = d.readStr16()
	case TagJoinOk:
		m.SelfID = d.readU8()
		n := d.readU8()
		m.Players = make([]PlayerInfo, n)
		for i := range m.Players {
			m.Players[i] = PlayerInfo{
				ID:    d.readU8(),
				Ready: d.readU8() != 0,
				Name:  d.readStr8(),
			}
		}
	case TagPlayerJoined:
		m.PlayerID = d.readU8()
		m.Name = d.readStr8()
	case TagPlayerLeft, TagPlayerReady:
		m.PlayerID = d.readU8()
	case TagStartTurn:
		m.TurnID = d.readU8()
		m.TilesLeft = d.readU8()
		n := d.readU8()
		m.Rack = make([]RackTile, n)
		for i := range m.Rack {
			m.Rack[i] = RackTile{
				TileID: d.readU8(),
				Points: d.readU8(),
				Letter: d.readOptStr(),
			}
		}
		cn := d.readU8()
		m.TileCounts = make([]TileCount, cn)
		for i := range m.TileCounts {
			m.TileCounts[i] = TileCount{ID: d.readU8(), Count: d.readU8()}
		}
	case TagEndTurn:
		m.PlayerID = d.readU8()
		m.Score = d.readI16()
		n := d.readU8()
		m.Placed = make([]PlacedTile, n)
		for i := range m.Placed {
			m.Placed[i] = PlacedTile{
				Position: d.readU8(),
				Points:   d.readU8(),
				Letter:   d.readStr8(),
			}
		}
	case TagEndGame:
		n := d.readU8()
		m.Scores = make([]PlayerScore, n)
		for i := range m.Scores {
			m.Scores[i] = PlayerScore{ID: d.readU8(), Score: d.readI16()}
		}
	case TagPlayerChat:
		m.PlayerID = d.readU8()
		m.Text = d.readStr16()
	default:
		return Message{}, fmt.Errorf("wire: decode: %w: %v", ErrUnknownTag, tag)
	}
	if d.err != nil {
		return Message{}, d.err
	}
	return m, nil
}

// DecodeClientMessage decodes a message a server reads from a client,
// rejecting any tag outside the client->server range.
func DecodeClientMessage(r *bufio.Reader) (Message, error) {
	m, err := Decode(r)
	if err != nil {
		return Message{}, err
	}
	if m.Tag > TagChat {
		return Message{}, fmt.Errorf("wire: decode client message: %w: %v", ErrUnknownTag, m.Tag)
	}
	return m, nil
}

// DecodeServerMessage decodes a message a client reads from the server,
// rejecting any tag outside the server->client range.
func DecodeServerMessage(r *bufio.Reader) (Message, error) {
	m, err := Decode(r)
	if err != nil {
		return Message{}, err
	}
	if m.Tag < TagJoinOk {
		return Message{}, fmt.Errorf("wire: decode server message: %w: %v", ErrUnknownTag, m.Tag)
	}
	return m, nil
}

func bool01(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// encoder accumulates the first write error so callers can chain writes
// without checking every call, then inspect e.err once at the end.
type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) writeU8(b byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write([]byte{b})
}

func (e *encoder) writeI16(v int16) {
	if e.err != nil {
		return
	}
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	_, e.err = e.w.Write(buf[:])
}

func (e *encoder) writeStr(s string, lenWidth int) {
	if e.err != nil {
		return
	}
	switch lenWidth {
	case 1:
		e.writeU8(byte(len(s)))
	case 2:
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], uint16(len(s)))
		if e.err == nil {
			_, e.err = e.w.Write(buf[:])
		}
	}
	if e.err == nil && len(s) > 0 {
		_, e.err = e.w.Write([]byte(s))
	}
}

func (e *encoder) writeStr8(s string) {
	e.writeStr(s, 1)
}

func (e *encoder) writeStr16(s string) {
	e.writeStr(s, 2)
}

// writeOptStr writes a u8 length (0 meaning absent) followed by that many bytes.
func (e *encoder) writeOptStr(s string) {
	e.writeStr8(s)
}

// decoder reads fixed-format fields from a buffered reader, accumulating
// the first read error.
type decoder struct {
	r   *bufio.Reader
	err error
}

func (d *decoder) readU8() byte {
	if d.err != nil {
		return 0
	}
	b, err := d.r.ReadByte()
	if err != nil {
		d.err = err
		return 0
	}
	return b
}

func (d *decoder) readI16() int16 {
	if d.err != nil {
		return 0
	}
	var buf [2]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		d.err = err
		return 0
	}
	return int16(binary.BigEndian.Uint16(buf[:]))
}

func (d *decoder) readStrN(n int) string {
	if d.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		d.err = err
		return ""
	}
	return string(buf)
}

func (d *decoder) readStr8() string {
	n := int(d.readU8())
	return d.readStrN(n)
}

func (d *decoder) readStr16() string {
	if d.err != nil {
		return ""
	}
	var buf [2]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		d.err = err
		return ""
	}
	n := int(binary.BigEndian.Uint16(buf[:]))
	return d.readStrN(n)
}

// readOptStr reads a u8 length, where 0 means absent, otherwise that many bytes.
func (d *decoder) readOptStr() string {
	return d.readStr8()
}
