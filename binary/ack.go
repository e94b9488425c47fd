package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
)

// EngagementAck closes the reply to an engagement result. Tracked lists the
// ships that now carry the XP tracker so the client can mark them.
type EngagementAck struct {
	EngagementID string        // 1 byte length + id
	Tracked      []TrackedShip // 2 byte count
}

type TrackedShip struct {
	MemberID  string    // 1 byte length + id
	LoadoutID uuid.UUID // 16 bytes
	Cloned    bool      // 1 byte
}

func EncodeEngagementAck(a *EngagementAck) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeShortString(buf, a.EngagementID); err != nil {
		return nil, err
	}
	if len(a.Tracked) > math.MaxUint16 {
		return nil, fmt.Errorf("%d tracked ships: %w", len(a.Tracked), ErrStringTooLong)
	}
	binary.Write(buf, binary.LittleEndian, uint16(len(a.Tracked)))
	for _, tr := range a.Tracked {
		if err := writeShortString(buf, tr.MemberID); err != nil {
			return nil, err
		}
		buf.Write(tr.LoadoutID[:])
		var cloned uint8
		if tr.Cloned {
			cloned = 1
		}
		buf.WriteByte(cloned)
	}
	return buf.Bytes(), nil
}

func DecodeEngagementAck(data []byte) (*EngagementAck, error) {
	if len(data) < 3 {
		return nil, ErrDataTooShort
	}
	buf := bytes.NewReader(data)
	id, err := readShortString(buf)
	if err != nil {
		return nil, err
	}
	var count uint16
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return nil, ErrDataTooShort
	}
	a := &EngagementAck{EngagementID: id}
	for i := 0; i < int(count); i++ {
		var tr TrackedShip
		if tr.MemberID, err = readShortString(buf); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(buf, tr.LoadoutID[:]); err != nil {
			return nil, ErrDataTooShort
		}
		cloned, err := buf.ReadByte()
		if err != nil {
			return nil, ErrDataTooShort
		}
		tr.Cloned = cloned == 1
		a.Tracked = append(a.Tracked, tr)
	}
	return a, nil
}
