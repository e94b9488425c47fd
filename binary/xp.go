package binary

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// XPReport is one paragraph of the post battle XP report.
type XPReport struct {
	Text       string   // 4 byte length + text
	Highlights []string // 1 byte count, each 1 byte length + text
}

type ShipXPRequest struct {
	MemberID string // 1 byte length + id
}

type ShipXP struct {
	MemberID string  // 1 byte length + id
	XP       float64 // 8 byte IEEE 754
}

func EncodeXPReport(r *XPReport) ([]byte, error) {
	buf := new(bytes.Buffer)

	binary.Write(buf, binary.LittleEndian, uint32(len(r.Text)))
	buf.WriteString(r.Text)

	if len(r.Highlights) > 255 {
		return nil, fmt.Errorf("%d highlights: %w", len(r.Highlights), ErrStringTooLong)
	}
	buf.WriteByte(uint8(len(r.Highlights)))
	for _, h := range r.Highlights {
		if err := writeShortString(buf, h); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func DecodeXPReport(data []byte) (*XPReport, error) {
	if len(data) < 5 {
		return nil, ErrDataTooShort
	}
	buf := bytes.NewReader(data)

	var textLen uint32
	if err := binary.Read(buf, binary.LittleEndian, &textLen); err != nil {
		return nil, ErrDataTooShort
	}
	if int64(textLen) > int64(buf.Len()) {
		return nil, ErrDataTooShort
	}
	text := make([]byte, textLen)
	if _, err := io.ReadFull(buf, text); err != nil {
		return nil, ErrDataTooShort
	}

	count, err := buf.ReadByte()
	if err != nil {
		return nil, ErrDataTooShort
	}
	r := &XPReport{Text: string(text)}
	for i := 0; i < int(count); i++ {
		h, err := readShortString(buf)
		if err != nil {
			return nil, err
		}
		r.Highlights = append(r.Highlights, h)
	}
	return r, nil
}

func EncodeShipXPRequest(r *ShipXPRequest) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeShortString(buf, r.MemberID); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeShipXPRequest(data []byte) (*ShipXPRequest, error) {
	if len(data) < 1 {
		return nil, ErrDataTooShort
	}
	id, err := readShortString(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("error.validation.member_id.required")
	}
	return &ShipXPRequest{MemberID: id}, nil
}

func EncodeShipXP(m *ShipXP) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeShortString(buf, m.MemberID); err != nil {
		return nil, err
	}
	binary.Write(buf, binary.LittleEndian, math.Float64bits(m.XP))
	return buf.Bytes(), nil
}

func DecodeShipXP(data []byte) (*ShipXP, error) {
	if len(data) < 9 {
		return nil, ErrDataTooShort
	}
	buf := bytes.NewReader(data)
	id, err := readShortString(buf)
	if err != nil {
		return nil, err
	}
	var bits uint64
	if err := binary.Read(buf, binary.LittleEndian, &bits); err != nil {
		return nil, ErrDataTooShort
	}
	return &ShipXP{MemberID: id, XP: math.Float64frombits(bits)}, nil
}
