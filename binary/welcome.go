package binary

import (
	"bytes"
	"encoding/binary"
)

type WelcomeMessage struct {
	ConnectionID uint32
	Text         string
}

func EncodeWelcomeMessage(m *WelcomeMessage) ([]byte, error) {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, m.ConnectionID)
	if err := writeShortString(buf, m.Text); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeWelcomeMessage(data []byte) (*WelcomeMessage, error) {
	if len(data) < 5 {
		return nil, ErrDataTooShort
	}
	buf := bytes.NewReader(data)
	m := &WelcomeMessage{}
	if err := binary.Read(buf, binary.LittleEndian, &m.ConnectionID); err != nil {
		return nil, ErrDataTooShort
	}
	text, err := readShortString(buf)
	if err != nil {
		return nil, err
	}
	m.Text = text
	return m, nil
}
