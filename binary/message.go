package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"fleetxp/types"
)

var (
	ErrDataTooShort  = errors.New("data too short")
	ErrFrameTooLarge = errors.New("frame too large")
	ErrStringTooLong = errors.New("string too long")
)

// MaxFrameSize bounds a single frame; engagement reports of large fleets fit well below it.
const MaxFrameSize = 16 << 20

type Message struct {
	Type  types.MessageType
	Data  []byte
	Error string
}

func EncodeRawMessage(msg Message) ([]byte, error) {
	buf := new(bytes.Buffer)

	// 1. Type (1 byte)
	if err := binary.Write(buf, binary.LittleEndian, msg.Type); err != nil {
		return nil, err
	}

	// 2. Data (4 byte length + data)
	dataLen := uint32(len(msg.Data))
	if err := binary.Write(buf, binary.LittleEndian, dataLen); err != nil {
		return nil, err
	}
	if _, err := buf.Write(msg.Data); err != nil {
		return nil, err
	}

	// 3. Error (2 byte length + string data)
	errorBytes := []byte(msg.Error)
	if len(errorBytes) > 0xFFFF {
		return nil, fmt.Errorf("error text: %w", ErrStringTooLong)
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(len(errorBytes))); err != nil {
		return nil, err
	}
	if _, err := buf.Write(errorBytes); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func DecodeRawMessage(data []byte) (*Message, error) {
	buf := bytes.NewReader(data)

	var msgType types.MessageType
	if err := binary.Read(buf, binary.LittleEndian, &msgType); err != nil {
		return nil, short(err)
	}

	var dataLen uint32
	if err := binary.Read(buf, binary.LittleEndian, &dataLen); err != nil {
		return nil, short(err)
	}
	if int64(dataLen) > int64(buf.Len()) {
		return nil, fmt.Errorf("message data: %w", ErrDataTooShort)
	}

	dataBytes := make([]byte, dataLen)
	if _, err := io.ReadFull(buf, dataBytes); err != nil {
		return nil, short(err)
	}

	var errorLen uint16
	if err := binary.Read(buf, binary.LittleEndian, &errorLen); err != nil {
		return nil, short(err)
	}

	errorBytes := make([]byte, errorLen)
	if _, err := io.ReadFull(buf, errorBytes); err != nil {
		return nil, short(err)
	}

	return &Message{
		Type:  msgType,
		Data:  dataBytes,
		Error: string(errorBytes),
	}, nil
}

// WriteFrame writes msg prefixed with its 4 byte little endian length in a single write.
func WriteFrame(w io.Writer, msg Message) error {
	rawData, err := EncodeRawMessage(msg)
	if err != nil {
		return err
	}

	frame := make([]byte, 4+len(rawData))
	binary.LittleEndian.PutUint32(frame[:4], uint32(len(rawData)))
	copy(frame[4:], rawData)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// ReadFrame reads one length prefixed frame. io.EOF is returned unwrapped
// when the peer closed the stream between frames.
func ReadFrame(r io.Reader) (*Message, error) {
	lenBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, lenBuf); err != nil {
		return nil, err
	}
	messageLen := binary.LittleEndian.Uint32(lenBuf)
	if messageLen > MaxFrameSize {
		return nil, fmt.Errorf("%d bytes: %w", messageLen, ErrFrameTooLarge)
	}

	data := make([]byte, messageLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read message data: %w", err)
	}
	return DecodeRawMessage(data)
}

func short(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrDataTooShort
	}
	return err
}

func writeShortString(buf *bytes.Buffer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("%q: %w", s, ErrStringTooLong)
	}
	buf.WriteByte(uint8(len(s)))
	buf.WriteString(s)
	return nil
}

func readShortString(buf *bytes.Reader) (string, error) {
	n, err := buf.ReadByte()
	if err != nil {
		return "", ErrDataTooShort
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(buf, b); err != nil {
		return "", ErrDataTooShort
	}
	return string(b), nil
}
