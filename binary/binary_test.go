package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"fleetxp/types"

	"github.com/google/uuid"
)

func TestFrameRoundTrip(t *testing.T) {
	var wire bytes.Buffer
	sent := []Message{
		{Type: types.LoginMessage, Data: []byte{3, 'a', 'd', 'm'}},
		{Type: types.UnauthorizedMessage, Error: "error.unauthorized"},
	}
	for _, msg := range sent {
		if err := WriteFrame(&wire, msg); err != nil {
			t.Fatalf("write frame: %v", err)
		}
	}

	for i, want := range sent {
		got, err := ReadFrame(&wire)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if got.Type != want.Type || got.Error != want.Error || !bytes.Equal(got.Data, want.Data) {
			t.Fatalf("frame %d: expected %+v, got %+v", i, want, got)
		}
	}
	if _, err := ReadFrame(&wire); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF after the last frame, got %v", err)
	}
}

func TestDecodeRawMessageTruncated(t *testing.T) {
	raw, err := EncodeRawMessage(Message{Type: types.SystemMessage, Data: []byte("hello"), Error: "x"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, n := range []int{0, 3, 7, len(raw) - 1} {
		if _, err := DecodeRawMessage(raw[:n]); !errors.Is(err, ErrDataTooShort) {
			t.Fatalf("cut at %d: expected ErrDataTooShort, got %v", n, err)
		}
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	header := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := ReadFrame(bytes.NewReader(header)); !errors.Is(err, ErrFrameTooLarge) {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestLoginMessage(t *testing.T) {
	data, err := EncodeLoginMessage(&LoginRequest{Nickname: "admiral"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	req, err := DecodeLoginMessage(data)
	if err != nil || req.Nickname != "admiral" {
		t.Fatalf("unexpected %+v (%v)", req, err)
	}
	if _, err := DecodeLoginMessage([]byte{5, 'a'}); !errors.Is(err, ErrDataTooShort) {
		t.Fatalf("expected ErrDataTooShort, got %v", err)
	}
	if err := (&LoginRequest{}).Validate(); err == nil {
		t.Fatalf("empty nickname must not validate")
	}
}

func TestXPReportEncoding(t *testing.T) {
	in := &XPReport{
		Text:       "The ISS Resolute, Eagle-class gained 99 XP from combat.",
		Highlights: []string{"Eagle", "99"},
	}
	data, err := EncodeXPReport(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := DecodeXPReport(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Text != in.Text || len(out.Highlights) != 2 || out.Highlights[1] != "99" {
		t.Fatalf("unexpected report %+v", out)
	}
}

func TestShipXPEncoding(t *testing.T) {
	data, err := EncodeShipXP(&ShipXP{MemberID: "fm-12", XP: 1234.5})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := DecodeShipXP(data)
	if err != nil || m.MemberID != "fm-12" || m.XP != 1234.5 {
		t.Fatalf("unexpected %+v (%v)", m, err)
	}

	if _, err := DecodeShipXPRequest([]byte{0}); err == nil {
		t.Fatalf("an empty member id must be rejected")
	}
	long := string(bytes.Repeat([]byte("x"), 300))
	if _, err := EncodeShipXPRequest(&ShipXPRequest{MemberID: long}); !errors.Is(err, ErrStringTooLong) {
		t.Fatalf("expected ErrStringTooLong, got %v", err)
	}
}

func TestWelcomeMessage(t *testing.T) {
	data, err := EncodeWelcomeMessage(&WelcomeMessage{ConnectionID: 42, Text: "Welcome"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	m, err := DecodeWelcomeMessage(data)
	if err != nil || m.ConnectionID != 42 || m.Text != "Welcome" {
		t.Fatalf("unexpected %+v (%v)", m, err)
	}
}

func TestEngagementAckEncoding(t *testing.T) {
	loadout := uuid.New()
	data, err := EncodeEngagementAck(&EngagementAck{
		EngagementID: "b7f1",
		Tracked: []TrackedShip{
			{MemberID: "fm-1", LoadoutID: loadout, Cloned: true},
			{MemberID: "fm-2"},
		},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	a, err := DecodeEngagementAck(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.EngagementID != "b7f1" || len(a.Tracked) != 2 {
		t.Fatalf("unexpected %+v", a)
	}
	if a.Tracked[0].LoadoutID != loadout || !a.Tracked[0].Cloned || a.Tracked[1].Cloned {
		t.Fatalf("unexpected tracked ships %+v", a.Tracked)
	}

	if _, err := DecodeEngagementAck(data[:len(data)-1]); !errors.Is(err, ErrDataTooShort) {
		t.Fatalf("expected ErrDataTooShort, got %v", err)
	}
}
