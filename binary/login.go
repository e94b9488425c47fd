package binary

import (
	"bytes"
	"fmt"
	"strings"
)

type LoginRequest struct {
	Nickname string
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Nickname) == "" {
		return fmt.Errorf("error.validation.nickname.required")
	}
	return nil
}

func EncodeLoginMessage(r *LoginRequest) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := writeShortString(buf, r.Nickname); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeLoginMessage(data []byte) (*LoginRequest, error) {
	if len(data) < 1 {
		return nil, ErrDataTooShort
	}

	nickname, err := readShortString(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &LoginRequest{Nickname: nickname}, nil
}
