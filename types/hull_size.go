package types

import "fmt"

type HullSize uint8

const (
	HullSizeFighter HullSize = iota
	HullSizeFrigate
	HullSizeDestroyer
	HullSizeCruiser
	HullSizeCapital
)

var hullSizeNames = map[HullSize]string{
	HullSizeFighter:   "fighter",
	HullSizeFrigate:   "frigate",
	HullSizeDestroyer: "destroyer",
	HullSizeCruiser:   "cruiser",
	HullSizeCapital:   "capital",
}

func (h HullSize) String() string {
	if name, ok := hullSizeNames[h]; ok {
		return name
	}
	return fmt.Sprintf("hullsize(%d)", uint8(h))
}

func (h HullSize) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HullSize) UnmarshalText(text []byte) error {
	for k, v := range hullSizeNames {
		if v == string(text) {
			*h = k
			return nil
		}
	}
	return fmt.Errorf("unknown hull size %q", text)
}
