package report

import (
	"strconv"
	"strings"
	"sync"

	"fleetxp/game/combat"
)

// Paragraph is one block of text shown to the player. Highlights are
// substrings the client renders emphasized.
type Paragraph struct {
	Text       string   `json:"text"`
	Highlights []string `json:"highlights,omitempty"`
}

// Dialog collects XP gain paragraphs for one engagement.
type Dialog struct {
	mu         sync.Mutex
	paragraphs []Paragraph
}

func NewDialog() *Dialog {
	return &Dialog{}
}

func (d *Dialog) ReportGain(member *combat.Member, xp float64, qualifier string) {
	shown := displayXP(xp)

	var sb strings.Builder
	sb.WriteString("The ")
	sb.WriteString(member.ShipName)
	var highlights []string
	if member.Loadout != nil {
		sb.WriteString(", ")
		sb.WriteString(member.Loadout.HullNameWithDashClass())
		highlights = append(highlights, member.Loadout.HullName)
	}
	sb.WriteString(" gained ")
	sb.WriteString(shown)
	sb.WriteString(" XP")
	if qualifier != "" {
		sb.WriteString(" ")
		sb.WriteString(qualifier)
	}
	highlights = append(highlights, shown)

	d.add(Paragraph{Text: sb.String(), Highlights: highlights})
}

func (d *Dialog) ReportCoalescedGain(members []*combat.Member, xp float64, qualifier string) {
	if len(members) == 0 {
		return
	}
	shown := displayXP(xp)

	var sb strings.Builder
	sb.WriteString("The following ships gained ")
	sb.WriteString(shown)
	sb.WriteString(" xp ")
	sb.WriteString(qualifier)
	sb.WriteString(":")
	highlights := []string{shown}
	for _, m := range members {
		sb.WriteString("\n    -")
		sb.WriteString(m.ShipName)
		if m.Loadout != nil {
			sb.WriteString(", ")
			sb.WriteString(m.Loadout.HullNameWithDashClass())
			highlights = append(highlights, m.Loadout.HullName)
		}
	}

	d.add(Paragraph{Text: sb.String(), Highlights: highlights})
}

// Paragraphs returns the collected paragraphs in report order.
func (d *Dialog) Paragraphs() []Paragraph {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Paragraph, len(d.paragraphs))
	copy(out, d.paragraphs)
	return out
}

func (d *Dialog) add(p Paragraph) {
	d.mu.Lock()
	d.paragraphs = append(d.paragraphs, p)
	d.mu.Unlock()
}

// displayXP truncates toward zero; the player only ever sees whole XP.
func displayXP(xp float64) string {
	return strconv.Itoa(int(xp))
}
