package types

import "fmt"

// Outcome is how a deployed member left the engagement.
type Outcome uint8

const (
	OutcomeDeployed Outcome = iota
	OutcomeRetreated
	OutcomeDisabled
	OutcomeDestroyed
)

var outcomeNames = map[Outcome]string{
	OutcomeDeployed:  "deployed",
	OutcomeRetreated: "retreated",
	OutcomeDisabled:  "disabled",
	OutcomeDestroyed: "destroyed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// Lost reports whether the member was knocked out of the fight.
func (o Outcome) Lost() bool {
	return o == OutcomeDisabled || o == OutcomeDestroyed
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for k, v := range outcomeNames {
		if v == string(text) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}
