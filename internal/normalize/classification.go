package normalize

import (
	"fmt"
	"strings"

	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
	"golang.org/x/text/cases"
)

// VoteOptionOther is used for positions whose label is not in the table.
const VoteOptionOther = "other"

// Tables holds the hand-maintained lookups of one jurisdiction. They are
// copied on construction and never modified afterwards.
type Tables struct {
	billTypes   map[string]civic.BillClassification
	actions     map[string]string
	voteOptions map[string]string
	voteResults map[string]string
}

func NewTables(bills jurisdiction.BillConfig) (*Tables, error) {
	t := &Tables{
		billTypes:   make(map[string]civic.BillClassification, len(bills.Types)),
		actions:     make(map[string]string, len(bills.Actions)),
		voteOptions: make(map[string]string, len(bills.VoteOptions)),
		voteResults: make(map[string]string, len(bills.VoteResults)),
	}

	for label, code := range bills.Types {
		c := civic.BillClassification(code)
		if code == "" {
			c = civic.BillTypeNone
		}
		if !c.Valid() {
			return nil, fmt.Errorf("invalid bill type code for %q: %s", label, code)
		}
		t.billTypes[label] = c
	}

	for label, code := range bills.Actions {
		t.actions[label] = code
	}
	for label, code := range bills.VoteOptions {
		t.voteOptions[fold(label)] = code
	}
	for label, code := range bills.VoteResults {
		t.voteResults[fold(label)] = code
	}

	return t, nil
}

// BillType maps an upstream type label to a bill classification. Labels
// known to carry no classification map to none.
func (t *Tables) BillType(label string) (civic.BillClassification, error) {
	c, ok := t.billTypes[label]
	if !ok {
		return "", &UnknownClassificationError{Table: "bill type", Label: label}
	}
	return c, nil
}

// Action maps an action description to an action classification code. An
// empty code with a nil error means the label is known but uncategorized.
func (t *Tables) Action(label string) (string, error) {
	code, ok := t.actions[label]
	if !ok {
		return "", &UnknownClassificationError{Table: "action", Label: label}
	}
	return code, nil
}

func (t *Tables) VoteOption(label string) (string, error) {
	code, ok := t.voteOptions[fold(label)]
	if !ok {
		return VoteOptionOther, &UnknownClassificationError{Table: "vote option", Label: label}
	}
	return code, nil
}

func (t *Tables) VoteResult(label string) (string, error) {
	code, ok := t.voteResults[fold(label)]
	if !ok {
		return strings.ToLower(strings.TrimSpace(label)), &UnknownClassificationError{Table: "vote result", Label: label}
	}
	return code, nil
}

// fold returns the caseless form of s used for phrase comparisons.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
