package normalize

import (
	"strings"
	"sync"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/lysyi3m/legistar-comb/internal/civic"
	"github.com/lysyi3m/legistar-comb/internal/jurisdiction"
)

type Outcome int

const (
	Passthrough Outcome = iota
	Cancelled
	LocationAmended
	Skip
)

func (o Outcome) String() string {
	switch o {
	case Cancelled:
		return "cancelled"
	case LocationAmended:
		return "location_amended"
	case Skip:
		return "skip"
	default:
		return "passthrough"
	}
}

// RawStatus is the upstream status pair: the default status and an optional
// free-text detail phrase.
type RawStatus struct {
	Default string
	Detail  string
}

// RawStatusFrom builds a RawStatus from the [default, detail] tuple produced
// by the fetch layer.
func RawStatusFrom(values []string) RawStatus {
	var s RawStatus
	if len(values) > 0 {
		s.Default = values[0]
	}
	if len(values) > 1 {
		s.Detail = values[1]
	}
	return s
}

type Resolution struct {
	Outcome      Outcome
	Status       string
	Location     string
	Phrase       string // rule phrase that decided the outcome
	Unrecognized bool   // detail matched no rule and needs review
}

type statusRule struct {
	name    string
	outcome Outcome
	match   func(folded string) (string, bool)
}

// StatusReconciler applies an ordered list of phrase rules to event status
// detail text. The first matching rule wins.
type StatusReconciler struct {
	rules []statusRule

	mu              sync.Mutex // guards matcher, which keeps per-match state
	matcher         *ahocorasick.Matcher
	containsPhrases []string
}

func NewStatusReconciler(cfg jurisdiction.StatusConfig) *StatusReconciler {
	r := &StatusReconciler{}

	for _, phrase := range cfg.CancelContains {
		if p := fold(phrase); p != "" {
			r.containsPhrases = append(r.containsPhrases, p)
		}
	}
	if len(r.containsPhrases) > 0 {
		r.matcher = ahocorasick.NewStringMatcher(r.containsPhrases)
	}

	marker := fold(cfg.LocationMarker)

	r.rules = []statusRule{
		{name: "cancel_contains", outcome: Cancelled, match: r.matchContains},
		{name: "cancel_exact", outcome: Cancelled, match: exactMatcher(cfg.CancelExact)},
		{name: "resumed_exact", outcome: Passthrough, match: exactMatcher(cfg.ResumedExact)},
		{name: "amended_exact", outcome: Passthrough, match: exactMatcher(cfg.AmendedExact)},
		{name: "location_marker", outcome: LocationAmended, match: func(folded string) (string, bool) {
			if marker == "" || !strings.Contains(folded, marker) {
				return "", false
			}
			return marker, true
		}},
		{name: "skip_exact", outcome: Skip, match: exactMatcher(cfg.SkipExact)},
	}

	return r
}

// Run resolves status for an event currently located at location.
func (r *StatusReconciler) Run(status RawStatus, location string) Resolution {
	res := Resolution{
		Outcome:  Passthrough,
		Status:   status.Default,
		Location: location,
	}

	detail := strings.TrimSpace(status.Detail)
	if detail == "" {
		return res
	}

	folded := fold(detail)
	for _, rule := range r.rules {
		phrase, ok := rule.match(folded)
		if !ok {
			continue
		}

		res.Outcome = rule.outcome
		res.Phrase = phrase

		switch rule.outcome {
		case Cancelled:
			res.Status = civic.StatusCancelled
		case LocationAmended:
			res.Location = detail + ", " + location
		}
		return res
	}

	res.Phrase = detail
	res.Unrecognized = true
	return res
}

func (r *StatusReconciler) matchContains(folded string) (string, bool) {
	if r.matcher == nil {
		return "", false
	}

	r.mu.Lock()
	hits := r.matcher.Match([]byte(folded))
	r.mu.Unlock()

	if len(hits) == 0 {
		return "", false
	}

	// Report the earliest configured phrase among the hits.
	first := hits[0]
	for _, h := range hits[1:] {
		if h < first {
			first = h
		}
	}
	return r.containsPhrases[first], true
}

func exactMatcher(phrases []string) func(string) (string, bool) {
	set := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		set[fold(p)] = struct{}{}
	}
	return func(folded string) (string, bool) {
		if _, ok := set[folded]; ok {
			return folded, true
		}
		return "", false
	}
}
