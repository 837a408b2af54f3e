/*
Package plan holds the subscription tiers and the quota table that gates
searches, saved verses and search history for each tier.
*/
package plan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Plan is a subscription tier.
type Plan string

const (
	Free  Plan = "FREE"
	Basic Plan = "BASIC"
	Pro   Plan = "PRO"
)

// ErrInvalidPlan is returned by Parse for anything outside FREE/BASIC/PRO.
var ErrInvalidPlan = errors.New("invalid plan")

// All lists the tiers in upgrade order.
func All() []Plan {
	return []Plan{Free, Basic, Pro}
}

// Valid reports whether p is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case Free, Basic, Pro:
		return true
	default:
		return false
	}
}

// Deep reports whether the tier gets the larger model and the longer reflection.
func (p Plan) Deep() bool {
	return p == Pro
}

// Parse accepts a tier name in any case.
func Parse(s string) (Plan, error) {
	p := Plan(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlan, s)
	}
	return p, nil
}

// Normalize maps unknown values (e.g. a corrupted stored plan) to Free.
func Normalize(s string) Plan {
	p, err := Parse(s)
	if err != nil {
		return Free
	}
	return p
}

// Unlimited marks a quota without a ceiling.
const Unlimited Limit = -1

// Limit is a numeric ceiling; negative means unbounded.
// It is serialized as JSON null when unbounded.
type Limit int

// Unbounded reports whether the limit has no ceiling.
func (l Limit) Unbounded() bool {
	return l < 0
}

// Allows reports whether one more item fits when n are already used.
func (l Limit) Allows(n int) bool {
	return l.Unbounded() || n < int(l)
}

// Remaining returns how many items are left, or nil when unbounded.
func (l Limit) Remaining(used int) *int {
	if l.Unbounded() {
		return nil
	}
	left := max(int(l)-used, 0)
	return &left
}

func (l Limit) MarshalJSON() ([]byte, error) {
	if l.Unbounded() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(l))), nil
}

func (l *Limit) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*l = Unlimited
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid limit %s: %w", s, err)
	}
	*l = Limit(n)
	return nil
}

// QuotaLimits is the fixed per-tier quota record.
type QuotaLimits struct {
	SearchesPerDay Limit `json:"searchesPerDay"`
	MaxSaved       Limit `json:"maxSaved"`
	MaxHistory     Limit `json:"maxHistory"`
}

var limits = map[Plan]QuotaLimits{
	Free:  {SearchesPerDay: 5, MaxSaved: 5, MaxHistory: 3},
	Basic: {SearchesPerDay: Unlimited, MaxSaved: 50, MaxHistory: 20},
	Pro:   {SearchesPerDay: Unlimited, MaxSaved: Unlimited, MaxHistory: 50},
}

// LimitsFor returns the quota table entry for p. Unknown tiers get the Free limits.
func LimitsFor(p Plan) QuotaLimits {
	if l, ok := limits[p]; ok {
		return l
	}
	return limits[Free]
}

// Truncate keeps the first n entries of a newest-first list.
// The result never shares spare capacity with items.
func Truncate[T any](items []T, n Limit) []T {
	if n.Unbounded() || len(items) <= int(n) {
		return items
	}
	return items[:int(n):int(n)]
}
