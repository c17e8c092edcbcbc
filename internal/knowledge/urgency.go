package knowledge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Urgency is the ordered severity tier attached to a red flag.
// Comparisons between tiers use the integer rank, never the label.
type Urgency int

const (
	UrgencyMonitor Urgency = iota + 1
	UrgencyRoutine
	UrgencySoon1Week
	UrgencyUrgent24Hr
	UrgencyEmergency911
)

var urgencyLabels = map[Urgency]string{
	UrgencyMonitor:      "MONITOR",
	UrgencyRoutine:      "ROUTINE",
	UrgencySoon1Week:    "SOON_1WEEK",
	UrgencyUrgent24Hr:   "URGENT_24HR",
	UrgencyEmergency911: "EMERGENCY_911",
}

// String returns the wire label of the tier.
func (u Urgency) String() string {
	if label, ok := urgencyLabels[u]; ok {
		return label
	}
	return fmt.Sprintf("Urgency(%d)", int(u))
}

// Valid reports whether u is one of the declared tiers.
func (u Urgency) Valid() bool {
	_, ok := urgencyLabels[u]
	return ok
}

// Terminal reports whether a detection at this tier must stop the pipeline.
func (u Urgency) Terminal() bool {
	return u >= UrgencyUrgent24Hr
}

// Max returns the higher-ranked of the two tiers.
func (u Urgency) Max(other Urgency) Urgency {
	if other > u {
		return other
	}
	return u
}

// ParseUrgency converts a wire label (case-insensitive) into a tier.
func ParseUrgency(s string) (Urgency, error) {
	label := strings.ToUpper(strings.TrimSpace(s))
	for u, l := range urgencyLabels {
		if l == label {
			return u, nil
		}
	}
	return 0, fmt.Errorf("unknown urgency %q", s)
}

func (u Urgency) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

func (u *Urgency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseUrgency(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
