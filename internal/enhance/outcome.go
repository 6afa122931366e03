package enhance

import (
	"fmt"
	"time"
)

// Kind distinguishes a fully enriched aggregation from the fallback.
type Kind int

const (
	OutcomeEnriched Kind = iota
	OutcomeDegraded
)

const (
	FreshnessRealTime = "real-time"
	FreshnessCached   = "cached"

	EnrichedQuality = 0.95
	DegradedQuality = 0.85
)

func (k Kind) String() string {
	switch k {
	case OutcomeEnriched:
		return "enriched"
	case OutcomeDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "enriched":
		*k = OutcomeEnriched
	case "degraded":
		*k = OutcomeDegraded
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}

// Outcome describes how an aggregation was assembled. Cause is set only for
// degraded outcomes and is never sent to callers.
type Outcome struct {
	Kind         Kind      `json:"outcome"`
	Freshness    string    `json:"dataFreshness"`
	QualityScore float64   `json:"qualityScore"`
	Timestamp    time.Time `json:"enhancementTimestamp"`
	Cause        error     `json:"-"`
}

func (o Outcome) Degraded() bool {
	return o.Kind == OutcomeDegraded
}

func enriched(at time.Time) Outcome {
	return Outcome{
		Kind:         OutcomeEnriched,
		Freshness:    FreshnessRealTime,
		QualityScore: EnrichedQuality,
		Timestamp:    at.UTC(),
	}
}

func degraded(at time.Time, cause error) Outcome {
	return Outcome{
		Kind:         OutcomeDegraded,
		Freshness:    FreshnessCached,
		QualityScore: DegradedQuality,
		Timestamp:    at.UTC(),
		Cause:        cause,
	}
}
