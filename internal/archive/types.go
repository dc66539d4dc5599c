package archive

import (
	"errors"
	"time"

	"github.com/vosarka/oriel-resonance-circle-sub000/internal/connectivity"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/interference"
	"github.com/vosarka/oriel-resonance-circle-sub000/internal/projection"
)

// ErrNotFound is returned when no reading matches a lookup.
var ErrNotFound = errors.New("reading not found")

// #region entry

// Entry is the indexed row of one archived reading, without its body.
type Entry struct {
	ID        string                   `json:"id"`
	Subject   string                   `json:"subject"`
	CreatedAt time.Time                `json:"created_at"`
	Coherence int                      `json:"coherence"`
	Trend     projection.Trend         `json:"trend"`
	Pattern   interference.PatternType `json:"pattern"`
	Role      connectivity.Role        `json:"role"`
}

// #endregion entry
