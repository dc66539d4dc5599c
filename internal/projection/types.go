package projection

// ProjectionPoints is the length of the display projection.
const ProjectionPoints = 7

// #region trend

// Trend is the direction of coherence between two readings.
type Trend string

const (
	TrendAscending  Trend = "ascending"
	TrendStable     Trend = "stable"
	TrendDescending Trend = "descending"
)

// #endregion trend

// #region config

// ProjectorConfig holds the trajectory coefficients.
type ProjectorConfig struct {
	TrendBand      int     // |current - previous| must exceed this to leave stable
	MomentumGain   float64 // momentum = (current - previous) * gain
	ProjectionGain float64 // projected = current + momentum * gain
	AnchorPoint    int     // projection index that lands on the projected score
}

// DefaultProjectorConfig returns the standard coefficients.
func DefaultProjectorConfig() ProjectorConfig {
	return ProjectorConfig{
		TrendBand:      5,
		MomentumGain:   2,
		ProjectionGain: 0.5,
		AnchorPoint:    3,
	}
}

// #endregion config

// #region trajectory

// Trajectory is the coherence trend and short forward projection.
type Trajectory struct {
	Current        int                   `json:"current"`
	Previous       *int                  `json:"previous,omitempty"`
	Trend          Trend                 `json:"trend"`
	Momentum       float64               `json:"momentum"`        // [-100, 100]
	ProjectedScore float64               `json:"projected_score"` // [0, 100]
	Projection     [ProjectionPoints]int `json:"projection"`      // each [0, 100]
	KeyInfluences  []string              `json:"key_influences"`
}

// #endregion trajectory
