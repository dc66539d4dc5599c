package eval

// #region eval-metric

// Metric is one bounded quantity of a reading and whether it held.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result

// Result is the outcome of checking one reading.
type Result struct {
	Passed  bool     `json:"passed"`
	Metrics []Metric `json:"metrics"`
	Reason  string   `json:"reason"`
}

// Failed returns the metrics that fell outside their range, in check order.
func (r Result) Failed() []Metric {
	var out []Metric
	for _, m := range r.Metrics {
		if !m.Pass {
			out = append(out, m)
		}
	}
	return out
}

// #endregion eval-result
