package pulseprint

// Disclaimer is displayed next to every analysis
const Disclaimer = "Note: This is an AI aid, not a final medical diagnosis."

// ServerOptions are server options
type ServerOptions struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	Username string `toml:"username"`
}

// Metric represents a dashboard metric card
type Metric struct {
	Delta string `json:"delta"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// DefaultMetrics returns the metrics displayed once a recording has been received
func DefaultMetrics() []Metric {
	return []Metric{
		{
			Delta: "Clean",
			Label: "Signal Status",
			Value: "Received",
		},
		{
			Delta: "Active",
			Label: "Analysis Mode",
			Value: "Clinical",
		},
	}
}
