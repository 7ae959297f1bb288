package api

// EvalOutput is the top-level schema of the JSON file the evaluation CLI
// writes with -o. Only the fields the gate reports on are mapped.
type EvalOutput struct {
	EvalID       string      `json:"evalId"`
	Results      EvalResults `json:"results"`
	ShareableURL string      `json:"shareableUrl"`
}

// EvalResults nests the aggregate stats of a run.
type EvalResults struct {
	Stats OutputStats `json:"stats"`
}

// OutputStats counts evaluation outcomes.
type OutputStats struct {
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
	Errors    int `json:"errors"`
}
