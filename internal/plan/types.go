package plan

// File represents the on-disk YAML shape of a scenario plan
type File struct {
	// Pause overrides the settle time between steps, as a duration string
	// like "2s". Empty keeps the configured pause.
	Pause string `yaml:"pause,omitempty"`
	// Steps lists the scenarios to run, in order.
	Steps []StepSpec `yaml:"steps"`
}

// StepSpec describes a single scenario step
type StepSpec struct {
	// Scenario is one of "independent", "shared", or "mixed".
	Scenario string `yaml:"scenario"`
	// Requests sizes the wave for independent and shared steps.
	Requests int `yaml:"requests,omitempty"`
	// New and Same size the two partitions of a mixed step.
	New  int `yaml:"new,omitempty"`
	Same int `yaml:"same,omitempty"`
}
