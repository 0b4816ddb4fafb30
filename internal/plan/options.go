package plan

// ConvertOptions controls how a plan file is converted into runnable steps
type ConvertOptions struct {
	// DefaultRequests is the wave size for steps that omit a request count
	DefaultRequests int

	// DefaultMixedNew is the independent-half size for mixed steps that omit it
	DefaultMixedNew int

	// DefaultMixedSame is the shared-half size for mixed steps that omit it
	DefaultMixedSame int
}

// DefaultOptions returns the default conversion options
func DefaultOptions() ConvertOptions {
	return ConvertOptions{
		DefaultRequests:  5,
		DefaultMixedNew:  3,
		DefaultMixedSame: 3,
	}
}
