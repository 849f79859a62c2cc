package ports

// AnalysisServer is the interface for the outward-facing analysis surface
type AnalysisServer interface {
	// Start starts the server
	Start() error

	// Stop stops the server
	Stop() error
}
