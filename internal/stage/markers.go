package stage

// Fixed comment markers. SelfEchoPrefix identifies notes the system
// itself posted; the acknowledgement body must begin with it so the
// gate never reacts to our own acknowledgements.
const (
	SelfEchoPrefix = "🤖 OpenCode"
	ackFormat      = "🤖 OpenCode started working on `%s`..."
	resultsFormat  = "🤖 **OpenCode Results**\n\n%s"
	errorFormat    = "❌ **OpenCode Error**\n\nPipeline failed: %s"

	noResultsPlaceholder  = "No results generated"
	noResponsePlaceholder = "No response generated."
)
