package indexing

// State is a step of the per-file indexing state machine.
type State string

const (
	StateUploaded    State = "uploaded"
	StateExtracting  State = "extracting"
	StateSummarizing State = "summarizing"
	StateEmbedding   State = "embedding"
	StateIndexed     State = "indexed"
	// StateIndexFailed is terminal and reachable from any step.
	StateIndexFailed State = "index_failed"
)

func (s State) Terminal() bool { return s == StateIndexed || s == StateIndexFailed }
