package constants

// Outcome is the terminal state of one pipeline invocation.
type Outcome string

// Stable values (these exact strings appear in logs).
const (
	OutcomeCommitted  Outcome = "COMMITTED"   // both rows inserted and committed
	OutcomeNoDocument Outcome = "NO_DOCUMENT" // analyzer returned zero documents
	OutcomeFailed     Outcome = "FAILED"      // terminal failure, zero persisted side effects
)
