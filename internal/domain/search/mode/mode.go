package mode

// Mode is the fallback plan chosen for a request.
type Mode string

// Plan modes.
const (
	// Default relaxes region strictness in a single attempt.
	Default Mode = "default"
	// Landing widens a category landing page from city to region to everywhere.
	Landing Mode = "landing"
	Strict  Mode = "strict"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Default || m == Landing || m == Strict
}
