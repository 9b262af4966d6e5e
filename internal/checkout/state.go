package checkout

// State is the terminal outcome of one checkout phase. The redirect to the
// payment provider splits an attempt into two independent runs: Begin ends at
// ProfileMissing, Redirected, or Failed; Resolve ends at Success, Cancelled,
// or Failed. Nothing in memory survives between the two.
type State string

const (
	StateProfileMissing State = "profile_missing"
	StateRedirected     State = "redirected"
	StateSuccess        State = "success"
	StateCancelled      State = "cancelled"
	StateFailed         State = "failed"
)

// BeginResult reports where the initiation run ended.
type BeginResult struct {
	State       State  `json:"state"`
	OrderID     string `json:"order_id,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ResolveResult reports where the return-trip run ended.
type ResolveResult struct {
	State   State  `json:"state"`
	OrderID string `json:"order_id,omitempty"`
	Message string `json:"message,omitempty"`
}
