package session

// Decision is what a protected view does for a given session state
type Decision int

const (
	// DecisionLoading shows the "checking authentication" state
	DecisionLoading Decision = iota
	// DecisionRedirect sends the client to the entry view
	DecisionRedirect
	// DecisionAllow renders the protected view
	DecisionAllow
)

const (
	// EntryPath is the login view
	EntryPath = "/"
	// HomePath is where a signed-in client lands after login
	HomePath = "/dashboard"
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionAllow:
		return "allow"
	}
	return "invalid"
}

// Gate maps a session state to the protected view decision
func Gate(s State) Decision {
	switch s {
	case StateAuthenticated:
		return DecisionAllow
	case StateUnauthenticated:
		return DecisionRedirect
	default:
		return DecisionLoading
	}
}
