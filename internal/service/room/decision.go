package room

// Pure accept/reject decisions for playback events, separated from the
// mutation and broadcast plumbing so the rules are testable on their own.

type playVerdict int

const (
	// playAccept mutates state and broadcasts unconditionally, flagged as a
	// forced update.
	playAccept playVerdict = iota
	// playAcceptThrottled mutates state; the broadcast is subject to the
	// debounce gate.
	playAcceptThrottled
	// playReject leaves state untouched; the sender alone is paused back to
	// the authoritative position.
	playReject
)

func decidePlay(isAdmin, adminStartedPlayback bool) playVerdict {
	if isAdmin {
		return playAccept
	}

	if adminStartedPlayback {
		return playAcceptThrottled
	}

	return playReject
}

// decideAuthoritative reports whether a pause or seek from this sender
// mutates shared state. Admin events always do; anyone's do while no admin
// is connected.
func decideAuthoritative(isAdmin bool, adminConnected bool) bool {
	return isAdmin || !adminConnected
}
