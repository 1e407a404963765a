package client

import (
	"sync"
	"time"

	"github.com/syncroom/server/internal/service/room"
)

// driftThreshold is the position error below which the reconciler leaves the
// local player alone. Seeking on every update would make playback stutter.
const driftThreshold = 1.0

const (
	stateSettleWindow = 500 * time.Millisecond
	videoSettleWindow = time.Second
)

// Reconciler applies authoritative playback commands to the local player and
// keeps the resulting local events from echoing back to the server. Every
// inbound command opens a settle window; local state changes inside it are
// treated as caused by the command itself and suppressed.
type Reconciler struct {
	player LocalPlayer

	mu                   sync.Mutex
	isAdmin              bool
	adminStartedPlayback bool
	settleUntil          time.Time
	now                  func() time.Time
}

func NewReconciler(player LocalPlayer, isAdmin bool) *Reconciler {
	return &Reconciler{
		player:  player,
		isAdmin: isAdmin,
		now:     time.Now,
	}
}

func (r *Reconciler) settle(window time.Duration) {
	until := r.now().Add(window)
	if until.After(r.settleUntil) {
		r.settleUntil = until
	}
}

func (r *Reconciler) settling() bool {
	return r.now().Before(r.settleUntil)
}

// compensate converts a position stamped at a server timestamp into the
// position it should be at now, assuming playback continued in transit.
func (r *Reconciler) compensate(position float64, timestamp int64) float64 {
	if timestamp == 0 {
		return position
	}

	elapsed := float64(r.now().UnixMilli()-timestamp) / 1000
	if elapsed < 0 {
		return position
	}

	return position + elapsed
}

func (r *Reconciler) seekIfDrifted(target float64, force bool) {
	drift := r.player.CurrentTime() - target
	if force || drift > driftThreshold || drift < -driftThreshold {
		r.player.SeekTo(target)
	}
}

func (r *Reconciler) ApplyPlay(payload *room.PlayPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adminStartedPlayback = r.adminStartedPlayback || payload.AdminStartedPlayback

	r.seekIfDrifted(r.compensate(payload.Time, payload.Timestamp), payload.Force)
	r.player.Play()
	r.settle(stateSettleWindow)
}

func (r *Reconciler) ApplyPause(payload *room.PausePayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.player.Pause()
	// Position is not extrapolated; it stopped moving when the pause was
	// issued.
	r.seekIfDrifted(payload.Time, false)
	r.settle(stateSettleWindow)
}

func (r *Reconciler) ApplySeek(payload *room.SeekPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.player.SeekTo(r.compensate(payload.Time, payload.Timestamp))
	r.settle(stateSettleWindow)
}

// ApplyTemporarySeek lets a transient jump stand locally. The server's
// corrective sync pulls the player back, so the settle window is the longer
// one.
func (r *Reconciler) ApplyTemporarySeek(payload *room.TemporarySeekPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.player.SeekTo(payload.Time)
	r.settle(videoSettleWindow)
}

func (r *Reconciler) ApplyVideoChanged(payload *room.VideoChangedPayload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adminStartedPlayback = false
	r.player.Load(payload.VideoId)
	r.player.Pause()
	r.settle(videoSettleWindow)
}

// ApplySnapshot reconciles the local player against a full authoritative
// snapshot. Unless forced, the position is only corrected when it has
// drifted past the threshold.
func (r *Reconciler) ApplySnapshot(snapshot *room.PlayerSnapshot, force bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adminStartedPlayback = snapshot.AdminStartedPlayback

	target := snapshot.CurrentTime
	if snapshot.IsPlaying {
		target = r.compensate(target, snapshot.UpdatedAt)
	}

	r.seekIfDrifted(target, force)

	if snapshot.IsPlaying {
		r.player.Play()
	} else {
		r.player.Pause()
	}

	r.settle(videoSettleWindow)
}

// OnLocalPlay reports whether a locally initiated play should be sent to the
// server. Plays caused by an inbound command are suppressed, and a regular
// member's play before the admin opened playback is reverted on the spot.
func (r *Reconciler) OnLocalPlay() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.settling() {
		return false
	}

	if !r.isAdmin && !r.adminStartedPlayback {
		r.player.Pause()
		return false
	}

	return true
}

// OnLocalPause reports whether a locally initiated pause should be sent.
func (r *Reconciler) OnLocalPause() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return !r.settling()
}

// OnLocalSeek reports whether a locally initiated seek should be sent.
func (r *Reconciler) OnLocalSeek() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return !r.settling()
}
