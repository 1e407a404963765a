package client

// LocalPlayer is the embedded player the reconciler drives. Implementations
// wrap whatever playback surface the host application has.
type LocalPlayer interface {
	Load(videoId string)
	SeekTo(seconds float64)
	Play()
	Pause()
	CurrentTime() float64
	IsPlaying() bool
}
