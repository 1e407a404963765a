package client

import (
	"sync"
	"time"
)

type Quality int

const (
	QualityGood Quality = iota
	QualityFair
	QualityPoor
)

func (q Quality) String() string {
	switch q {
	case QualityGood:
		return "good"
	case QualityFair:
		return "fair"
	case QualityPoor:
		return "poor"
	default:
		return "unknown"
	}
}

const (
	goodRTT = 150 * time.Millisecond
	fairRTT = 500 * time.Millisecond
)

// Classify maps a round trip time to a connection quality band.
func Classify(rtt time.Duration) Quality {
	switch {
	case rtt < goodRTT:
		return QualityGood
	case rtt < fairRTT:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Probe measures connection quality from ping round trips. A ping carries
// the send time as its token and the server echoes it back, so no clock
// other than the sender's is involved.
type Probe struct {
	timeout time.Duration

	mu      sync.Mutex
	sentAt  map[int64]time.Time
	quality Quality
	lastRtt time.Duration
	now     func() time.Time
}

func NewProbe(timeout time.Duration) *Probe {
	return &Probe{
		timeout: timeout,
		sentAt:  make(map[int64]time.Time),
		quality: QualityGood,
		now:     time.Now,
	}
}

// Ping records an outgoing ping and returns the token to send.
func (p *Probe) Ping() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	token := now.UnixMilli()
	p.sentAt[token] = now

	return token
}

// Pong resolves an echoed token into the measured quality. Unknown tokens
// are ignored. A completed round trip supersedes any older ping still in
// flight, so a lost ping cannot outlive a newer healthy measurement.
func (p *Probe) Pong(token int64) (Quality, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sent, ok := p.sentAt[token]
	if !ok {
		return p.quality, false
	}

	delete(p.sentAt, token)
	for t, s := range p.sentAt {
		if !s.After(sent) {
			delete(p.sentAt, t)
		}
	}

	p.lastRtt = p.now().Sub(sent)
	p.quality = Classify(p.lastRtt)

	return p.quality, true
}

// Quality returns the current band. An unanswered ping older than the
// timeout degrades it to poor and is dropped; the band stays poor until a
// later round trip completes.
func (p *Probe) Quality() Quality {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for token, sent := range p.sentAt {
		if now.Sub(sent) > p.timeout {
			delete(p.sentAt, token)
			p.quality = QualityPoor
		}
	}

	return p.quality
}

// RTT returns the last measured round trip time.
func (p *Probe) RTT() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.lastRtt
}
