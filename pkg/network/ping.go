package network

import (
	"sort"
	"sync"
	"time"
)

// DefaultPingSamples is the number of round trips kept to estimate the RTT
const DefaultPingSamples = 10

// PingTracker measures round trip times with at most one ping in flight.
type PingTracker struct {
	lock        sync.Mutex
	outstanding bool
	sentAt      time.Time
	recentRTTs  []int64
	maxSamples  int
}

func NewPingTracker(maxSamples int) *PingTracker {
	if maxSamples <= 0 {
		maxSamples = DefaultPingSamples
	}
	return &PingTracker{maxSamples: maxSamples}
}

// Start marks a ping as sent at now. It returns false, and records nothing,
// if a previous ping has not been answered yet.
func (p *PingTracker) Start(now time.Time) bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.outstanding {
		return false
	}
	p.outstanding = true
	p.sentAt = now
	return true
}

// Cancel forgets the ping in flight, e.g. when it could not be written.
func (p *PingTracker) Cancel() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.outstanding = false
}

// Complete records the answer to the ping in flight and returns its RTT.
// Unsolicited answers are ignored.
func (p *PingTracker) Complete(now time.Time) (time.Duration, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if !p.outstanding {
		return 0, false
	}
	p.outstanding = false
	rtt := now.Sub(p.sentAt)
	p.recentRTTs = append(p.recentRTTs, rtt.Milliseconds())
	if len(p.recentRTTs) > p.maxSamples {
		p.recentRTTs = p.recentRTTs[len(p.recentRTTs)-p.maxSamples:]
	}
	return rtt, true
}

func (p *PingTracker) Outstanding() bool {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.outstanding
}

// RTT returns the median of the recent round trips, ignoring outliers.
func (p *PingTracker) RTT() time.Duration {
	p.lock.Lock()
	defer p.lock.Unlock()
	return time.Duration(medianRTT(removeOutlierRTTs(p.recentRTTs))) * time.Millisecond
}

// removeOutlierRTTs removes outlier RTTs from the recent RTTs.
// An outlier RTT is greater than 2 times the median RTT and also greater than 20ms.
func removeOutlierRTTs(recentRTTs []int64) []int64 {
	result := make([]int64, 0, len(recentRTTs))
	median := medianRTT(recentRTTs)
	for _, rtt := range recentRTTs {
		if rtt > 2*median && rtt > 20 {
			continue
		}
		result = append(result, rtt)
	}
	return result
}

// medianRTT returns the median RTT from a slice of RTTs.
func medianRTT(recentRTTs []int64) int64 {
	if len(recentRTTs) == 0 {
		return 0
	}
	sorted := make([]int64, len(recentRTTs))
	copy(sorted, recentRTTs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	if len(sorted)%2 == 0 {
		return (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return sorted[len(sorted)/2]
}
