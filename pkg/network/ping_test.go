package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPingTracker_oneOutstanding(t *testing.T) {
	p := NewPingTracker(0)
	now := time.Now()

	assert.True(t, p.Start(now))
	assert.False(t, p.Start(now.Add(time.Second)), "second ping must wait for the first answer")
	assert.True(t, p.Outstanding())

	rtt, ok := p.Complete(now.Add(40 * time.Millisecond))
	assert.True(t, ok)
	assert.Equal(t, 40*time.Millisecond, rtt)
	assert.False(t, p.Outstanding())

	_, ok = p.Complete(now.Add(time.Second))
	assert.False(t, ok, "unsolicited answers are ignored")

	assert.True(t, p.Start(now.Add(time.Second)))
	p.Cancel()
	assert.False(t, p.Outstanding())
}

func TestPingTracker_RTT(t *testing.T) {
	p := NewPingTracker(4)
	now := time.Now()
	for _, ms := range []int{500, 30, 32, 34, 36} {
		p.Start(now)
		p.Complete(now.Add(time.Duration(ms) * time.Millisecond))
	}
	// 500 fell out of the window
	assert.Equal(t, 33*time.Millisecond, p.RTT())
}

func TestRemoveOutlierRTTs(t *testing.T) {
	tests := []struct {
		name string
		rtts []int64
		want []int64
	}{
		{name: "empty", rtts: []int64{}, want: []int64{}},
		{name: "no outliers", rtts: []int64{10, 12, 11}, want: []int64{10, 12, 11}},
		{name: "spike removed", rtts: []int64{30, 31, 29, 200}, want: []int64{30, 31, 29}},
		{name: "small values kept", rtts: []int64{2, 3, 15}, want: []int64{2, 3, 15}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, removeOutlierRTTs(tt.rtts))
		})
	}
}

func TestMedianRTT(t *testing.T) {
	assert.Equal(t, int64(0), medianRTT(nil))
	assert.Equal(t, int64(20), medianRTT([]int64{30, 10, 20}))
	assert.Equal(t, int64(25), medianRTT([]int64{40, 10, 20, 30}))
}
