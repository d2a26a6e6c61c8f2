package gomp4

import "fmt"

// ChannelLayout is a set of audio speaker positions.
type ChannelLayout uint16

func (ch ChannelLayout) String() string {
	return fmt.Sprintf("%dch", ch.Count())
}

const (
	ChFrontCenter = ChannelLayout(1 << iota)
	ChFrontLeft
	ChFrontRight
	ChBackCenter
	ChBackLeft
	ChBackRight
	ChSideLeft
	ChSideRight
	ChLowFreq

	ChMono   = ChFrontCenter
	ChStereo = ChFrontLeft | ChFrontRight
)

// Count returns the number of channels in the layout.
func (ch ChannelLayout) Count() (n int) {
	for ch != 0 {
		n++
		ch = (ch - 1) & ch
	}
	return
}
