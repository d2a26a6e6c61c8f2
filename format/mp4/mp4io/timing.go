package mp4io

import "fmt"

// runsExceed reports an error when runs covering total samples do not fit in a track of limit samples.
func runsExceed(tag Tag, total uint64, limit int) error {
	if total <= uint64(max(limit, 0)) {
		return nil
	}
	return boxErr(tag, 0, fmt.Errorf("runs cover %d samples, track has %d", total, limit))
}

// BlowupTimeToSamples expands stts runs to one decoding delta per sample.
// Runs covering more than limit samples are rejected before anything is allocated.
func BlowupTimeToSamples(entries []TimeToSampleEntry, limit int) ([]uint32, error) {
	var total uint64
	for _, e := range entries {
		total += uint64(e.Count)
	}
	if err := runsExceed(STTS, total, limit); err != nil {
		return nil, err
	}
	deltas := make([]uint32, 0, total)
	for _, e := range entries {
		for range e.Count {
			deltas = append(deltas, e.Duration)
		}
	}
	return deltas, nil
}

// CompactTimeToSamples merges consecutive equal deltas into stts runs.
func CompactTimeToSamples(deltas []uint32) (entries []TimeToSampleEntry) {
	for _, d := range deltas {
		if n := len(entries); n > 0 && entries[n-1].Duration == d {
			entries[n-1].Count++
			continue
		}
		entries = append(entries, TimeToSampleEntry{Count: 1, Duration: d})
	}
	return
}

// BlowupCompositionOffsets expands ctts runs to one offset per sample, with the
// same limit as BlowupTimeToSamples.
func BlowupCompositionOffsets(entries []CompositionOffsetEntry, limit int) ([]int32, error) {
	var total uint64
	for _, e := range entries {
		total += uint64(e.Count)
	}
	if err := runsExceed(CTTS, total, limit); err != nil {
		return nil, err
	}
	offsets := make([]int32, 0, total)
	for _, e := range entries {
		for range e.Count {
			offsets = append(offsets, e.Offset)
		}
	}
	return offsets, nil
}

// CompactCompositionOffsets merges consecutive equal offsets into ctts runs.
func CompactCompositionOffsets(offsets []int32) (entries []CompositionOffsetEntry) {
	for _, o := range offsets {
		if n := len(entries); n > 0 && entries[n-1].Offset == o {
			entries[n-1].Count++
			continue
		}
		entries = append(entries, CompositionOffsetEntry{Count: 1, Offset: o})
	}
	return
}

// TotalDuration sums the deltas of the runs.
func TotalDuration(entries []TimeToSampleEntry) (d uint64) {
	for _, e := range entries {
		d += uint64(e.Count) * uint64(e.Duration)
	}
	return
}
