package store

import "github.com/mars1523/marsctl/internal/control"

// activationRange is the [start, end) byte range of one activation in the
// JSONL file. start is the offset of the EventModeEnter line; end is the
// offset of the first byte after the EventModeExit line.
type activationRange struct {
	start int64
	end   int64
}

// fileIndex maintains in-memory byte-offset bookmarks per completed
// activation. It is updated by onAppend as each event is written and
// provides O(1) lookup for ActivationLog reads via file.ReadAt.
type fileIndex struct {
	summaries []ActivationSummary // ordered by completion time
	ranges    map[int]activationRange
	pending   *pendingActivation // open activation being built (nil if none)
	nextNum   int
}

// pendingActivation accumulates state for the activation currently open.
type pendingActivation struct {
	startOffset int64
	summary     ActivationSummary
}

func newFileIndex() *fileIndex {
	return &fileIndex{ranges: make(map[int]activationRange), nextNum: 1}
}

// onAppend updates the index when an event line has been appended.
// lineOffset is the byte offset of the first byte of the written line;
// lineLen is the total bytes written (including the trailing newline).
//
// The control manager exits the old mode before entering the new one, so
// an EventModeExit always closes the activation opened by the previous
// EventModeEnter.
func (idx *fileIndex) onAppend(e control.Event, lineOffset, lineLen int64) {
	switch e.Kind {
	case control.EventModeEnter:
		idx.pending = &pendingActivation{
			startOffset: lineOffset,
			summary: ActivationSummary{
				Number:   idx.nextNum,
				Mode:     e.Mode,
				FromMode: e.FromMode,
				StartAt:  e.Timestamp,
			},
		}
		idx.nextNum++
	case control.EventModeExit:
		if idx.pending == nil {
			return
		}
		s := idx.pending.summary
		s.Duration = e.Duration
		s.EndAt = e.Timestamp
		idx.ranges[s.Number] = activationRange{
			start: idx.pending.startOffset,
			end:   lineOffset + lineLen,
		}
		idx.summaries = append(idx.summaries, s)
		idx.pending = nil
	}
}
