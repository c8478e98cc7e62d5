package subtitle

import (
	"time"
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

func (e Entry) Duration() time.Duration {
	return e.EndTime - e.StartTime
}

// timeline microseconds, the draft's unit
func (e Entry) StartMicros() int64 {
	return e.StartTime.Microseconds()
}

func (e Entry) DurationMicros() int64 {
	return e.Duration().Microseconds()
}

// represents a parsed .srt file
type File struct {
	Path    string
	Name    string
	Entries []Entry
}

// total span from zero to the last entry's end
func (f *File) Span() time.Duration {
	if len(f.Entries) == 0 {
		return 0
	}
	return f.Entries[len(f.Entries)-1].EndTime
}
