package ui

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/progress"
)

const trackerLength = 30

func NewProgressWriter(w io.Writer) progress.Writer {
	writer := progress.NewWriter()
	writer.SetOutputWriter(w)
	writer.SetAutoStop(true)
	writer.SetTrackerLength(trackerLength)
	writer.SetStyle(progress.StyleBlocks)
	writer.Style().Visibility.ETA = true
	writer.Style().Visibility.Value = true

	return writer
}

// NewPageTracker returns a tracker counting parsed pages out of total.
func NewPageTracker(message string, total int) *progress.Tracker {
	return &progress.Tracker{
		Message: message,
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}
}
