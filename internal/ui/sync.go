package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	apisync "github.com/g5becks/apidox/internal/sync"
)

type styles struct {
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	dim    *color.Color
	bold   *color.Color
}

func newStyles() styles {
	return styles{
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		dim:    color.New(color.Faint),
		bold:   color.New(color.Bold),
	}
}

// SyncPrinter writes one line per sync event. It is safe for concurrent use.
type SyncPrinter struct {
	mu     sync.Mutex
	w      io.Writer
	dryRun bool
	s      styles
}

func NewSyncPrinterWithWriter(w io.Writer, dryRun bool) *SyncPrinter {
	return &SyncPrinter{w: w, dryRun: dryRun, s: newStyles()}
}

// HandleEvent matches sync.Options.OnEvent.
func (p *SyncPrinter) HandleEvent(e apisync.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case apisync.EventSourceStart:
		p.line(p.s.dim.Sprint("⟳"), e.Source, "syncing")
	case apisync.EventSourceDone:
		p.done(e)
	case apisync.EventSourcePruned:
		detail := "(pruned, no longer configured)"
		if p.dryRun {
			detail = "(would prune, no longer configured)"
		}
		p.line(p.s.yellow.Sprint("-"), e.Source, p.s.dim.Sprint(detail))
	}
}

func (p *SyncPrinter) done(e apisync.Event) {
	switch {
	case e.Err != nil:
		p.line(p.s.red.Sprint("✗"), e.Source+":", e.Err.Error())
		return
	case e.Result == nil:
		return
	case e.Result.Skipped:
		p.line(p.s.dim.Sprint("="), e.Source, p.s.dim.Sprint("(up to date)"))
	default:
		p.line(p.s.green.Sprint("✓"), e.Source, p.s.dim.Sprint(formatCounts(e.Result.Downloaded, e.Result.Deleted)))
	}

	for _, warning := range e.Result.Warnings {
		fmt.Fprintf(p.w, "  %s %s\n", p.s.yellow.Sprint("!"), warning)
	}
}

func (p *SyncPrinter) line(marker, name, detail string) {
	fmt.Fprintf(p.w, "%s %s %s\n", marker, p.s.bold.Sprint(name), detail)
}

func formatCounts(fetched, removed int) string {
	var parts []string
	if fetched > 0 {
		parts = append(parts, fmt.Sprintf("%d page(s) fetched", fetched))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", removed))
	}
	if len(parts) == 0 {
		return "(no changes)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// PrintSummary writes the totals of a run. A nil result prints nothing.
func (p *SyncPrinter) PrintSummary(r *apisync.RunResult) {
	if r == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	label := "sync complete"
	if p.dryRun {
		label = p.s.yellow.Sprint("dry run complete")
	}

	parts := []string{
		fmt.Sprintf("%d source(s)", r.Sources),
		fmt.Sprintf("%d page(s) fetched", r.Downloaded),
		fmt.Sprintf("%d removed", r.Deleted),
		fmt.Sprintf("%d up to date", r.Skipped),
	}
	if len(r.Pruned) > 0 {
		parts = append(parts, fmt.Sprintf("%d pruned", len(r.Pruned)))
	}
	if r.Errors > 0 {
		parts = append(parts, p.s.red.Sprintf("%d failed", r.Errors))
	}

	fmt.Fprintf(p.w, "\n%s: %s\n", label, strings.Join(parts, ", "))
	if p.dryRun {
		fmt.Fprintln(p.w, p.s.dim.Sprint("nothing was written or removed"))
	}
}
