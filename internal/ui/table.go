package ui

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/catalog"
	"github.com/g5becks/apidox/internal/manifest"
	"github.com/g5becks/apidox/internal/search"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// ListOptions controls how a listing is written. Total is the size of the
// listing before Limit was applied; when it is larger a footer is printed.
type ListOptions struct {
	Format            string
	DescriptionLength int
	Total             int
}

type SourceStatus struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Repo     string    `json:"repo,omitempty"`
	Path     string    `json:"path,omitempty"`
	URL      string    `json:"url,omitempty"`
	Ref      string    `json:"ref,omitempty"`
	Out      string    `json:"out,omitempty"`
	Status   string    `json:"status"`
	Pages    int       `json:"pages,omitempty"`
	SyncedAt time.Time `json:"synced_at,omitzero"`
}

// GroupSummary is one row of the groups listing.
type GroupSummary struct {
	Name        string `json:"name"`
	Docs        int    `json:"docs"`
	Members     int    `json:"members"`
	HasOverview bool   `json:"has_overview"`
	Kinds       string `json:"kinds"`
	TotalSize   int64  `json:"total_size"`
}

func SummarizeGroup(g manifest.Group) GroupSummary {
	summary := GroupSummary{Name: g.Name, Docs: len(g.Docs)}

	var kinds []string
	for _, doc := range g.Docs {
		summary.Members += len(doc.Members)
		summary.TotalSize += doc.Size
		if doc.Name == catalog.OverviewName {
			summary.HasOverview = true
		}
		if !slices.Contains(kinds, doc.Kind) {
			kinds = append(kinds, doc.Kind)
		}
	}

	slices.Sort(kinds)
	summary.Kinds = strings.Join(kinds, ", ")
	return summary
}

// sheet is a rendered listing: one header and string rows, plus the value
// encoded for JSON output.
type sheet struct {
	header []string
	rows   [][]string
	value  any
}

func RenderSources(w io.Writer, sources []SourceStatus, opts ListOptions) error {
	s := sheet{
		header: []string{"SOURCE", "TYPE", "LOCATION", "STATUS", "SYNCED"},
		value:  sources,
	}

	for _, src := range sources {
		s.rows = append(s.rows, []string{
			src.Name,
			src.Type,
			renderLocation(src),
			renderStatus(src),
			FormatTime(src.SyncedAt),
		})
	}

	return s.render(w, opts)
}

func RenderGroups(w io.Writer, groups []GroupSummary, opts ListOptions) error {
	s := sheet{
		header: []string{"GROUP", "DOCS", "MEMBERS", "KINDS", "SIZE"},
		value:  groups,
	}

	for _, g := range groups {
		s.rows = append(s.rows, []string{
			g.Name,
			strconv.Itoa(g.Docs),
			strconv.Itoa(g.Members),
			g.Kinds,
			FormatSize(g.TotalSize),
		})
	}

	return s.render(w, opts)
}

func RenderDocs(w io.Writer, docs []manifest.DocInfo, opts ListOptions) error {
	s := sheet{
		header: []string{"NAME", "KIND", "TITLE", "MEMBERS", "DESCRIPTION"},
		value:  docs,
	}

	for _, doc := range docs {
		name := doc.Name
		if doc.Warning != "" {
			name += " (" + doc.Warning + ")"
		}

		s.rows = append(s.rows, []string{
			name,
			doc.Kind,
			doc.Title,
			memberCounts(doc),
			TruncateDescription(doc.Description, opts.DescriptionLength),
		})
	}

	return s.render(w, opts)
}

func RenderResults(w io.Writer, results []search.Result, opts ListOptions) error {
	s := sheet{
		header: []string{"GROUP", "PAGE", "MEMBER", "KIND", "MATCH", "SCORE", "DESCRIPTION"},
		value:  results,
	}

	for _, r := range results {
		s.rows = append(s.rows, []string{
			r.Group,
			r.Name,
			r.Member,
			string(r.Kind),
			r.MatchField,
			strconv.Itoa(r.Score),
			TruncateDescription(r.Description, opts.DescriptionLength),
		})
	}

	return s.render(w, opts)
}

func RenderContentResults(w io.Writer, results []search.ContentResult, opts ListOptions) error {
	s := sheet{
		header: []string{"GROUP", "PAGE", "LINE", "TEXT"},
		value:  results,
	}

	for _, r := range results {
		s.rows = append(s.rows, []string{
			r.Group,
			r.Name,
			strconv.Itoa(r.Line),
			TruncateDescription(r.Text, opts.DescriptionLength),
		})
	}

	return s.render(w, opts)
}

func (s sheet) render(w io.Writer, opts ListOptions) error {
	switch opts.Format {
	case FormatJSON:
		return WriteJSON(w, s.value)
	case FormatCSV:
		return s.writeCSV(w)
	default:
		s.writeTable(w)
		if opts.Total > len(s.rows) {
			fmt.Fprintf(w, "\n(showing %d of %d, use --all to show all)\n", len(s.rows), opts.Total)
		}
		return nil
	}
}

func (s sheet) writeTable(w io.Writer) {
	writer := table.NewWriter()
	writer.SetOutputMirror(w)
	writer.SetStyle(table.StyleRounded)

	header := make(table.Row, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	writer.AppendHeader(header)

	for _, row := range s.rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		writer.AppendRow(r)
	}

	writer.Render()
}

func (s sheet) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(s.header))
	for i, h := range s.header {
		header[i] = strings.ToLower(h)
	}

	if err := cw.Write(header); err != nil {
		return oops.
			Code("CSV_ERROR").
			Wrapf(err, "writing CSV header")
	}

	if err := cw.WriteAll(s.rows); err != nil {
		return oops.
			Code("CSV_ERROR").
			Wrapf(err, "writing CSV rows")
	}

	return nil
}

// WriteJSON encodes value as indented JSON.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(value); err != nil {
		return oops.
			Code("JSON_ERROR").
			Wrapf(err, "encoding output")
	}

	return nil
}

func renderLocation(src SourceStatus) string {
	if src.Type == "url" {
		return src.URL
	}

	location := src.Repo
	if src.Path != "" {
		location += "/" + src.Path
	}
	if src.Ref != "" {
		location += "@" + src.Ref
	}

	return strings.TrimPrefix(location, "/")
}

func renderStatus(src SourceStatus) string {
	if src.Pages > 0 {
		return fmt.Sprintf("%s (%d pages)", src.Status, src.Pages)
	}

	return src.Status
}

func memberCounts(doc manifest.DocInfo) string {
	if doc.Constructors+doc.Properties+doc.Methods == 0 {
		return "-"
	}
	return fmt.Sprintf("%dc %dp %dm", doc.Constructors, doc.Properties, doc.Methods)
}

// TruncateDescription shortens desc to at most maxLen runes, ending in an
// ellipsis. maxLen <= 0 disables truncation.
func TruncateDescription(desc string, maxLen int) string {
	runes := []rune(desc)
	if maxLen <= 0 || len(runes) <= maxLen {
		return desc
	}
	const ellipsis = "..."
	if maxLen <= len(ellipsis) {
		return ellipsis
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}

func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}
