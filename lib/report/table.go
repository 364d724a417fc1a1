package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/pingcap/errors"

	"github.com/hanfei1991/jobsweep/model"
)

const (
	clearScreen = "\x1b[H\x1b[2J"
	tableHeader = "[+] Current cluster scores (Cluster Count, Cluster Score)"
	plotTitle   = "Function similarity by cluster count and silhouette score"
	cellFormat  = " %-3v : %-6s |"
	scoreWidth  = 6

	defaultRankKey = model.FieldScore
	defaultAxisKey = model.FieldCount
	defaultPerRow  = 2
)

// TableReporter prints results as a table ranked by one field.
// Every call redraws the whole screen.
type TableReporter struct {
	w       io.Writer
	rankKey string
	axisKey string
	perRow  int
	clear   bool
	header  *color.Color
	plot    PlotSink
}

// TableOption configures a TableReporter.
type TableOption func(*TableReporter)

// WithRankKey sets the field the rows are sorted by, ascending.
func WithRankKey(key string) TableOption {
	return func(r *TableReporter) {
		r.rankKey = key
	}
}

// WithAxisKey sets the field printed next to the rank and used as the
// plot's x axis.
func WithAxisKey(key string) TableOption {
	return func(r *TableReporter) {
		r.axisKey = key
	}
}

// WithPerRow sets how many cells are printed per line.
func WithPerRow(n int) TableOption {
	return func(r *TableReporter) {
		if n > 0 {
			r.perRow = n
		}
	}
}

// WithoutClear keeps previous output on screen.
func WithoutClear() TableOption {
	return func(r *TableReporter) {
		r.clear = false
	}
}

// WithColor forces the header styling on or off. By default it follows
// whether stdout is a terminal.
func WithColor(enabled bool) TableOption {
	return func(r *TableReporter) {
		if enabled {
			r.header.EnableColor()
		} else {
			r.header.DisableColor()
		}
	}
}

// WithPlotSink also feeds every render to sink.
func WithPlotSink(sink PlotSink) TableOption {
	return func(r *TableReporter) {
		r.plot = sink
	}
}

// NewTableReporter creates a TableReporter writing to w.
func NewTableReporter(w io.Writer, opts ...TableOption) *TableReporter {
	r := &TableReporter{
		w:       w,
		rankKey: defaultRankKey,
		axisKey: defaultAxisKey,
		perRow:  defaultPerRow,
		clear:   true,
		header:  color.New(color.FgWhite, color.Bold),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TableReporter) Render(results []model.ResultRecord) error {
	var buf bytes.Buffer
	if r.clear {
		buf.WriteString(clearScreen)
	}
	_, _ = r.header.Fprintln(&buf, tableHeader)

	ranked := sortedBy(results, r.rankKey)
	for i, rec := range ranked {
		fmt.Fprintf(&buf, cellFormat, cellValue(rec, r.axisKey), truncate(cellValue(rec, r.rankKey), scoreWidth))
		if i == len(ranked)-1 || (i+1)%r.perRow == 0 {
			buf.WriteByte('\n')
		} else {
			buf.WriteByte(' ')
		}
	}

	if _, err := r.w.Write(buf.Bytes()); err != nil {
		return errors.Trace(err)
	}
	if r.plot == nil {
		return nil
	}
	return errors.Trace(r.plot.Plot(plotTitle, Points(results, r.axisKey, r.rankKey)))
}

// Points extracts (xKey, yKey) pairs from results, sorted by x. Records
// missing either numeric field are left out.
func Points(results []model.ResultRecord, xKey, yKey string) []Point {
	points := make([]Point, 0, len(results))
	for _, rec := range results {
		x, okX := rec.Float(xKey)
		y, okY := rec.Float(yKey)
		if !okX || !okY {
			continue
		}
		points = append(points, Point{X: x, Y: y})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].X < points[j].X
	})
	return points
}

// sortedBy returns a copy of results sorted by the numeric field key.
// Records without a numeric key go last, in their original order.
func sortedBy(results []model.ResultRecord, key string) []model.ResultRecord {
	ret := append([]model.ResultRecord(nil), results...)
	sort.SliceStable(ret, func(i, j int) bool {
		vi, okI := ret[i].Float(key)
		vj, okJ := ret[j].Float(key)
		if okI != okJ {
			return okI
		}
		return okI && vi < vj
	})
	return ret
}

func cellValue(rec model.ResultRecord, key string) string {
	v, ok := rec[key]
	if !ok {
		return "-"
	}
	return fmt.Sprint(v)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
