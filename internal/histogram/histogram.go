// Package histogram buckets legislator ages and draws them as a text bar
// chart.
package histogram

import (
	"fmt"
	"io"
	"strings"
)

// Bucket is an age range, Min inclusive and Max exclusive.
type Bucket struct {
	Label string
	Min   int
	Max   int
}

// DefaultBuckets are the ranges used for every legislature.
var DefaultBuckets = []Bucket{
	{Label: "under 40", Min: 0, Max: 40},
	{Label: "40 - 49", Min: 40, Max: 50},
	{Label: "50 - 59", Min: 50, Max: 60},
	{Label: "60 - 69", Min: 60, Max: 70},
	{Label: "70+", Min: 70, Max: 100},
}

// Row is one bucket with its count.
type Row struct {
	Label string `json:"age_range"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// Count returns one row per bucket, in bucket order. Ages outside every
// bucket are not counted.
func Count(ages []int, buckets []Bucket) []Row {
	rows := make([]Row, len(buckets))
	for i, b := range buckets {
		rows[i] = Row{Label: b.Label, Min: b.Min, Max: b.Max}
	}
	for _, age := range ages {
		for i, b := range buckets {
			if age >= b.Min && age < b.Max {
				rows[i].Count++
			}
		}
	}
	return rows
}

// Total sums the counts of rows.
func Total(rows []Row) int {
	n := 0
	for _, r := range rows {
		n += r.Count
	}
	return n
}

const barWidth = 40

// Render draws rows as horizontal bars scaled to the largest count.
func Render(w io.Writer, rows []Row, title, yLabel string) error {
	labelWidth := len("Age")
	maxCount := 0
	for _, r := range rows {
		if len(r.Label) > labelWidth {
			labelWidth = len(r.Label)
		}
		if r.Count > maxCount {
			maxCount = r.Count
		}
	}

	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "%s\n\n", title)
	}
	fmt.Fprintf(&b, "%-*s | %s\n", labelWidth, "Age", yLabel)
	fmt.Fprintf(&b, "%s-+-%s\n", strings.Repeat("-", labelWidth), strings.Repeat("-", barWidth))
	for _, r := range rows {
		n := 0
		if maxCount > 0 {
			n = (r.Count*barWidth + maxCount - 1) / maxCount
		}
		fmt.Fprintf(&b, "%-*s | %s %d\n", labelWidth, r.Label, strings.Repeat("#", n), r.Count)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
