package histogram

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		ages []int
		want []int
	}{
		{"empty", nil, []int{0, 0, 0, 0, 0}},
		{"boundaries are min inclusive", []int{39, 40, 49, 50, 59, 60, 69, 70, 99}, []int{1, 2, 2, 2, 2}},
		{"out of range ignored", []int{-1, 100, 120}, []int{0, 0, 0, 0, 0}},
		{"typical senate", []int{45, 52, 63, 64, 71, 78, 88, 36}, []int{1, 1, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Count(tt.ages, DefaultBuckets)
			require.Len(t, rows, len(DefaultBuckets))
			got := make([]int, len(rows))
			for i, r := range rows {
				got[i] = r.Count
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCount_Labels(t *testing.T) {
	rows := Count([]int{50}, DefaultBuckets)
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.Label
	}
	assert.Equal(t, []string{"under 40", "40 - 49", "50 - 59", "60 - 69", "70+"}, labels)
	assert.Equal(t, 1, Total(rows))
}

func TestRender(t *testing.T) {
	rows := Count([]int{45, 52, 55, 71, 72, 73, 74}, DefaultBuckets)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rows, "US Senators", "# Senators"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "US Senators", lines[0])
	assert.Equal(t, "Age      | # Senators", lines[2])
	assert.Equal(t, "under 40 |  0", lines[4])
	assert.Equal(t, "40 - 49  | ########## 1", lines[5])
	assert.Equal(t, "70+      | "+strings.Repeat("#", 40)+" 4", lines[8])
}

func TestRender_AllZero(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Count(nil, DefaultBuckets), "", "# MPs"))
	assert.NotContains(t, buf.String(), "#  ")
	assert.True(t, strings.HasPrefix(buf.String(), "Age      | # MPs"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriteError(t *testing.T) {
	assert.Error(t, Render(failingWriter{}, Count(nil, DefaultBuckets), "t", "y"))
}
