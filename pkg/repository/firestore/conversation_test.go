package firestore

import (
	"fmt"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestChunkStrings(t *testing.T) {
	ids := func(n int) []string {
		result := make([]string, n)
		for i := range result {
			result[i] = fmt.Sprintf("ws-%d", i)
		}
		return result
	}

	cases := []struct {
		name   string
		input  []string
		want   int
		widths []int
	}{
		{"empty", nil, 0, nil},
		{"under the cap", ids(3), 1, []int{3}},
		{"exactly the cap", ids(workspaceIDChunkSize), 1, []int{30}},
		{"one over the cap", ids(workspaceIDChunkSize + 1), 2, []int{30, 1}},
		{"several chunks", ids(65), 3, []int{30, 30, 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunks := chunkStrings(tc.input, workspaceIDChunkSize)
			gt.Array(t, chunks).Length(tc.want)
			seen := 0
			for i, chunk := range chunks {
				gt.Array(t, chunk).Length(tc.widths[i])
				gt.Value(t, chunk[0]).Equal(fmt.Sprintf("ws-%d", seen))
				seen += len(chunk)
			}
		})
	}
}
