package loader

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DanielleFiene/redditmini/internal/model"
)

func TestZeroStateIsLoading(t *testing.T) {
	var s State[[]model.Item]
	require.True(t, s.IsLoading())
	require.Equal(t, "loading", s.Status().String())
	_, ok := s.Data()
	require.False(t, ok)
}

func TestStateJSON(t *testing.T) {
	tests := []struct {
		name  string
		state State[[]string]
		want  string
	}{
		{"loading", Loading[[]string](), `{"status":"loading"}`},
		{"ready", Ready([]string{"a"}), `{"status":"ready","data":["a"]}`},
		{"ready empty", Ready([]string{}), `{"status":"ready","data":[]}`},
		{"failed", Failed[[]string]("Post not found"), `{"status":"failed","error":"Post not found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.state)
			require.NoError(t, err)
			require.JSONEq(t, tt.want, string(b))

			var back State[[]string]
			require.NoError(t, json.Unmarshal(b, &back))
			require.Equal(t, tt.state.Status(), back.Status())
			require.Equal(t, tt.state.Reason(), back.Reason())
		})
	}
}

func TestStateUnmarshalRejectsUnknownStatus(t *testing.T) {
	var s State[int]
	require.Error(t, json.Unmarshal([]byte(`{"status":"done"}`), &s))
}
