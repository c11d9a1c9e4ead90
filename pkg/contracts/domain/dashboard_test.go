package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveVisibility(t *testing.T) {
	tests := []struct {
		name string
		show int
		hide int
		want Visibility
	}{
		{name: "no interaction", show: 0, hide: 0, want: VisibilityDefault},
		{name: "show only", show: 1, hide: 0, want: VisibilityAllVisible},
		// The "hide all only" branch resolves to hidden in legend, never a truthy value.
		{name: "hide only", show: 0, hide: 1, want: VisibilityAllHidden},
		{name: "show once then hide twice", show: 1, hide: 2, want: VisibilityAllHidden},
		{name: "tie", show: 3, hide: 3, want: VisibilityAllHidden},
		{name: "show ahead", show: 4, hide: 3, want: VisibilityAllVisible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveVisibility(tt.show, tt.hide))
			assert.Equal(t, tt.want, FilterState{ShowClicks: tt.show, HideClicks: tt.hide}.Visibility())
		})
	}
}

func TestVisibilityJSON(t *testing.T) {
	tests := []struct {
		v    Visibility
		want string
	}{
		{VisibilityDefault, `"legendonly"`},
		{VisibilityAllHidden, `"legendonly"`},
		{VisibilityAllVisible, `true`},
	}
	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			b, err := json.Marshal(tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}

	var v Visibility
	require.NoError(t, json.Unmarshal([]byte(`true`), &v))
	assert.Equal(t, VisibilityAllVisible, v)
	require.NoError(t, json.Unmarshal([]byte(`"legendonly"`), &v))
	assert.Equal(t, VisibilityAllHidden, v)
	assert.Error(t, json.Unmarshal([]byte(`"True"`), &v))
}
