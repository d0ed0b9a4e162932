package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLenient_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ShapeRequest
	}{
		{
			name: "strings",
			body: `{"p":"0,0;1,1","t":"3","a":"0.5"}`,
			want: ShapeRequest{P: "0,0;1,1", T: "3", A: "0.5"},
		},
		{
			name: "numbers keep their text",
			body: `{"p":"1,1","t":2.5,"r":255,"a":-0.1,"g":1e2}`,
			want: ShapeRequest{P: "1,1", T: "2.5", R: "255", A: "-0.1", G: "1e2"},
		},
		{
			name: "null bool object and array fall back to empty",
			body: `{"p":"1,1","t":null,"r":true,"g":{"x":1},"b":[1,2],"a":false}`,
			want: ShapeRequest{P: "1,1"},
		},
		{
			name: "points of the wrong type are empty too",
			body: `{"p":[[0,0]]}`,
			want: ShapeRequest{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ShapeRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLenient_MalformedJSONStillFails(t *testing.T) {
	var got ShapeRequest
	assert.Error(t, json.Unmarshal([]byte(`{"p":"1,1","t":}`), &got))
}
