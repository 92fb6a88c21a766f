package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "plain", in: "--fs --volume=50", want: []string{"--fs", "--volume=50"}},
		{name: "extra whitespace", in: "  --fs \t --mute  ", want: []string{"--fs", "--mute"}},
		{name: "double quoted", in: `--title="my reel" --fs`, want: []string{"--title=my reel", "--fs"}},
		{name: "apostrophe inside double quotes", in: `--title="it's here"`, want: []string{"--title=it's here"}},
		{name: "single quoted", in: `--ytdl-format='best[height<=720]'`, want: []string{"--ytdl-format=best[height<=720]"}},
		{name: "empty quoted arg", in: `--a "" --b`, want: []string{"--a", "", "--b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseArgs(tt.in))
		})
	}
}
