package flagx

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-a", "localhost"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=alt.json", "-a", "localhost"},
			allowed: []string{"--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags ignored",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "trailing flag without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next flag is not consumed as value",
			args:    []string{"-c", "-s", "secret"},
			allowed: []string{"-c", "-s"},
			want:    []string{"-c", "-s", "secret"},
		},
		{
			name:    "order preserved",
			args:    []string{"-s", "k", "-http", ":8080", "-grpc", ":50051"},
			allowed: []string{"-grpc", "-s"},
			want:    []string{"-s", "k", "-grpc", ":50051"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestFlagNames(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.String("s", "", "")
	fs.Int("t", 0, "")

	assert.ElementsMatch(t, []string{"-s", "--s", "-t", "--t"}, FlagNames(fs))
}

func TestJSONConfigPath(t *testing.T) {
	assert.Equal(t, "a.json", JSONConfigPath([]string{"-c", "a.json", "-s", "x"}))
	assert.Equal(t, "b.json", JSONConfigPath([]string{"-config=b.json"}))
	assert.Equal(t, "", JSONConfigPath([]string{"-s", "x"}))
}
