package flagx

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", "https://api.example.com"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "flag with equals",
			args:         []string{"-config=alt.json", "-d", "mdash.db"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-t"},
			allowedFlags: []string{"-t"},
			want:         []string{"-t"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-a", "-d", "local.db"},
			allowedFlags: []string{"-a", "-d"},
			want:         []string{"-a", "-d", "local.db"},
		},
		{
			name:         "several runtime flags kept in order",
			args:         []string{"-a", "http://localhost:8000", "-c", "conf.json", "-l", "debug"},
			allowedFlags: []string{"-a", "-l"},
			want:         []string{"-a", "http://localhost:8000", "-l", "debug"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "repeated flag preserved",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowedFlags)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("FilterArgs() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	t.Run("short -c", func(t *testing.T) {
		assert.Equal(t, "/etc/mdash.json", ConfigFileFlag([]string{"-c", "/etc/mdash.json"}))
	})

	t.Run("long -config", func(t *testing.T) {
		assert.Equal(t, "long.json", ConfigFileFlag([]string{"-a", "http://x", "-config", "long.json"}))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Empty(t, ConfigFileFlag([]string{"-a", "http://x"}))
	})

	t.Run("last wins", func(t *testing.T) {
		assert.Equal(t, "2.json", ConfigFileFlag([]string{"-c", "1.json", "-config", "2.json"}))
	})
}
