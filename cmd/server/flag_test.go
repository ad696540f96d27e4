package main

import (
	"reflect"
	"testing"
)

func TestNewMainFlags(t *testing.T) {
	noEnv := func(string) (string, bool) { return "", false }
	tests := []struct {
		name    string
		osArgs  []string
		envVars map[string]string
		want    mainFlags
	}{
		{
			name: "defaults",
			want: mainFlags{addr: defaultAddr},
		},
		{
			name:   "command line",
			osArgs: []string{"ignored-binary-name", "-addr=:9000", "-words-file=words.txt", "-debug-game"},
			want:   mainFlags{addr: ":9000", wordsFile: "words.txt", debug: true},
		},
		{
			name: "environment variables",
			envVars: map[string]string{
				"ADDR":                 ":9001",
				"WORDS_FILE":           "other.txt",
				"DEBUG_GAME_MESSAGES": "",
			},
			want: mainFlags{addr: ":9001", wordsFile: "other.txt", debug: true},
		},
		{
			name:   "command line overrides environment",
			osArgs: []string{"ignored-binary-name", "-addr=:9002"},
			envVars: map[string]string{
				"ADDR": ":9001",
			},
			want: mainFlags{addr: ":9002"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := noEnv
			if tt.envVars != nil {
				lookup = func(key string) (string, bool) {
					v, ok := tt.envVars[key]
					return v, ok
				}
			}
			got := newMainFlags(tt.osArgs, lookup)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("newMainFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMainFlagsValidate(t *testing.T) {
	if err := (mainFlags{}).validate(); err == nil {
		t.Error("validate() with no words file: want error, got nil")
	}
	if err := (mainFlags{wordsFile: "words.txt"}).validate(); err != nil {
		t.Errorf("validate() with words file: got %v, want nil", err)
	}
}
