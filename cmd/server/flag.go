package main

import (
	"flag"
	"fmt"
	"strings"
)

const (
	environmentVariableAddr      = "ADDR"
	environmentVariableWordsFile = "WORDS_FILE"
	environmentVariableDebug     = "DEBUG_GAME_MESSAGES"
)

type mainFlags struct {
	addr      string
	wordsFile string
	debug     bool
}

const defaultAddr = ":7070"

func usage(fs *flag.FlagSet) {
	envVars := []string{
		environmentVariableAddr,
		environmentVariableWordsFile,
		environmentVariableDebug,
	}
	fmt.Fprintln(fs.Output(), "Starts the board game server")
	fmt.Fprintln(fs.Output(), "Reads environment variables when possible:", fmt.Sprintf("[%s]", strings.Join(envVars, ",")))
	fmt.Fprintln(fs.Output(), fmt.Sprintf("Usage of %s:", fs.Name()))
	fs.PrintDefaults()
}

// newFlagSet creates a flagSet that populates the specified mainFlags.
func (m *mainFlags) newFlagSet(osLookupEnvFunc func(string) (string, bool)) *flag.FlagSet {
	fs := flag.NewFlagSet("main", flag.ExitOnError)
	fs.Usage = func() { usage(fs) }

	envOrDefault := func(key, defaultValue string) string {
		if envValue, ok := osLookupEnvFunc(key); ok {
			return envValue
		}
		return defaultValue
	}
	envPresent := func(key string) bool {
		_, ok := osLookupEnvFunc(key)
		return ok
	}
	fs.StringVar(&m.addr, "addr", envOrDefault(environmentVariableAddr, defaultAddr), "The TCP address to listen on.")
	fs.StringVar(&m.wordsFile, "words-file", envOrDefault(environmentVariableWordsFile, ""), "The list of valid upper-case words that can be played, one per line.")
	fs.BoolVar(&m.debug, "debug-game", envPresent(environmentVariableDebug), "Logs every accepted/rejected connection and inbound message if present.")
	return fs
}

// newMainFlags creates a new, populated mainFlags structure. Fields are
// populated from command line arguments; if a field is not specified on the
// command line, its environment variable is used before defaulting.
func newMainFlags(osArgs []string, osLookupEnvFunc func(string) (string, bool)) mainFlags {
	if len(osArgs) == 0 {
		osArgs = []string{""}
	}
	programArgs := osArgs[1:]
	var m mainFlags
	fs := m.newFlagSet(osLookupEnvFunc)
	fs.Parse(programArgs)
	return m
}

func (m mainFlags) validate() error {
	if len(m.wordsFile) == 0 {
		return fmt.Errorf("missing words file")
	}
	return nil
}
