package main

import (
	"flag"
	"testing"

	"github.com/helikon/arxdialog/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetup_LogLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
		t.Run(level, func(t *testing.T) {
			set := flag.NewFlagSet("test", 0)
			set.String("log-level", level, "")
			c := cli.NewContext(cli.NewApp(), set, nil)

			assert.NoError(t, setup(c))
		})
	}
}

func TestSetup_InvalidLogLevel(t *testing.T) {
	set := flag.NewFlagSet("test", 0)
	set.String("log-level", "loud", "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	err := setup(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestEngineFlags_Defaults(t *testing.T) {
	flags := engineFlags()

	byName := map[string]*cli.StringFlag{}
	for _, f := range flags {
		if sf, ok := f.(*cli.StringFlag); ok {
			byName[sf.Name] = sf
		}
	}

	require.Contains(t, byName, "host")
	assert.Equal(t, "http://localhost:11434/v1", byName["host"].Value)
	assert.Equal(t, "text-embedding-3-small", byName["embedding-model"].Value)
	assert.Contains(t, byName["data-dir"].EnvVars, "ARXDIALOG_DATA_DIR")

	require.Contains(t, byName, "system-prompt")
	assert.Equal(t, "You are a helpful assistant.", byName["system-prompt"].Value)
	assert.Contains(t, byName["system-prompt"].EnvVars, "ARXDIALOG_SYSTEM_PROMPT")
}

func TestConsoleView_StreamedAnswerConsumedOnPublish(t *testing.T) {
	view := &consoleView{}

	view.StreamDelta("the ")
	view.StreamDelta("answer")
	assert.Equal(t, "the answer", view.streamed.String())

	view.Publish([]core.Turn{{User: "a question", Assistant: "the answer"}}, nil)

	// The streamed buffer is spent and the turn counts as printed.
	assert.Zero(t, view.streamed.Len())
	assert.Equal(t, 1, view.printed)
}
