package internal

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel(" WARNING "))
	assert.Equal(t, LogLevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLogger_ComponentFollowsRootLevel(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	flags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	}()

	root := NewLogger(LogLevelWarn)
	byars := root.Component("Byars")

	byars.Debug("hidden")
	assert.Empty(t, buf.String())

	byars.Warn("count %d is small", 4)
	assert.Equal(t, "[WARN] [Byars] count 4 is small\n", buf.String())

	buf.Reset()
	root.SetLevel(LogLevelDebug)
	byars.Debug("shown")
	assert.Equal(t, "[DEBUG] [Byars] shown\n", buf.String())
	assert.Equal(t, LogLevelDebug, byars.Component("Nested").GetLevel())
}
