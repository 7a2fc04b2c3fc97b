package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintGoesToChannel(t *testing.T) {
	l := Init()
	l.Printf("seek %d", 5)

	assert.Equal(t, "seek 5", <-l.Prints)
}

func TestPrintErrorFormat(t *testing.T) {
	l := Init()
	l.PrintError("Load", errors.New("boom"))

	assert.Equal(t, "Error(Load) -> boom", <-l.Prints)
}

func TestPrintWithoutChannelDoesNotBlock(t *testing.T) {
	l := Logger{}
	l.Print("nobody listens")
}

func TestSetOutputMirrorsToFile(t *testing.T) {
	var buf bytes.Buffer
	l := Init()
	l.SetOutput(&buf)

	l.Print("hello")
	l.PrintError("probe", errors.New("no ffprobe"))

	out := buf.String()
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"source":"probe"`)
	assert.Contains(t, out, `"error":"no ffprobe"`)
}
