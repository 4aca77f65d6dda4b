package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// capture redirects output to a buffer for the duration of the test.
func capture(t *testing.T, isVerbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(isVerbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestVerboseLevels(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("test message %s", "arg") }, "[DEBUG] test message arg\n"},
		{"info", func() { Info("info message %d", 42) }, "[INFO] info message 42\n"},
		{"warn", func() { Warn("warning message") }, "[WARN] warning message\n"},
		{"section", func() { Section("Test Section") }, "\n=== Test Section ===\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name+" verbose", func(t *testing.T) {
			buf := capture(t, true)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
		t.Run(tt.name+" quiet", func(t *testing.T) {
			buf := capture(t, false)
			tt.log()
			assert.Empty(t, buf.String())
		})
	}
}

func TestError_AlwaysPrints(t *testing.T) {
	buf := capture(t, false)

	Error("store unavailable: %v", "disk full")

	assert.Equal(t, "[ERROR] store unavailable: disk full\n", buf.String())
}

func TestElapsed(t *testing.T) {
	buf := capture(t, true)

	Elapsed("embed query", time.Now().Add(-time.Millisecond))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[DEBUG] embed query took "))
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
