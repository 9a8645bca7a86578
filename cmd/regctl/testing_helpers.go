package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/regkit/internal/logger"
	"github.com/joshuapare/regkit/pkg/registry"
	"github.com/joshuapare/regkit/pkg/store/memstore"
	"github.com/joshuapare/regkit/pkg/types"
)

// newTestSession points sess at an empty in-memory store and resets the
// command flags. With a non-empty file, changes are written back to it.
func newTestSession(t *testing.T, file string) *memstore.Store {
	t.Helper()

	s := memstore.New()
	log := logger.Discard()
	sess = &session{
		client:   registry.New(s, &registry.Options{Logger: log}),
		store:    s,
		log:      log,
		file:     file,
		encoding: defaultEncoding,
	}
	resetFlags()
	t.Cleanup(func() {
		sess = nil
		resetFlags()
	})
	return s
}

// resetFlags restores every flag variable to its default.
func resetFlags() {
	verbose, quiet, jsonOut, yamlOut, longNames = false, false, false, false, false
	debugLevel, regFile, logDir, configFile = "silent", "", "", ""

	keysRecursive, keysDepth = false, 0
	setType, setSeparator = "sz", ","
	deleteKeyDryRun = false
	deleteValueAll = false
	exportOutput, exportEncoding, exportBOM = "", "", false
	importEncoding = ""
	ftLayer, ftAll, ftProgID, ftIcon, ftVerbs, ftDelete = "", false, "", "", nil, false
}

// seed creates keys and sets values through the session's client.
func seed(t *testing.T, path string, values types.ValueMap) {
	t.Helper()
	if _, err := sess.client.CreateKey(path); err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if len(values) == 0 {
		return
	}
	for name, v := range values {
		if _, err := sess.client.SaveValue(path, name, v); err != nil {
			t.Fatalf("set %s %s: %v", path, name, err)
		}
	}
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Read concurrently so large outputs don't block the pipe
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
