package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"repo-popularity/internal/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&config.LogConfig{Level: "debug", Format: "json"}, &buf)

	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}

	log.WithField("repo", "facebook/react").Info("checked")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["repo"] != "facebook/react" || entry["msg"] != "checked" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNewTextWithBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(&config.LogConfig{Level: "loud", Format: "TEXT"}, &buf)

	if log.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info fallback", log.GetLevel())
	}

	log.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output = %q", buf.String())
	}
}
