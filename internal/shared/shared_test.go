package shared

import (
	"bytes"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("GenerateID returned empty string")
		}
		if seen[id] {
			t.Fatalf("GenerateID returned duplicate: %s", id)
		}
		seen[id] = true
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello", "key", "value")

	if buf.Len() == 0 {
		t.Fatal("expected log output")
	}
	if !bytes.Contains(buf.Bytes(), []byte("hello")) {
		t.Errorf("log output missing message: %s", buf.String())
	}
}
