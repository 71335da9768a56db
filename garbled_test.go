package adapter

import "testing"

func TestGarbledDetectorDefaultPatterns(t *testing.T) {
	d := NewGarbledDetector(nil)
	if _, ok := d.Check("some normal text"); ok {
		t.Error("expected normal text to not match")
	}
	if pattern, ok := d.Check("oops <tool_name> leaked"); !ok || pattern != "<tool_name>" {
		t.Errorf("expected a match on <tool_name>, got (%q, %v)", pattern, ok)
	}
}

func TestGarbledDetectorCustomPatterns(t *testing.T) {
	d := NewGarbledDetector([]string{"XXXSTUCKXXX"})
	if _, ok := d.Check("<tool_name>"); ok {
		t.Error("expected default patterns to not apply when custom patterns are given")
	}
	if _, ok := d.Check("loop XXXSTUCKXXX detected"); !ok {
		t.Error("expected custom pattern to match")
	}
}
