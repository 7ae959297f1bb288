package linediff

import (
	"strings"
	"testing"
)

func TestComputeDiff(t *testing.T) {
	base := []byte("You are a helpful assistant.\nAnswer briefly.\n")
	head := []byte("You are a helpful assistant.\nAnswer in one sentence.\n")

	got := New().ComputeDiff("main:prompts/a.txt", "feature:prompts/a.txt", base, head)

	for _, want := range []string{
		"--- main:prompts/a.txt",
		"+++ feature:prompts/a.txt",
		"-Answer briefly.",
		"+Answer in one sentence.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("diff missing %q:\n%s", want, got)
		}
	}
}

func TestComputeDiffIdentical(t *testing.T) {
	content := []byte("same\n")
	if got := New().ComputeDiff("a", "b", content, content); got != "" {
		t.Errorf("identical contents produced diff:\n%s", got)
	}
}

func TestComputeDiffNewFile(t *testing.T) {
	got := New().ComputeDiff("a", "b", nil, []byte("brand new prompt\n"))
	if !strings.Contains(got, "+brand new prompt") {
		t.Errorf("diff missing added line:\n%s", got)
	}
}
