package sha256

import "testing"

func TestHexDeterministic(t *testing.T) {
	t.Parallel()

	got := Hex([]byte("hello world"))
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if again := Hex([]byte("hello world")); again != got {
		t.Fatalf("expected deterministic hash, got %s vs %s", got, again)
	}
}

func TestShort(t *testing.T) {
	t.Parallel()

	if got := Short([]byte("hello world"), 16); got != "b94d27b9934d3e08" {
		t.Fatalf("unexpected short digest %s", got)
	}
	if got := Short([]byte("hello world"), 500); len(got) != 64 {
		t.Fatalf("expected clamp to 64 chars, got %d", len(got))
	}
}
