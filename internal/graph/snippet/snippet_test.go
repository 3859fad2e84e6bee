package snippet

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractAbsentTopic(t *testing.T) {
	if got := Extract("some document text", "missing"); got != "" {
		t.Fatalf("Extract: want empty got=%q", got)
	}
}

func TestExtractEmptyInputs(t *testing.T) {
	if got := Extract("", "topic"); got != "" {
		t.Fatalf("Extract empty content: want empty got=%q", got)
	}
	if got := Extract("content", ""); got != "" {
		t.Fatalf("Extract empty topic: want empty got=%q", got)
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	got := Extract("The MITOCHONDRIA is the powerhouse of the cell.", "mitochondria")
	if !strings.Contains(strings.ToLower(got), "mitochondria") {
		t.Fatalf("Extract: want match in %q", got)
	}
	if strings.HasPrefix(got, "...") || strings.HasSuffix(got, "...") {
		t.Fatalf("Extract affixes: short content should not be truncated, got=%q", got)
	}
}

func TestExtractTruncatesBothSides(t *testing.T) {
	content := strings.Repeat("x", 300) + "TARGETtext" + strings.Repeat("y", 300)

	got := Extract(content, "TARGETtext")
	if !strings.HasPrefix(got, "...") {
		t.Fatalf("Extract: want leading ellipsis, got=%q", got[:10])
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Extract: want trailing ellipsis, got=%q", got[len(got)-10:])
	}
	if !strings.Contains(got, "TARGETtext") {
		t.Fatalf("Extract: want topic inside excerpt")
	}
	// 200 context chars + 3 ellipsis chars per side around the 10-char topic.
	if want := 200 + 10 + 200 + 6; len(got) != want {
		t.Fatalf("Extract length: want=%d got=%d", want, len(got))
	}
}

func TestExtractWindowsByRunesNotBytes(t *testing.T) {
	content := strings.Repeat("中", 300) + "TARGET" + strings.Repeat("文", 300)

	got := Extract(content, "TARGET")
	if !utf8.ValidString(got) {
		t.Fatalf("Extract: excerpt is not valid UTF-8: %q", got)
	}
	runes := []rune(got)
	if want := 3 + Window + 6 + Window + 3; len(runes) != want {
		t.Fatalf("Extract rune length: want=%d got=%d", want, len(runes))
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(got, "..."), "...")
	i := strings.Index(inner, "TARGET")
	if i == -1 {
		t.Fatalf("Extract: want topic inside excerpt, got=%q", inner)
	}
	if lead := len([]rune(inner[:i])); lead != Window {
		t.Fatalf("Extract leading context: want=%d runes got=%d", Window, lead)
	}
	if trail := len([]rune(inner[i+len("TARGET"):])); trail != Window {
		t.Fatalf("Extract trailing context: want=%d runes got=%d", Window, trail)
	}
}

func TestExtractMultibyteTopic(t *testing.T) {
	content := strings.Repeat("a", 250) + "光合作用" + strings.Repeat("b", 250)

	got := Extract(content, "光合作用")
	if !strings.Contains(got, "光合作用") {
		t.Fatalf("Extract: want topic inside excerpt, got=%q", got)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("Extract: excerpt is not valid UTF-8: %q", got)
	}
	if want := 3 + Window + 4 + Window + 3; len([]rune(got)) != want {
		t.Fatalf("Extract rune length: want=%d got=%d", want, len([]rune(got)))
	}
}

func TestExtractClampsAtStart(t *testing.T) {
	content := "Photosynthesis converts light into energy. " + strings.Repeat("z", 400)

	got := Extract(content, "Photosynthesis")
	if strings.HasPrefix(got, "...") {
		t.Fatalf("Extract: match at start should not have leading ellipsis, got=%q", got[:20])
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("Extract: want trailing ellipsis")
	}
}
