package utils

import (
	"strings"
	"testing"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := RenderMarkdown("**hi** <script>alert(1)</script>")
	if strings.Contains(out, "<script") {
		t.Fatalf("script tag should be stripped: %s", out)
	}
	if !strings.Contains(out, "<strong>hi</strong>") {
		t.Fatalf("markdown should be rendered: %s", out)
	}
}

func TestRenderMarkdownImagesAndMentions(t *testing.T) {
	out := RenderMarkdown("hello @alice and @bob-2\n\n![x](https://example.com/a.png)\n\n`@code`")
	if !strings.Contains(out, `<a href="/u/alice" class="mention">@alice</a>`) {
		t.Fatalf("mention should be linked: %s", out)
	}
	if !strings.Contains(out, `/u/bob-2`) {
		t.Fatalf("hyphenated mention should be linked: %s", out)
	}
	if strings.Contains(out, `/u/code`) {
		t.Fatalf("mentions inside code must stay untouched: %s", out)
	}
	if !strings.Contains(out, `loading="lazy"`) {
		t.Fatalf("images should be lazy loaded: %s", out)
	}
}

func TestExtractMentions(t *testing.T) {
	got := ExtractMentions("@bob hi @alice, @bob again. mail@example")
	want := []string{"bob", "alice", "example"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if len(ExtractMentions("no mentions")) != 0 {
		t.Fatal("expected no mentions")
	}
}
