package classify_test

import (
	"testing"

	"omnijournal/pkg/classify"
)

func TestClassify_DefaultRules(t *testing.T) {
	c := classify.New(nil)

	tests := []struct {
		name  string
		app   string
		title string
		want  classify.Category
	}{
		{"vscode", "VSCode", "main.go", classify.Coding},
		{"terminal uppercase", "TERMINAL", "", classify.Coding},
		{"zotero", "Zotero", "Attention Is All You Need", classify.PaperReading},
		{"pdf in title", "Finder", "thesis.PDF", classify.PaperReading},
		{"obsidian", "Obsidian", "daily", classify.Writing},
		{"youtube in browser title", "Safari", "Lecture 3 - YouTube", classify.Media},
		{"unknown", "Calculator", "", classify.General},
		{"empty", "", "", classify.General},
		{"full-width app name", "ＶＳＣｏｄｅ", "", classify.Coding},
		{"full-width title", "Chrome", "ＢＩＬＩＢＩＬＩ 直播", classify.Media},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, prompt := c.Classify(tt.app, tt.title)
			if got != tt.want {
				t.Errorf("Classify(%q, %q) = %s, want %s", tt.app, tt.title, got, tt.want)
			}
			if prompt == "" {
				t.Errorf("Classify(%q, %q) returned empty prompt", tt.app, tt.title)
			}
		})
	}
}

func TestClassify_FirstRuleWins(t *testing.T) {
	c := classify.New(nil)

	// "code" (CODING) and "obsidian" (WRITING) both match; CODING is earlier.
	got, _ := c.Classify("Obsidian", "code snippets")
	if got != classify.Coding {
		t.Fatalf("got %s, want CODING", got)
	}

	// "preview" (PAPER_READING) beats "video" (MEDIA).
	got, _ = c.Classify("Preview", "video-frames.png")
	if got != classify.PaperReading {
		t.Fatalf("got %s, want PAPER_READING", got)
	}
}

func TestClassify_GeneralPrompt(t *testing.T) {
	c := classify.New(nil)
	cat, prompt := c.Classify("Calculator", "")
	if cat != classify.General || prompt != classify.DefaultPrompt {
		t.Fatalf("got (%s, %q), want GENERAL with default prompt", cat, prompt)
	}
}

func TestClassify_CustomRulesOrder(t *testing.T) {
	rules := []classify.Rule{
		{Category: classify.Media, Keywords: []string{"  Music "}, Prompt: "media prompt"},
		{Category: classify.Coding, Keywords: []string{"music"}, Prompt: "never reached"},
		{Category: classify.Writing, Keywords: []string{"draft"}},
	}
	c := classify.New(rules)

	cat, prompt := c.Classify("Music", "")
	if cat != classify.Media || prompt != "media prompt" {
		t.Fatalf("got (%s, %q), want MEDIA/media prompt", cat, prompt)
	}

	cat, prompt = c.Classify("Editor", "Draft v2")
	if cat != classify.Writing {
		t.Fatalf("got %s, want WRITING", cat)
	}
	if prompt != classify.DefaultPrompt {
		t.Fatalf("rule without prompt should fall back to default, got %q", prompt)
	}

	// Input slice must not be mutated by folding.
	if rules[0].Keywords[0] != "  Music " {
		t.Fatalf("New mutated caller rules: %q", rules[0].Keywords[0])
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := classify.New(nil)
	first, _ := c.Classify("Notion", "Live notes")
	for i := 0; i < 50; i++ {
		got, _ := c.Classify("Notion", "Live notes")
		if got != first {
			t.Fatalf("iteration %d: got %s, want %s", i, got, first)
		}
	}
}

func TestCategory_IsWork(t *testing.T) {
	tests := []struct {
		cat  classify.Category
		want bool
	}{
		{classify.Coding, true},
		{classify.PaperReading, true},
		{classify.Writing, true},
		{classify.Media, false},
		{classify.General, false},
	}
	for _, tt := range tests {
		if got := tt.cat.IsWork(); got != tt.want {
			t.Errorf("%s.IsWork() = %v, want %v", tt.cat, got, tt.want)
		}
	}
}
