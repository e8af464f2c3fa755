// Package classify maps a focused window (application name plus window title)
// to an activity category and the prompt used when harvesting that window.
//
// Rules are an explicit ordered list. The first rule with a keyword contained
// in the normalized "app title" string wins, so earlier rules take precedence
// when keyword sets overlap (e.g. "code" in a note-taking window title).
package classify

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category is the classifier output.
type Category string

// Known categories.
const (
	Coding       Category = "CODING"
	PaperReading Category = "PAPER_READING"
	Writing      Category = "WRITING"
	Media        Category = "MEDIA"
	General      Category = "GENERAL"
)

// IsWork reports whether the category counts as active work for progress
// harvesting.
func (c Category) IsWork() bool {
	switch c {
	case Coding, PaperReading, Writing:
		return true
	default:
		return false
	}
}

// DefaultPrompt is used for windows no rule matches.
const DefaultPrompt = "Describe the main activity on the screen in one sentence."

// Rule is one entry of the ordered classification table.
type Rule struct {
	Category Category `yaml:"category" toml:"category" json:"category"`
	Keywords []string `yaml:"keywords" toml:"keywords" json:"keywords"`
	Prompt   string   `yaml:"prompt" toml:"prompt" json:"prompt"`
}

// DefaultRules returns the built-in rule table in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: Coding,
			Keywords: []string{"code", "pycharm", "cursor", "sublime", "intellij", "terminal", "iterm", "xcode", "vscode", "electron"},
			Prompt:   "Analyze this code screenshot. Briefly describe the functionality, logic, or module the user is currently implementing. Ignore UI details.",
		},
		{
			Category: PaperReading,
			Keywords: []string{"zotero", "pdf", "preview", "acrobat", "cajviewer", "readpaper"},
			Prompt:   "This is an academic paper or document. Summarize the key text, abstract, or figure shown in the center. What is the main research topic?",
		},
		{
			Category: Writing,
			Keywords: []string{"word", "notion", "obsidian", "pages", "typora", "notes", "feishu", "dingtalk", "latex", "overleaf"},
			Prompt:   "The user is writing a document. Summarize the main topic or content of the text visible in the editor.",
		},
		{
			Category: Media,
			Keywords: []string{"bilibili", "youtube", "vimeo", "iina", "vlc", "quicktime", "wechat", "video", "live", "movie"},
			Prompt:   "Extract the subtitle or key visual information from this media frame. What concept is being explained?",
		},
	}
}

// Classifier evaluates an ordered rule table. It is immutable after New and
// safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier over a copy of rules with keywords normalized.
// An empty slice yields the default table.
func New(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	folded := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = fold(strings.TrimSpace(k)); k != "" {
				kws = append(kws, k)
			}
		}
		prompt := r.Prompt
		if prompt == "" {
			prompt = DefaultPrompt
		}
		folded = append(folded, Rule{Category: r.Category, Keywords: kws, Prompt: prompt})
	}
	return &Classifier{rules: folded}
}

// Rules returns a copy of the evaluated rule table in priority order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify returns the category and harvesting prompt for a window.
// Empty app and title classify as General.
func (c *Classifier) Classify(app, title string) (Category, string) {
	haystack := fold(app + " " + title)
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(haystack, k) {
				return r.Category, r.Prompt
			}
		}
	}
	return General, DefaultPrompt
}

// fold applies NFKC and lower-cases s, so full-width titles match ASCII
// keywords.
func fold(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}
