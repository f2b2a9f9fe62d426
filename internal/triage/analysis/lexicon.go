package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Lexicon is the configuration driving the lexical classifier.
type Lexicon struct {
	Version  string
	Positive []string
	Negative []string
	Emotions map[string][]string
}

type lexiconFile struct {
	Version string `yaml:"version"`
	Lexicon struct {
		Positive []string `yaml:"positive"`
		Negative []string `yaml:"negative"`
	} `yaml:"lexicon"`
	Emotions map[string][]string `yaml:"emotions,omitempty"`
}

// DefaultLexicon returns the built-in word lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Version: "builtin-1",
		Positive: []string{
			"good", "great", "excellent", "amazing", "awesome", "fantastic",
			"wonderful", "perfect", "helpful", "satisfied", "recommend",
			"pleased", "impressed", "smooth", "easy to use", "well done",
			"thank you", "thanks", "brilliant", "reliable",
		},
		Negative: []string{
			"bad", "terrible", "awful", "horrible", "broken", "useless",
			"slow", "crash", "crashes", "crashed", "bug", "buggy", "error",
			"fail", "failed", "fails", "failure", "worst", "poor",
			"disappointed", "disappointing", "frustrating", "unusable",
			"not working", "doesn't work", "refund", "hate", "annoying",
		},
		Emotions: map[string][]string{
			"anger":     {"angry", "furious", "outraged", "annoyed", "annoying", "hate", "ridiculous", "unacceptable"},
			"joy":       {"love", "happy", "delighted", "glad", "excited", "amazing", "awesome", "fantastic", "wonderful"},
			"concern":   {"worried", "concerned", "afraid", "risk", "unsafe", "security", "privacy"},
			"sadness":   {"sad", "disappointed", "disappointing", "unhappy", "upset"},
			"confusion": {"confused", "confusing", "unclear", "don't understand", "how do i"},
		},
	}
}

// ParseLexicon decodes the YAML lexicon format and validates it.
func ParseLexicon(data []byte) (Lexicon, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Lexicon{}, fmt.Errorf("decode lexicon: %w", err)
	}
	lex := Lexicon{
		Version:  strings.TrimSpace(file.Version),
		Positive: file.Lexicon.Positive,
		Negative: file.Lexicon.Negative,
		Emotions: file.Emotions,
	}.normalized()
	if err := lex.Validate(); err != nil {
		return Lexicon{}, err
	}
	return lex, nil
}

// EncodeLexicon renders a lexicon in the format ParseLexicon reads.
func EncodeLexicon(lex Lexicon) ([]byte, error) {
	var file lexiconFile
	file.Version = lex.Version
	file.Lexicon.Positive = lex.Positive
	file.Lexicon.Negative = lex.Negative
	file.Emotions = lex.Emotions
	return yaml.Marshal(file)
}

// Validate checks that both polarity lists are present and disjoint.
func (l Lexicon) Validate() error {
	n := l.normalized()
	if len(n.Positive) == 0 {
		return errors.New("lexicon: positive list is empty")
	}
	if len(n.Negative) == 0 {
		return errors.New("lexicon: negative list is empty")
	}
	positive := make(map[string]struct{}, len(n.Positive))
	for _, term := range n.Positive {
		positive[term] = struct{}{}
	}
	var overlap []string
	for _, term := range n.Negative {
		if _, ok := positive[term]; ok {
			overlap = append(overlap, term)
		}
	}
	if len(overlap) > 0 {
		return fmt.Errorf("lexicon: terms listed as both positive and negative: %s", strings.Join(overlap, ", "))
	}
	for name := range n.Emotions {
		if name == "" {
			return errors.New("lexicon: emotion name must not be empty")
		}
	}
	return nil
}

func (l Lexicon) normalized() Lexicon {
	out := Lexicon{
		Version:  l.Version,
		Positive: normalizeTerms(l.Positive),
		Negative: normalizeTerms(l.Negative),
	}
	if len(l.Emotions) > 0 {
		out.Emotions = make(map[string][]string, len(l.Emotions))
		for name, terms := range l.Emotions {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				out.Emotions[""] = nil
				continue
			}
			out.Emotions[name] = append(out.Emotions[name], normalizeTerms(terms)...)
		}
	}
	return out
}

func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	result := make([]string, 0, len(terms))
	for _, term := range terms {
		term = normalizeText(term)
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		result = append(result, term)
	}
	sort.Strings(result)
	return result
}

// normalizeText lowercases and collapses the input into space separated tokens.
// Tokens are runs of letters, digits and apostrophes.
func normalizeText(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "’", "'")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return strings.Join(tokens, " ")
}
