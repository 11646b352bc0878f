package textchunk

import (
	"strings"
	"unicode"
)

// Chunk is one bounded slice of narration text. Index is 1-based position
// within the source document.
type Chunk struct {
	Index int
	Text  string
}

// Separator joins paragraphs within a chunk and is the boundary the splitter
// operates on.
const Separator = "\n\n"

// Split breaks text into chunks of at most maxChars characters. Paragraphs
// are accumulated greedily; a paragraph that alone exceeds the limit is
// split at sentence boundaries, and a single sentence over the limit becomes
// its own oversized chunk rather than being cut mid-sentence. Empty input
// yields no chunks.
func Split(text string, maxChars int) []Chunk {
	if maxChars < 1 {
		maxChars = 1
	}
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var texts []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			texts = append(texts, current.String())
			current.Reset()
		}
	}

	for _, para := range paragraphs {
		if len(para) > maxChars {
			flush()
			texts = append(texts, splitSentenceWise(para, maxChars)...)
			continue
		}
		if current.Len() > 0 && current.Len()+len(Separator)+len(para) > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(Separator)
		}
		current.WriteString(para)
	}
	flush()

	chunks := make([]Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = Chunk{Index: i + 1, Text: t}
	}
	return chunks
}

// Join reassembles chunk texts with the paragraph separator. Split followed
// by Join reproduces the source content modulo whitespace normalization.
func Join(chunks []Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Text
	}
	return strings.Join(parts, Separator)
}

func splitParagraphs(text string) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		out = append(out, para)
	}
	return out
}

// splitSentenceWise applies the greedy accumulation at sentence level.
// Sentences within a chunk are joined with single spaces.
func splitSentenceWise(para string, maxChars int) []string {
	sentences := splitSentences(para)
	var out []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			out = append(out, current.String())
			current.Reset()
		}
	}
	for _, sentence := range sentences {
		if len(sentence) > maxChars {
			flush()
			out = append(out, sentence)
			continue
		}
		if current.Len() > 0 && current.Len()+1+len(sentence) > maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(sentence)
	}
	flush()
	return out
}

// splitSentences breaks a paragraph at terminal punctuation, keeping the
// punctuation with its sentence. CJK terminators are recognized alongside
// ASCII ones.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if !isSentenceTerminator(r) {
			continue
		}
		atEnd := i+1 >= len(runes)
		if atEnd || unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}
