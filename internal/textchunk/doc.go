// Package textchunk splits generated narration into synthesis-sized chunks.
// Paragraph boundaries are preferred, falling back to sentence boundaries
// for oversized paragraphs; content is never truncated.
package textchunk
