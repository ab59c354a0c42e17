// Package llm defines the language-model contract and its Gemini
// implementation.
package llm

import "context"

// Part is one element of a multimodal prompt: either text or a binary blob.
// A part with a non-nil Data is binary; Text is ignored then.
type Part struct {
	Text string
	MIME string
	Data []byte
}

// TextPart builds a text prompt part.
func TextPart(text string) Part { return Part{Text: text} }

// BlobPart builds a binary prompt part.
func BlobPart(mime string, data []byte) Part { return Part{MIME: mime, Data: data} }

// IsBlob reports whether the part carries binary data.
func (p Part) IsBlob() bool { return p.Data != nil }

// Reply is a model response with its token cost.
type Reply struct {
	Text   string
	Tokens int
}

// Model is the single contract the rest of the system needs from an LLM:
// given prompt parts, return generated text plus a token count.
type Model interface {
	Generate(ctx context.Context, parts []Part) (*Reply, error)
}

// BinaryMIMEs lists the MIME types the model ingests directly as binary
// parts. Everything else is inlined as text or stored opaquely.
var BinaryMIMEs = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
	"image/heif":      true,
}

// NormalizeMIME folds common MIME variants ("image/jpg") onto their
// canonical names.
func NormalizeMIME(mime string) string {
	if mime == "image/jpg" {
		return "image/jpeg"
	}
	return mime
}
