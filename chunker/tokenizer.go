package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is configured. It
// matches the tokenizer of the OpenAI embedding model family.
const DefaultEncoding = "cl100k_base"

// Tokenizer converts text to token ids and back. Implementations must be
// deterministic, and Decode must invert Encode for any window of a sequence
// Encode produced.
type Tokenizer interface {
	// Encode converts text into a sequence of token ids.
	Encode(text string) []int

	// Decode converts a sequence of token ids back into text.
	Decode(tokens []int) string
}

type tikTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTikTokenizer returns a Tokenizer backed by the named tiktoken BPE
// encoding, for example "cl100k_base".
func NewTikTokenizer(encoding string) (Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownEncoding, encoding, err)
	}
	return &tikTokenizer{enc: enc}, nil
}

func (t *tikTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tikTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
