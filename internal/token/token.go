package token

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

const DefaultEncoding = "cl100k_base"

// Codec encodes text to token ids and back. The tiktoken encoding satisfies
// it in production; tests inject a deterministic stand-in.
type Codec interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

type tiktokenCodec struct {
	encoding *tiktoken.Tiktoken
}

func (c *tiktokenCodec) Encode(text string) []int {
	return c.encoding.Encode(text, nil, nil)
}

func (c *tiktokenCodec) Decode(tokens []int) string {
	return c.encoding.Decode(tokens)
}

// Service provides token counting and budgeting on top of a Codec.
type Service struct {
	codec Codec
}

func NewService(codec Codec) *Service {
	return &Service{codec: codec}
}

// NewTiktokenService returns a Service backed by the cl100k_base encoding.
func NewTiktokenService() (*Service, error) {
	encoding, err := tiktoken.GetEncoding(DefaultEncoding)
	if err != nil {
		return nil, err
	}
	return NewService(&tiktokenCodec{encoding: encoding}), nil
}

// Count returns the token count for text.
func (s *Service) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(s.codec.Encode(text))
}

// Trim keeps the first maxTokens tokens of text, re-decoded. Text already
// within budget is returned verbatim.
func (s *Service) Trim(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := s.codec.Encode(text)
	if len(tokens) <= maxTokens {
		return text
	}
	return s.codec.Decode(tokens[:maxTokens])
}

// TailTokens keeps the last n tokens of text.
func (s *Service) TailTokens(text string, n int) string {
	if n <= 0 {
		return ""
	}
	tokens := s.codec.Encode(text)
	if len(tokens) <= n {
		return text
	}
	return s.codec.Decode(tokens[len(tokens)-n:])
}

// SplitByTokens slices text into windows of at most maxTokens tokens. Window
// i+1 starts at end_i - overlap, clamped to zero. Text that already fits is
// returned as a single unchanged slice.
func (s *Service) SplitByTokens(text string, maxTokens, overlap int) []string {
	if text == "" {
		return nil
	}
	tokens := s.codec.Encode(text)
	if len(tokens) <= maxTokens {
		return []string{text}
	}
	// the window must advance by at least one token
	if overlap >= maxTokens {
		overlap = maxTokens - 1
	}

	var chunks []string
	start := 0
	end := maxTokens
	for start < len(tokens) {
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, s.codec.Decode(tokens[start:end]))
		if end >= len(tokens) {
			break
		}
		if overlap > 0 {
			start = end - overlap
		} else {
			start = end
		}
		if start < 0 {
			start = 0
		}
		end = start + maxTokens
	}
	return chunks
}

// JoinWithBudget greedily concatenates non-empty blocks with separator until
// the budget is reached, returning the joined text and the blocks that were
// included. When the very first block would already exceed the budget it is
// force-included trimmed, but reported untrimmed so callers can keep their
// own bookkeeping against the original block.
func (s *Service) JoinWithBudget(blocks []string, maxTokens int, separator string) (string, []string) {
	sepTokens := s.Count(separator)

	var selected []string
	var parts []string
	total := 0

	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		blockTokens := s.Count(block)
		additional := blockTokens
		if len(parts) > 0 {
			additional += sepTokens
		}

		if total+additional > maxTokens {
			if len(parts) == 0 {
				selected = append(selected, block)
				return s.Trim(block, maxTokens), selected
			}
			break
		}

		parts = append(parts, block)
		selected = append(selected, block)
		total += additional
	}

	return strings.Join(parts, separator), selected
}
