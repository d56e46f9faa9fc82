package pdf

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// TokenKind says what a content-stream token did.
type TokenKind int

const (
	// TokenText shows text (Tj, TJ, ', ").
	TokenText TokenKind = iota
	// TokenMove only positions the cursor (Td, TD, Tm, T*).
	TokenMove
	// TokenMarked opens or closes a marked-content section (BMC, BDC, EMC).
	TokenMarked
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenMove:
		return "move"
	case TokenMarked:
		return "marked"
	}
	return "unknown"
}

// Token is one unit of a page's content stream, in stream order.
type Token struct {
	Kind TokenKind
	Text string // set only for TokenText
}

// HasText reports whether the token carries a string payload.
func (t Token) HasText() bool {
	return t.Kind == TokenText
}

// kernSpace is the TJ displacement (thousandths of an em) past which we
// assume the producer meant a word break.
const kernSpace = -100

// PageTokens walks every content stream of the page and returns its tokens.
// The underlying interpreter panics on malformed streams; callers recover.
func PageTokens(p pdf.Page) []Token {
	var tokens []Token
	var enc pdf.TextEncoding

	decode := func(v pdf.Value) string {
		if enc == nil {
			return v.RawString()
		}
		return enc.Decode(v.RawString())
	}

	for _, strm := range contentStreams(p) {
		pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
			n := stk.Len()
			args := make([]pdf.Value, n)
			for i := n - 1; i >= 0; i-- {
				args[i] = stk.Pop()
			}

			switch op {
			case "Tf":
				if n == 2 {
					enc = p.Font(args[0].Name()).Encoder()
				}
			// Show operators with a malformed operand draw nothing.
			case "Tj", "'":
				if n == 1 && args[0].Kind() == pdf.String {
					tokens = append(tokens, Token{Kind: TokenText, Text: decode(args[0])})
				}
			case "\"":
				if n == 3 && args[2].Kind() == pdf.String {
					tokens = append(tokens, Token{Kind: TokenText, Text: decode(args[2])})
				}
			case "TJ":
				if n == 1 && args[0].Kind() == pdf.Array {
					tokens = append(tokens, Token{Kind: TokenText, Text: showArray(args[0], decode)})
				}
			case "Td", "TD", "Tm", "T*":
				tokens = append(tokens, Token{Kind: TokenMove})
			case "BMC", "BDC", "EMC":
				tokens = append(tokens, Token{Kind: TokenMarked})
			}
		})
	}

	return tokens
}

// showArray flattens a TJ operand: strings are decoded and concatenated,
// large negative kerning becomes a space.
func showArray(arr pdf.Value, decode func(pdf.Value) string) string {
	var sb strings.Builder
	for i := 0; i < arr.Len(); i++ {
		elem := arr.Index(i)
		switch elem.Kind() {
		case pdf.String:
			sb.WriteString(decode(elem))
		case pdf.Integer, pdf.Real:
			if elem.Float64() < kernSpace {
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}

// contentStreams returns the page's /Contents as a list of streams.
func contentStreams(p pdf.Page) []pdf.Value {
	contents := p.V.Key("Contents")
	switch contents.Kind() {
	case pdf.Stream:
		return []pdf.Value{contents}
	case pdf.Array:
		streams := make([]pdf.Value, 0, contents.Len())
		for i := 0; i < contents.Len(); i++ {
			if s := contents.Index(i); s.Kind() == pdf.Stream {
				streams = append(streams, s)
			}
		}
		return streams
	}
	return nil
}

// PageText keeps the text tokens, in order, joined by single spaces.
func PageText(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.HasText() {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, " ")
}
