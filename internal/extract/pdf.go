package extract

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"strings"
)

// extractPDFText performs a structured parse of a PDF: it walks the file's
// stream objects, inflates FlateDecode content, and collects the literal
// strings inside BT/ET text blocks. CID-encoded (hex) text is skipped since
// it cannot be decoded without the font's CMap.
func extractPDFText(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return "", errors.New("missing %PDF header")
	}

	var blocks []string
	for _, stream := range contentStreams(data) {
		for _, block := range textBlocks(stream) {
			if block != "" {
				blocks = append(blocks, block)
			}
		}
	}

	if len(blocks) == 0 {
		return "", errors.New("no text operators found in content streams")
	}
	return strings.Join(blocks, "\n"), nil
}

// contentStreams returns the decoded bytes of every stream object in the
// file. Each stream is tried as zlib first (FlateDecode); raw bytes are used
// when inflation fails, which covers uncompressed streams.
func contentStreams(data []byte) [][]byte {
	var streams [][]byte

	rest := data
	for {
		start := bytes.Index(rest, []byte("stream"))
		if start < 0 {
			break
		}
		body := rest[start+len("stream"):]
		// The stream keyword is followed by CRLF or LF before the data.
		if bytes.HasPrefix(body, []byte("\r\n")) {
			body = body[2:]
		} else if bytes.HasPrefix(body, []byte("\n")) {
			body = body[1:]
		}

		end := bytes.Index(body, []byte("endstream"))
		if end < 0 {
			break
		}

		raw := bytes.TrimRight(body[:end], "\r\n")
		if inflated, err := inflate(raw); err == nil {
			streams = append(streams, inflated)
		} else {
			streams = append(streams, raw)
		}

		rest = body[end+len("endstream"):]
	}

	return streams
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return nil, err
	}
	// Partial reads of a truncated stream still carry usable text.
	return out, nil
}

// textBlocks extracts the literal strings from each BT/ET text block in a
// decoded content stream. Strings within a block are space-joined.
func textBlocks(content []byte) []string {
	var blocks []string

	rest := content
	for {
		bt := bytes.Index(rest, []byte("BT"))
		if bt < 0 {
			break
		}
		body := rest[bt+2:]
		et := bytes.Index(body, []byte("ET"))
		if et < 0 {
			et = len(body)
		}

		if block := literalStrings(body[:et]); block != "" {
			blocks = append(blocks, block)
		}

		if et >= len(body) {
			break
		}
		rest = body[et+2:]
	}

	return blocks
}

// literalStrings collects the contents of all (...) string tokens in a text
// block, resolving PDF escape sequences and balanced nested parentheses.
func literalStrings(block []byte) string {
	var parts []string

	for i := 0; i < len(block); i++ {
		if block[i] != '(' {
			continue
		}
		s, next := parseLiteral(block, i)
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			parts = append(parts, trimmed)
		}
		i = next
	}

	return strings.Join(parts, " ")
}

// parseLiteral parses one literal string starting at the opening parenthesis
// and returns its decoded content plus the index of the closing parenthesis.
func parseLiteral(data []byte, start int) (string, int) {
	var sb strings.Builder
	depth := 1
	i := start + 1

	for ; i < len(data) && depth > 0; i++ {
		c := data[i]
		switch c {
		case '\\':
			if i+1 >= len(data) {
				break
			}
			i++
			switch esc := data[i]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b', 'f':
				// Ignored control escapes
			case '(', ')', '\\':
				sb.WriteByte(esc)
			case '\r', '\n':
				// Line continuation: swallow the newline
				if esc == '\r' && i+1 < len(data) && data[i+1] == '\n' {
					i++
				}
			default:
				if esc >= '0' && esc <= '7' {
					// Octal escape, up to three digits
					val := int(esc - '0')
					for n := 0; n < 2 && i+1 < len(data) && data[i+1] >= '0' && data[i+1] <= '7'; n++ {
						i++
						val = val*8 + int(data[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(esc)
				}
			}
		case '(':
			depth++
			sb.WriteByte(c)
		case ')':
			depth--
			if depth > 0 {
				sb.WriteByte(c)
			}
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String(), i - 1
}

// extractPrintableBytes is the degraded fallback: it keeps printable ASCII
// and newlines and replaces everything else with spaces. Best-effort for
// malformed or partially binary input.
func extractPrintableBytes(data []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(data))

	for _, b := range data {
		if (b >= 0x20 && b <= 0x7e) || b == '\n' {
			sb.WriteByte(b)
		} else {
			sb.WriteByte(' ')
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyExtraction
	}
	return text, nil
}
