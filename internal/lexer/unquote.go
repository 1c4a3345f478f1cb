package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unquote decodes the raw text of a string literal token, including its
// surrounding quotes, into the string value it denotes.
func Unquote(raw string) (string, error) {
	if len(raw) < 2 || (raw[0] != '"' && raw[0] != '\'') || raw[len(raw)-1] != raw[0] {
		return "", fmt.Errorf("not a string literal: %s", raw)
	}
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("trailing backslash in %s", raw)
		}
		switch e := body[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			if i+1 < len(body) && isDigit(body[i+1]) {
				return "", fmt.Errorf("octal escape in %s", raw)
			}
			b.WriteByte(0)
		case '\r':
			if i+1 < len(body) && body[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if i+2 >= len(body) {
				return "", fmt.Errorf("short \\x escape in %s", raw)
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("bad \\x escape in %s: %w", raw, err)
			}
			b.WriteRune(rune(v))
			i += 2
		case 'u':
			r, n, err := decodeUnicodeEscape(body[i+1:])
			if err != nil {
				return "", fmt.Errorf("bad \\u escape in %s: %w", raw, err)
			}
			// surrogate pairs written as two escapes
			if r >= 0xD800 && r < 0xDC00 && strings.HasPrefix(body[i+1+n:], "\\u") {
				lo, m, err := decodeUnicodeEscape(body[i+1+n+2:])
				if err == nil && lo >= 0xDC00 && lo < 0xE000 {
					r = (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000
					n += 2 + m
				}
			}
			if !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
			i += n
		default:
			b.WriteByte(e)
		}
	}
	return b.String(), nil
}

func decodeUnicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0, fmt.Errorf("unterminated code point")
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil {
			return 0, 0, err
		}
		return rune(v), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("short escape")
	}
	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	return rune(v), 4, nil
}
