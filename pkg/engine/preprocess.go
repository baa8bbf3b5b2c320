package engine

import (
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
)

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites arc script source into something zygomys
// accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     collide with user variables of the same name.
//  2. Kebab-case identifiers become snake case (arc-between -> arc_between);
//     zygomys reads a hyphen as the subtraction operator.
//  3. ; line comments become // comments.
//
// String literals (double-quoted and backtick) are copied untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)

	b := []byte(source)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"':
			i = copyQuoted(&out, b, i, '"', true)
		case c == '`':
			i = copyQuoted(&out, b, i, '`', false)
		case c == ';':
			out.WriteString("//")
			for i < len(b) && b[i] == ';' {
				i++
			}
			for ; i < len(b) && b[i] != '\n'; i++ {
				out.WriteByte(b[i])
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out.WriteString(":=")
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.Write(b[i+1 : j])
			out.WriteByte('"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// copyQuoted copies the literal opening at b[i] through its closing quote
// and returns the index after it.
func copyQuoted(out *strings.Builder, b []byte, i int, quote byte, escapes bool) int {
	out.WriteByte(b[i])
	i++
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			out.Write(b[i : i+2])
			i += 2
			continue
		}
		out.WriteByte(b[i])
		i++
	}
	if i < len(b) {
		out.WriteByte(b[i])
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}
