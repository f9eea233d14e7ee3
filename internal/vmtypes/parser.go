package vmtypes

import (
	"strconv"
	"strings"

	"github.com/tzstack/michelvm/internal/vmerrors"
)

// Parse parses a type expression (component D): a possibly parenthesized,
// possibly annotated (@, :, % prefixed) nested type term.
//
// The algorithm is top-down and parenthesis-aware: strip one matched outer
// parenthesis pair, detect the leading keyword, and recurse according to its
// arity. Binary constructors split their remainder into exactly two operand
// subexpressions simply by parsing one operand and then the next — parseOne
// already understands parenthesization, so a second, separate paren-balance
// splitter would only duplicate that logic.
func Parse(text string) (Type, error) {
	t, rest, err := parseOne(text)
	if err != nil {
		return Type{}, err
	}
	rest = strings.TrimSpace(rest)
	if rest != "" {
		return Type{}, vmerrors.ParseErrorAt("trailing garbage after type expression: "+rest, len(text)-len(rest))
	}
	return t, nil
}

func parseOne(s string) (Type, string, error) {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return Type{}, "", vmerrors.ParseErrorAt("expected a type expression, found end of input", 0)
	}

	if s[0] == '(' {
		inner, rest, err := splitParens(s)
		if err != nil {
			return Type{}, "", err
		}
		t, leftover, err := parseOne(inner)
		if err != nil {
			return Type{}, "", err
		}
		leftover = strings.TrimSpace(leftover)
		if leftover != "" {
			return Type{}, "", vmerrors.ParseErrorAt("unexpected content inside parentheses: "+leftover, 0)
		}
		return t, rest, nil
	}

	kw, rest := readKeyword(s)
	if kw == "" {
		return Type{}, "", vmerrors.ParseErrorAt("expected a type keyword, found: "+preview(s), 0)
	}

	annot, rest := readAnnotation(rest)

	if k, ok := scalarKeywords[kw]; ok {
		return Type{Kind: k, Annot: annot}, rest, nil
	}

	if k, ok := unaryKeywords[kw]; ok {
		child, rest2, err := parseOne(rest)
		if err != nil {
			return Type{}, "", operandError(kw, 1, rest, err)
		}
		// An annotation can also sit adjacent to the operand rather than the
		// constructor; prefer whichever slot actually carried one.
		if annot == "" {
			annot, rest2 = readAnnotation(rest2)
		}
		return Type{Kind: k, A: &child, Annot: annot}, rest2, nil
	}

	if k, ok := binaryKeywords[kw]; ok {
		left, rest2, err := parseOne(rest)
		if err != nil {
			return Type{}, "", operandError(kw, 2, rest, err)
		}
		right, rest3, err := parseOne(rest2)
		if err != nil {
			return Type{}, "", operandError(kw, 2, rest2, err)
		}
		return Type{Kind: k, A: &left, B: &right, Annot: annot}, rest3, nil
	}

	return Type{}, "", vmerrors.New(vmerrors.KindUnknownTypeword, "unknown type keyword: "+kw).
		WithContext("keyword", kw)
}

// operandError reports a missing operand as WrongArity; an operand that is
// present but malformed (e.g. unbalanced parentheses) keeps its own error.
func operandError(kw string, arity int, operand string, cause error) error {
	if strings.TrimSpace(operand) != "" {
		return cause
	}
	return wrongArity(kw, arity, cause)
}

func wrongArity(kw string, arity int, cause error) error {
	return vmerrors.Wrap(vmerrors.KindWrongArity, kw+" requires "+strconv.Itoa(arity)+" operand(s)", cause).
		WithContext("keyword", kw).
		WithContext("arity", arity)
}

// splitParens consumes a leading '(' through its matching ')', returning the
// text strictly between them and everything after the closing paren.
func splitParens(s string) (inner, rest string, err error) {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], nil
			}
			if depth < 0 {
				return "", "", vmerrors.ParseErrorAt("unbalanced parentheses: unexpected ')'", i)
			}
		}
	}
	return "", "", vmerrors.New(vmerrors.KindUnbalancedParens, "unbalanced parentheses: missing ')'")
}

func readKeyword(s string) (kw, rest string) {
	i := 0
	for i < len(s) && isKeywordRune(rune(s[i])) {
		i++
	}
	return s[:i], s[i:]
}

func isKeywordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
}

// readAnnotation consumes a leading "@|:|%" followed by "[_0-9A-Za-z.%@]+",
// after skipping insignificant whitespace, returning "" if none is present.
func readAnnotation(s string) (annot, rest string) {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	if trimmed == "" || (trimmed[0] != '@' && trimmed[0] != ':' && trimmed[0] != '%') {
		return "", s
	}
	i := 1
	for i < len(trimmed) && isAnnotRune(rune(trimmed[i])) {
		i++
	}
	if i == 1 {
		// Bare marker with nothing following is not a valid annotation.
		return "", s
	}
	return trimmed[:i], trimmed[i:]
}

func isAnnotRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '_' || r == '.' || r == '%' || r == '@'
}

func preview(s string) string {
	if len(s) > 24 {
		return s[:24] + "..."
	}
	return s
}
