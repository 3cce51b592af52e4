package mml

import (
	"errors"
	"fmt"
	"strings"
)

func stripComments(src string) string {
	var out strings.Builder
	out.Grow(len(src))
	for i := 0; i < len(src); i++ {
		if strings.HasPrefix(src[i:], "/*") {
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				break
			}
			i += end + 3
			continue
		}
		if strings.HasPrefix(src[i:], "//") {
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				break
			}
			i += end
			out.WriteByte('\n')
			continue
		}
		out.WriteByte(src[i])
	}
	return out.String()
}

// expandLoops unrolls [body]n and [body|tail]n blocks. The tail after | is
// skipped on the last pass. n defaults to 2.
func expandLoops(src string) (string, error) {
	out, i, err := parseExpanded(src, 0, 0)
	if err != nil {
		return "", err
	}
	if i != len(src) {
		return "", fmt.Errorf("unmatched ']' at %d", i)
	}
	return out, nil
}

func parseExpanded(src string, at, depth int) (string, int, error) {
	var out strings.Builder
	for at < len(src) {
		switch src[at] {
		case ']':
			return out.String(), at, nil
		case '[':
			body, next, err := parseLoopBody(src, at+1)
			if err != nil {
				return "", at, err
			}
			out.WriteString(body)
			at = next
		default:
			out.WriteByte(src[at])
			at++
		}
	}
	return out.String(), at, nil
}

func parseLoopBody(src string, at int) (string, int, error) {
	var pre, post strings.Builder
	cur := &pre
	for at < len(src) {
		switch ch := src[at]; ch {
		case '[':
			body, next, err := parseLoopBody(src, at+1)
			if err != nil {
				return "", at, err
			}
			cur.WriteString(body)
			at = next
		case '|':
			cur = &post
			at++
		case ']':
			repeat, next, err := parseNumberDefault(src, at+1, 2)
			if err != nil {
				return "", at, err
			}
			repeat = max(repeat, 1)
			var out strings.Builder
			for k := 0; k < repeat; k++ {
				out.WriteString(pre.String())
				if k < repeat-1 {
					out.WriteString(post.String())
				}
			}
			return out.String(), next, nil
		default:
			cur.WriteByte(ch)
			at++
		}
	}
	return "", at, errors.New("unclosed loop block")
}
