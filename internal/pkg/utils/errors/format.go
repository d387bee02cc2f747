package errors

import (
	"strings"
)

const (
	indent = "  "
	bullet = "- "
)

// Format renders the error as a human readable message.
// A nested error is written as "<prefix>: <error>" when short enough,
// otherwise as an indented bullet list. A multi error is always a bullet list.
func Format(err error) string {
	out := &strings.Builder{}
	writeError(out, 0, err)
	return out.String()
}

func writeError(out *strings.Builder, level int, err error) {
	if err == nil {
		panic(New("error cannot be nil"))
	}

	switch v := err.(type) { // nolint: errorlint
	case *nestedError:
		writeNestedError(out, level, v)
	case multiErrorGetter:
		writeErrorsList(out, level, v.WrappedErrors())
	default:
		// Align additional lines, if the message contains them.
		for i, line := range strings.Split(err.Error(), "\n") {
			if i > 0 {
				out.WriteString("\n")
				out.WriteString(strings.Repeat(indent, level))
			}
			out.WriteString(line)
		}
	}
}

func writeNestedError(out *strings.Builder, level int, err *nestedError) {
	main := &strings.Builder{}
	writeError(main, level, err.MainError())
	mainStr := main.String()

	subErrs := err.WrappedErrors()
	if len(subErrs) == 0 {
		out.WriteString(mainStr)
		return
	}

	sub := &strings.Builder{}
	writeErrorsList(sub, level, subErrs)
	subStr := sub.String()

	// A single short sub error stays on the prefix line,
	// anything else becomes a bullet list.
	out.WriteString(strings.TrimSuffix(mainStr, ":"))
	out.WriteString(":")
	if len(subErrs) > 1 || len(mainStr)+len(subStr) > 60 || strings.Contains(subStr, "\n") {
		out.WriteString("\n")
		if len(subErrs) == 1 {
			out.WriteString(strings.Repeat(indent, level))
			out.WriteString(bullet)
			writeError(out, level+1, subErrs[0])
		} else {
			out.WriteString(subStr)
		}
	} else {
		out.WriteString(" ")
		out.WriteString(subStr)
	}
}

func writeErrorsList(out *strings.Builder, level int, errs []error) {
	withBullet := len(errs) > 1
	for i, err := range errs {
		if i > 0 {
			out.WriteString("\n")
		}
		if withBullet {
			out.WriteString(strings.Repeat(indent, level))
			out.WriteString(bullet)
		}
		writeError(out, level+1, err)
	}
}
