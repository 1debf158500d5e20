package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/fatih/color"
)

// PrintOpts configures how a converted value is printed.
type PrintOpts struct {
	Color   bool
	Indent  string // indentation unit, two spaces when empty
	Newline bool
}

var (
	colorString  = color.New(color.FgHiBlue)
	colorNumber  = color.New(color.FgHiGreen)
	colorBool    = color.New(color.FgHiMagenta)
	colorError   = color.New(color.FgRed, color.Bold)
	colorNull    = color.New(color.FgHiBlack)
	colorKey     = color.New(color.FgHiYellow)
	colorBracket = color.New(color.FgHiBlack)
)

// PrintResult prints a success envelope, {"result": v}, the way the HTTP
// endpoint would return it, indented.
func PrintResult(w io.Writer, v any, opts PrintOpts) {
	env := NewObject(1)
	env.Set("result", v)
	PrintJSON(w, env, opts)
}

// PrintError prints an error envelope, {"error": msg}.
func PrintError(w io.Writer, msg string, opts PrintOpts) {
	p := printer{w: w, opts: opts}
	p.punct("{")
	fmt.Fprint(w, " ")
	p.key("error")
	p.punct(": ")
	p.paint(colorError, quote(msg))
	fmt.Fprint(w, " ")
	p.punct("}")
	if opts.Newline {
		fmt.Fprintln(w)
	}
}

// PrintJSON prints a value produced by ToJSON as indented JSON with optional
// ANSI colors. Without colors the output is valid JSON.
func PrintJSON(w io.Writer, v any, opts PrintOpts) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	p := printer{w: w, opts: opts}
	p.value(v, "")
	if opts.Newline {
		fmt.Fprintln(w)
	}
}

type printer struct {
	w    io.Writer
	opts PrintOpts
}

func (p printer) paint(c *color.Color, text string) {
	if p.opts.Color && c != nil {
		c.Fprint(p.w, text)
	} else {
		fmt.Fprint(p.w, text)
	}
}

func (p printer) punct(text string) { p.paint(colorBracket, text) }
func (p printer) key(k string)      { p.paint(colorKey, quote(k)) }

func (p printer) value(v any, padding string) {
	switch val := v.(type) {
	case nil:
		p.paint(colorNull, "null")
	case bool:
		p.paint(colorBool, strconv.FormatBool(val))
	case int64:
		p.paint(colorNumber, strconv.FormatInt(val, 10))
	case float64:
		p.paint(colorNumber, strconv.FormatFloat(val, 'g', -1, 64))
	case string:
		p.paint(colorString, quote(val))
	case []any:
		if len(val) == 0 {
			p.punct("[]")
			return
		}
		inner := padding + p.opts.Indent
		p.punct("[")
		for i, elem := range val {
			if i > 0 {
				p.punct(",")
			}
			fmt.Fprint(p.w, "\n"+inner)
			p.value(elem, inner)
		}
		fmt.Fprint(p.w, "\n"+padding)
		p.punct("]")
	case *Object:
		if val.Len() == 0 {
			p.punct("{}")
			return
		}
		inner := padding + p.opts.Indent
		p.punct("{")
		for i, k := range val.Keys() {
			if i > 0 {
				p.punct(",")
			}
			fmt.Fprint(p.w, "\n"+inner)
			p.key(k)
			p.punct(": ")
			elem, _ := val.Get(k)
			p.value(elem, inner)
		}
		fmt.Fprint(p.w, "\n"+padding)
		p.punct("}")
	default:
		// Not produced by ToJSON; fall back to the encoder.
		b, err := json.Marshal(val)
		if err != nil {
			p.paint(colorError, fmt.Sprintf("<%v>", err))
			return
		}
		fmt.Fprint(p.w, string(b))
	}
}

// quote renders s as a JSON string literal.
func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSpace(string(b))
}
