package emit

import (
	"bytes"
	"fmt"
	"strings"
)

type outBuffer struct {
	out    *bytes.Buffer
	addGap bool
}

func (ob *outBuffer) p(indent string, args ...interface{}) {
	if ob.addGap {
		ob.addGap = false
		ob.out.WriteString("\n")
	}
	if len(args) > 0 {
		ob.out.WriteString(indent)
	}
	for _, arg := range args {
		switch arg := arg.(type) {
		case string:
			ob.out.WriteString(arg)
		case []string:
			for _, subArg := range arg {
				ob.out.WriteString(subArg)
			}
		default:
			fmt.Fprintf(ob.out, "%v", arg)
		}
	}
	ob.out.WriteString("\n")
}

// printer writes lines at one indent level. Indented printers share the
// buffer of their parent.
type printer struct {
	out    *outBuffer
	unit   string
	prefix string
}

func newPrinter(unit string) *printer {
	return &printer{
		out: &outBuffer{
			out: &bytes.Buffer{},
		},
		unit: unit,
	}
}

// p prints one line. It never inserts spaces between parameters.
func (pp *printer) p(args ...interface{}) {
	pp.out.p(pp.prefix, args...)
}

// gap requests a blank line before the next printed line, so nothing
// trails the final element.
func (pp *printer) gap() {
	pp.out.addGap = true
}

// endElem prints the closing line of a block, cancelling any pending gap.
func (pp *printer) endElem(end ...interface{}) {
	pp.out.addGap = false
	pp.p(end...)
}

func (pp *printer) indent() *printer {
	return &printer{
		out:    pp.out,
		unit:   pp.unit,
		prefix: pp.prefix + pp.unit,
	}
}

func (pp *printer) String() string {
	return strings.TrimSuffix(pp.out.out.String(), "\n")
}
