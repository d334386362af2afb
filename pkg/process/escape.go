package process

import "io"

// escapeFilter drops terminal escape sequences (CSI, OSC and two byte ESC
// sequences) from a stream before passing it on. Sequences split across
// writes are handled because the parser state carries over.
type escapeFilter struct {
	out   io.Writer
	state int
}

const (
	stateText = iota
	stateEsc
	stateCSI
	stateOSC
	stateOSCEsc
)

const (
	esc = 0x1b
	bel = 0x07
)

func newEscapeFilter(out io.Writer) *escapeFilter {
	return &escapeFilter{out: out}
}

// Write implements io.Writer. It reports len(p) on success even when bytes
// were filtered out.
func (f *escapeFilter) Write(p []byte) (int, error) {
	clean := make([]byte, 0, len(p))
	for _, b := range p {
		switch f.state {
		case stateText:
			if b == esc {
				f.state = stateEsc
				continue
			}
			clean = append(clean, b)
		case stateEsc:
			switch b {
			case '[':
				f.state = stateCSI
			case ']':
				f.state = stateOSC
			default:
				f.state = stateText
			}
		case stateCSI:
			if b >= 0x40 && b <= 0x7e {
				f.state = stateText
			}
		case stateOSC:
			switch b {
			case bel:
				f.state = stateText
			case esc:
				f.state = stateOSCEsc
			}
		case stateOSCEsc:
			if b == '\\' {
				f.state = stateText
			} else {
				f.state = stateOSC
			}
		}
	}

	if len(clean) > 0 {
		if _, err := f.out.Write(clean); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
