// Package writer renders streamed model output to a terminal, wrapping words
// at the terminal width so incremental deltas read like a finished paragraph.
package writer

import (
	"fmt"
	"io"
	"os"
	"unicode"

	"golang.org/x/term"
)

// maxLineWidth caps wrapping even on very wide terminals.
const maxLineWidth = 100

// Writer word-wraps a stream of text fragments onto out. Fragments may split
// words anywhere; a word is only committed to a line once the whitespace
// after it arrives, so wrapping decisions never depend on fragment
// boundaries. Not safe for concurrent use.
type Writer struct {
	out   io.Writer
	width int

	lineLen      int
	word         []rune
	pendingSpace bool
}

// New returns a Writer for out. When out is a terminal the wrap width is its
// current width, capped at 100 columns; otherwise 100 is used.
func New(out io.Writer) *Writer {
	width := maxLineWidth
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 && w < width {
			width = w
		}
	}
	return NewWithWidth(out, width)
}

// NewWithWidth returns a Writer wrapping at the given column width.
func NewWithWidth(out io.Writer, width int) *Writer {
	if width < 1 {
		width = 1
	}
	return &Writer{out: out, width: width}
}

// WriteText feeds one fragment of streamed text to the writer.
func (w *Writer) WriteText(text string) error {
	for _, r := range text {
		if err := w.writeRune(r); err != nil {
			return err
		}
	}
	return nil
}

// Write makes the writer usable as an io.Writer. p must be valid UTF-8.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.WriteText(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Flush commits a word still being accumulated. Call it when the stream ends;
// the final fragment rarely ends in whitespace.
func (w *Writer) Flush() error {
	return w.commitWord()
}

// Finish flushes and terminates the output with a newline unless the stream
// was empty.
func (w *Writer) Finish() error {
	if err := w.commitWord(); err != nil {
		return err
	}
	if w.lineLen == 0 {
		return nil
	}
	w.lineLen = 0
	w.pendingSpace = false
	_, err := fmt.Fprintln(w.out)
	return err
}

func (w *Writer) writeRune(r rune) error {
	if r == '\n' {
		if err := w.commitWord(); err != nil {
			return err
		}
		w.lineLen = 0
		w.pendingSpace = false
		_, err := fmt.Fprintln(w.out)
		return err
	}
	if unicode.IsSpace(r) {
		if err := w.commitWord(); err != nil {
			return err
		}
		w.pendingSpace = true
		return nil
	}
	w.word = append(w.word, r)
	return nil
}

// commitWord writes the pending word, breaking the line first when the word
// (plus its separating space) would not fit. Words wider than the whole line
// are written anyway; splitting them would be worse.
func (w *Writer) commitWord() error {
	if len(w.word) == 0 {
		return nil
	}
	word := string(w.word)
	w.word = w.word[:0]

	needed := len([]rune(word))
	if w.pendingSpace && w.lineLen > 0 {
		needed++
	}
	if w.lineLen > 0 && w.lineLen+needed > w.width {
		if _, err := fmt.Fprintln(w.out); err != nil {
			return err
		}
		w.lineLen = 0
		w.pendingSpace = false
	}
	if w.pendingSpace && w.lineLen > 0 {
		if _, err := fmt.Fprint(w.out, " "); err != nil {
			return err
		}
		w.lineLen++
	}
	w.pendingSpace = false
	if _, err := fmt.Fprint(w.out, word); err != nil {
		return err
	}
	w.lineLen += len([]rune(word))
	return nil
}
