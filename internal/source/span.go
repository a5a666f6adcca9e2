// Package source holds the byte-offset source location type shared by the
// lexer, parser, and every resolved AST/IR node.
package source

import "fmt"

// FileID is a small integer identifying one source file within a
// compilation. File IDs are assigned by a Namespace in the order files are
// added and are never reused (see namespace.Namespace).
type FileID int

// NoFile is the FileID used by synthetic spans that do not originate from
// any source file (codegen-inserted nodes, builtin declarations).
const NoFile FileID = -1

// Span is a half-open byte range [Start, End) within one source file.
// Comparison of spans is always by byte offset, independent of UTF-8
// decoding, per the core's data model.
type Span struct {
	File  FileID
	Start int
	End   int

	// Implicit marks a span that was synthesized by a compiler pass rather
	// than copied from a lexed token (e.g. an implicit return, a
	// default-constructed modifier invocation). Implicit spans still carry
	// a best-effort File/Start/End (typically copied from the enclosing
	// node) so that diagnostics have somewhere to point.
	Implicit bool
}

// Synthetic reports a span with no backing source file at all, for nodes
// that exist only because a pass created them (e.g. builtin members).
func Synthetic() Span {
	return Span{File: NoFile, Implicit: true}
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Join returns the smallest span that contains both s and o. The File of s
// is kept; callers must not Join spans from different files.
func (s Span) Join(o Span) Span {
	j := s
	if o.Start < j.Start {
		j.Start = o.Start
	}
	if o.End > j.End {
		j.End = o.End
	}
	j.Implicit = s.Implicit && o.Implicit
	return j
}

func (s Span) String() string {
	if s.File == NoFile {
		return "<implicit>"
	}
	return fmt.Sprintf("file#%d:%d-%d", s.File, s.Start, s.End)
}

// File represents one source file held by a Namespace: its path, its raw
// contents, and a lazily-filled line-offset cache used to translate a byte
// offset into a 1-indexed line/column for diagnostic rendering.
type File struct {
	ID       FileID
	Path     string
	Contents []byte

	lineStarts []int // byte offset of the first byte of each line; filled on first use
}

// NewFile wraps path/contents as a File with the given ID. The line-offset
// cache is built lazily by LineCol.
func NewFile(id FileID, path string, contents []byte) *File {
	return &File{ID: id, Path: path, Contents: contents}
}

func (f *File) ensureLineStarts() {
	if f.lineStarts != nil {
		return
	}
	starts := []int{0}
	for i, b := range f.Contents {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	f.lineStarts = starts
}

// LineCol translates a byte offset into a 1-indexed (line, column) pair.
// Column is a byte count within the line, not a rune count, matching the
// core's byte-offset-only span comparisons.
func (f *File) LineCol(byteOffset int) (line, col int) {
	f.ensureLineStarts()
	// binary search for the last line start <= byteOffset
	lo, hi := 0, len(f.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if f.lineStarts[mid] <= byteOffset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, byteOffset - f.lineStarts[lo] + 1
}

// LineText returns the full text of the line containing byteOffset,
// excluding the trailing newline.
func (f *File) LineText(byteOffset int) string {
	f.ensureLineStarts()
	line, _ := f.LineCol(byteOffset)
	start := f.lineStarts[line-1]
	end := len(f.Contents)
	if line < len(f.lineStarts) {
		end = f.lineStarts[line] - 1
	}
	if end < start {
		end = start
	}
	return string(f.Contents[start:end])
}

// Text returns the substring of the file's contents covered by sp. Returns
// "" for a synthetic or out-of-range span.
func (f *File) Text(sp Span) string {
	if sp.File != f.ID || sp.Start < 0 || sp.End > len(f.Contents) || sp.Start > sp.End {
		return ""
	}
	return string(f.Contents[sp.Start:sp.End])
}
