package source

import (
	"fmt"
)

// Span is a half-open byte range inside one file of a FileSet.
type Span struct {
	File  FileID
	Start uint32 // inclusive
	End   uint32 // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// ShiftRight moves the span forward by n bytes. Fragment-relative spans are
// turned into document spans this way.
func (s Span) ShiftRight(n uint32) Span {
	return Span{
		File:  s.File,
		Start: s.Start + n,
		End:   s.End + n,
	}
}

// Clamp keeps the span inside [0, size].
func (s Span) Clamp(size uint32) Span {
	if s.Start > size {
		s.Start = size
	}
	if s.End > size {
		s.End = size
	}
	if s.End < s.Start {
		s.End = s.Start
	}
	return s
}
