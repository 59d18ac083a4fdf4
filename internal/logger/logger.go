package logger

import (
	"fmt"
	"sort"
	"strings"
)

// Loc is a byte offset into the source file. A negative offset marks a
// synthesized node that has no original position.
type Loc struct {
	Start int32
}

type Range struct {
	Loc Loc
	Len int32
}

func (r Range) End() int32 {
	return r.Loc.Start + r.Len
}

type Path struct {
	Text string
}

type Source struct {
	Index uint32

	// The path to show in error messages and source maps.
	KeyPath    Path
	PrettyPath string

	// A name derived from the file name, safe to use in generated code.
	IdentifierName string

	Contents string
}

type MsgKind uint8

const (
	Error MsgKind = iota
	Warning
	Info
	Debug
)

func (kind MsgKind) String() string {
	switch kind {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	default:
		return "debug"
	}
}

type MsgLocation struct {
	File     string
	LineText string

	// Line is 1-based, Column is 0-based (in bytes).
	Line   int
	Column int
	Length int
}

type MsgData struct {
	Text     string
	Location *MsgLocation
}

type Msg struct {
	Kind MsgKind
	Data MsgData
}

func (msg Msg) String() string {
	if msg.Data.Location != nil {
		return fmt.Sprintf("%s: %s:%d:%d: %s", msg.Kind, msg.Data.Location.File,
			msg.Data.Location.Line, msg.Data.Location.Column, msg.Data.Text)
	}
	return fmt.Sprintf("%s: %s", msg.Kind, msg.Data.Text)
}

// Log collects the messages produced by a single call. It is owned by that
// call and is not safe for concurrent use.
type Log struct {
	msgs      []Msg
	hasErrors bool
}

func NewLog() *Log {
	return &Log{}
}

func (l *Log) AddMsg(msg Msg) {
	if msg.Kind == Error {
		l.hasErrors = true
	}
	l.msgs = append(l.msgs, msg)
}

func (l *Log) AddError(source *Source, loc Loc, text string) {
	l.AddMsg(Msg{Kind: Error, Data: MsgData{Text: text, Location: LocationForOffset(source, loc)}})
}

func (l *Log) AddRangeError(source *Source, r Range, text string) {
	location := LocationForOffset(source, r.Loc)
	if location != nil {
		location.Length = int(r.Len)
	}
	l.AddMsg(Msg{Kind: Error, Data: MsgData{Text: text, Location: location}})
}

func (l *Log) AddWarning(source *Source, loc Loc, text string) {
	l.AddMsg(Msg{Kind: Warning, Data: MsgData{Text: text, Location: LocationForOffset(source, loc)}})
}

func (l *Log) AddDebug(source *Source, loc Loc, text string) {
	l.AddMsg(Msg{Kind: Debug, Data: MsgData{Text: text, Location: LocationForOffset(source, loc)}})
}

func (l *Log) HasErrors() bool {
	return l.hasErrors
}

func (l *Log) Msgs() []Msg {
	return l.msgs
}

// LocationForOffset converts a byte offset into a 1-based line and 0-based
// column, carrying the text of the offending line for display.
func LocationForOffset(source *Source, loc Loc) *MsgLocation {
	if source == nil || loc.Start < 0 || int(loc.Start) > len(source.Contents) {
		return nil
	}
	contents := source.Contents
	offset := int(loc.Start)

	lineStart := strings.LastIndexByte(contents[:offset], '\n') + 1
	lineEnd := strings.IndexByte(contents[offset:], '\n')
	if lineEnd == -1 {
		lineEnd = len(contents)
	} else {
		lineEnd += offset
	}
	line := 1 + strings.Count(contents[:lineStart], "\n")

	return &MsgLocation{
		File:     source.PrettyPath,
		LineText: contents[lineStart:lineEnd],
		Line:     line,
		Column:   offset - lineStart,
	}
}

// SortMsgs orders messages by file position so output is stable regardless of
// the order passes emitted them in.
func SortMsgs(msgs []Msg) {
	sort.SliceStable(msgs, func(i int, j int) bool {
		a, b := msgs[i].Data.Location, msgs[j].Data.Location
		if a == nil || b == nil {
			return a != nil
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}
