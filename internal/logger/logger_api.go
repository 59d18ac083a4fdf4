package logger

import (
	"fmt"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[37m"
)

var useColor = isTerminal(os.Stderr.Fd())

func printToStderr(kind MsgKind, text string) {
	if useColor {
		switch kind {
		case Error:
			fmt.Fprintf(os.Stderr, "%serror:%s %s\n", colorRed, colorReset, text)
		case Warning:
			fmt.Fprintf(os.Stderr, "%swarning:%s %s\n", colorYellow, colorReset, text)
		case Debug:
			fmt.Fprintf(os.Stderr, "%sdebug: %s%s\n", colorDim, text, colorReset)
		default:
			fmt.Fprintf(os.Stderr, "%s\n", text)
		}
		return
	}
	if kind == Info {
		fmt.Fprintf(os.Stderr, "%s\n", text)
	} else {
		fmt.Fprintf(os.Stderr, "%s: %s\n", kind, text)
	}
}

func Infof(format string, args ...any) {
	printToStderr(Info, fmt.Sprintf(format, args...))
}

func Warnf(format string, args ...any) {
	printToStderr(Warning, fmt.Sprintf(format, args...))
}

func Errorf(format string, args ...any) {
	printToStderr(Error, fmt.Sprintf(format, args...))
}

func Debugf(format string, args ...any) {
	printToStderr(Debug, fmt.Sprintf(format, args...))
}

// PrintMessages writes collected call messages to stderr.
func PrintMessages(msgs []Msg) {
	for _, msg := range msgs {
		if msg.Data.Location != nil {
			printToStderr(msg.Kind, fmt.Sprintf("%s:%d:%d: %s",
				msg.Data.Location.File, msg.Data.Location.Line, msg.Data.Location.Column, msg.Data.Text))
		} else {
			printToStderr(msg.Kind, msg.Data.Text)
		}
	}
}
