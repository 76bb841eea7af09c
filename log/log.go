package log

import (
	"fmt"
	"os"
)

// DebugOn enables DEBUG output when true
var DebugOn = false

// TraceOn enables TRACE output when true
var TraceOn = false

// PrintfStdErr prints to stderr
var PrintfStdErr = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
}

// DEBUG prints a debug message to stderr when debugging is enabled
func DEBUG(format string, args ...interface{}) {
	if DebugOn {
		PrintfStdErr("DEBUG> "+format+"\n", args...)
	}
}

// TRACE prints a trace message to stderr when trace mode is enabled
func TRACE(format string, args ...interface{}) {
	if TraceOn {
		PrintfStdErr("TRACE> "+format+"\n", args...)
	}
}
