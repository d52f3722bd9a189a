// Package origin captures ordered caller chains for interception decisions.
//
// The registry never walks the stack itself. It is handed a CaptureFunc that
// produces an ordered list of Frames (immediate caller outward), so the
// interception core stays independent of how the chain is obtained. The
// default capture uses runtime.Callers; tests substitute fabricated chains.
package origin

import (
	"runtime"
	"strings"
)

// Frame describes one caller in the chain.
//
// Module is the Go package path of the calling function (for example
// "github.com/acme/shop/internal/orders"). Function is the bare function or
// method name without the package qualifier.
type Frame struct {
	Module   string
	File     string
	Line     int
	Function string
}

// CaptureFunc produces the caller chain, ordered from the immediate caller
// outward. skip is the number of frames to drop before the chain starts,
// counted from the CaptureFunc call site.
type CaptureFunc func(skip int) []Frame

// maxDepth bounds chain capture. Deep enough for real call stacks; keeps a
// runaway recursive caller from allocating unbounded frame slices.
const maxDepth = 64

// Capture is the default CaptureFunc, backed by runtime.Callers.
//
// The returned chain excludes Capture itself. Frames without symbol
// information (stripped binaries, assembly trampolines) are skipped.
func Capture(skip int) []Frame {
	pcs := make([]uintptr, maxDepth)
	// +2 drops runtime.Callers and Capture.
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	chain := make([]Frame, 0, n)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		fr, more := frames.Next()
		if fr.Function != "" {
			module, fn := splitFunction(fr.Function)
			chain = append(chain, Frame{
				Module:   module,
				File:     fr.File,
				Line:     fr.Line,
				Function: fn,
			})
		}
		if !more {
			break
		}
	}
	return chain
}

// splitFunction splits a fully qualified function name into its package path
// and bare function name.
//
// Qualified names look like:
//
//	github.com/acme/shop/internal/orders.(*Service).Create
//	main.run
//	testing.tRunner
//
// The package path ends at the first dot after the final slash.
func splitFunction(qualified string) (module, fn string) {
	slash := strings.LastIndex(qualified, "/")
	dot := strings.Index(qualified[slash+1:], ".")
	if dot < 0 {
		// No dot after the last slash: not a normal symbol, treat the whole
		// string as the function name.
		return "", qualified
	}
	dot += slash + 1
	return qualified[:dot], qualified[dot+1:]
}
