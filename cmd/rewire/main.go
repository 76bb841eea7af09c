package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/starkandwayne/goutils/ansi"
	"github.com/voxelbrain/goptions"

	"github.com/routelab/rewire/log"
	"github.com/routelab/rewire/pkg/rewire"
)

// Version holds the current version of rewire
var Version = "(development)"

var printfStdOut = func(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}

var getopts = func(o interface{}) {
	err := goptions.Parse(o)
	if err != nil {
		usage()
	}
}

var exit = func(code int) {
	os.Exit(code)
}

var usage = func() {
	goptions.PrintHelp()
	exit(1)
}

func envFlag(varname string) bool {
	val := os.Getenv(varname)
	return val != "" && strings.ToLower(val) != "false" && val != "0"
}

type rewireOpts struct {
	Router   string             `goptions:"-f, --file, description='Read router configuration from FILE'"`
	Patterns []string           `goptions:"-p, --patterns, description='Read patterns from FILE (may be specified more than once)'"`
	Output   string             `goptions:"-o, --output, description='Write output to FILE instead of stdout'"`
	Debug    bool               `goptions:"-D, --debug, description='Enable debugging'"`
	Trace    bool               `goptions:"-T, --trace, description='Enable trace mode debugging (very verbose)'"`
	Version  bool               `goptions:"-v, --version, description='Display version information'"`
	Help     bool               `goptions:"-h, --help, description='Show this help'"`
	Color    string             `goptions:"--color, description='Control color output (on/off/auto, default: auto)'"`
	Files    goptions.Remainder `goptions:"description='ROUTERFILE, then PATTERNFILE...'"`
}

func main() {
	var options rewireOpts
	getopts(&options)

	if envFlag("DEBUG") || options.Debug {
		log.DebugOn = true
	}

	if envFlag("TRACE") || options.Trace {
		log.TraceOn = true
		log.DebugOn = true
	}

	if options.Help {
		goptions.PrintHelp()
		exit(0)
		return
	}

	if options.Version {
		printfStdOut("rewire - Version %s\n", Version)
		exit(0)
		return
	}

	shouldEnableColor := false
	switch options.Color {
	case "on":
		shouldEnableColor = true
	case "off":
		shouldEnableColor = false
	case "auto", "":
		shouldEnableColor = isatty.IsTerminal(os.Stderr.Fd())
	default:
		log.PrintfStdErr("Invalid --color option: %s. Must be 'on', 'off', or 'auto'.\n", options.Color)
		exit(1)
		return
	}
	ansi.Color(shouldEnableColor)

	errh := rewire.NewFileErrorHandler(os.Stderr, "rewire")

	routerFile := options.Router
	patternFiles := options.Patterns
	for i, arg := range options.Files {
		if i == 0 {
			if routerFile != "" {
				errh.Errorf("router file specified twice")
				exit(1)
				return
			}
			routerFile = arg
			continue
		}
		patternFiles = append(patternFiles, arg)
	}

	patterns := rewire.NewPatternSet()
	for _, pf := range patternFiles {
		patterns.ReadPatternFile(pf, errh)
	}

	router := rewire.ReadRouterFile(routerFile, errh)
	if router == nil || errh.NErrors() > 0 {
		exit(1)
		return
	}
	router.Flatten(errh)

	if patterns.Attempted() == 0 {
		errh.Warningf("no patterns read")
	}

	rewire.Optimize(router, patterns, errh)

	log.TRACE("writing result to %q", options.Output)
	if rewire.WriteRouterFile(router, options.Output, errh) < 0 {
		exit(1)
		return
	}
	exit(0)
}
