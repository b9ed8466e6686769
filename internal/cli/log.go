// Package cli implements the commitgraph command-line interface.
//
// Commands read a commit history from a git repository or a JSON log,
// build the visible graph, and either print it, export it, browse it
// interactively or serve it over HTTP. The CLI is built using cobra and
// logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - log: Print the lane graph of a history to the terminal
//   - export: Write the graph as JSON, DOT or SVG
//   - browse: Collapse and expand the graph in an interactive terminal UI
//   - serve: Run the HTTP API
//   - cache: Manage the cache of sorted commit orders
//   - config: Print the effective configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// owned by [CLI] and handed to the packages that log.
//
// # Example
//
//	import "github.com/matzehuels/commitgraph/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger writing to w at level, with short timestamps
// ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// phase times one step of a command (reading, building) and logs it with
// its counters once it finishes.
type phase struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startPhase(l *log.Logger, name string) *phase {
	l.Debug("start", "phase", name)
	return &phase{logger: l, name: name, start: time.Now()}
}

// done logs the phase with keyvals and the elapsed time, for example
// "read commits=1200 elapsed=1.234s".
func (p *phase) done(keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(p.name, keyvals...)
}
