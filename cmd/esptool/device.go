package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/schollz/progressbar/v3"

	"github.com/matthewtherat/xtensa-toolchain/bootloader"
	"github.com/matthewtherat/xtensa-toolchain/port"
)

// parseUint32 accepts decimal, hex (0x) and octal (0) notation, the
// way addresses are usually written on the command line.
func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return uint32(v), nil
}

// stderrLogger adapts the bootloader's logging interface to plain
// stderr lines for --verbose runs.
type stderrLogger struct{}

func (stderrLogger) log(level, msg string, keysAndValues []interface{}) {
	fmt.Fprintf(os.Stderr, "%s: %s", level, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(os.Stderr, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	fmt.Fprintln(os.Stderr)
}

func (l stderrLogger) Debug(msg string, keysAndValues ...interface{}) { l.log("debug", msg, keysAndValues) }
func (l stderrLogger) Info(msg string, keysAndValues ...interface{})  { l.log("info", msg, keysAndValues) }
func (l stderrLogger) Error(msg string, keysAndValues ...interface{}) { l.log("error", msg, keysAndValues) }

// barReporter renders transfer progress as a console progress bar.
// A new bar starts whenever the total changes, which happens once per
// segment or region.
type barReporter struct {
	bar   *progressbar.ProgressBar
	total int
	phase string
}

func (r *barReporter) report(p bootloader.Progress) {
	switch p.Phase {
	case bootloader.PhaseErasing:
		fmt.Println("Erasing flash...")
	case bootloader.PhaseWriting, bootloader.PhaseReading:
		if r.bar == nil || r.total != p.Total || r.phase != p.Phase {
			desc := "Writing"
			if p.Phase == bootloader.PhaseReading {
				desc = "Reading"
			}
			r.bar = progressbar.NewOptions(p.Total,
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription(desc),
			)
			r.total = p.Total
			r.phase = p.Phase
		}
		r.bar.Set(p.Current)
	case bootloader.PhaseComplete:
		if r.bar != nil {
			r.bar.Finish()
			fmt.Println()
			r.bar = nil
		}
	}
}

// connect opens the serial port and brings the chip into bootloader
// mode. The caller closes the returned port.
func connect() (*bootloader.Client, *port.Port, error) {
	p, err := port.Open(serialPort, baudRate)
	if err != nil {
		return nil, nil, err
	}

	opts := []bootloader.Option{
		bootloader.WithProgressCallback((&barReporter{}).report),
	}
	if verbose {
		opts = append(opts, bootloader.WithLogger(stderrLogger{}))
	}

	client := bootloader.New(p, opts...)
	fmt.Println("Connecting...")
	if err := client.Connect(); err != nil {
		p.Close()
		return nil, nil, err
	}
	return client, p, nil
}
