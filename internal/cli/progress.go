package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/yildizm/domainslab/internal/flow"
	"github.com/yildizm/domainslab/internal/ui/components"
)

// lineProgress draws upload progress on one terminal line. On anything
// other than a terminal it prints each new percentage on its own line.
type lineProgress struct {
	out   io.Writer
	bar   *components.ProgressBar
	tty   bool
	last  int
	drawn bool
}

func newLineProgress(out io.Writer) *lineProgress {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &lineProgress{out: out, bar: components.NewProgressBar(30), tty: tty, last: -1}
}

func (p *lineProgress) update(s flow.UploadState) {
	if !s.Uploading && !s.Processed {
		return
	}

	if s.Progress.Indeterminate {
		if !p.tty {
			return
		}
		p.bar.SetIndeterminate()
	} else {
		if s.Progress.Percent == p.last {
			return
		}
		p.last = s.Progress.Percent
		p.bar.SetPercent(s.Progress.Percent)
	}

	if p.tty {
		fmt.Fprintf(p.out, "\r%s", p.bar.Render())
	} else {
		fmt.Fprintf(p.out, "%d%%\n", p.last)
	}
	p.drawn = true
}

// finish ends the progress line
func (p *lineProgress) finish() {
	if p.tty && p.drawn {
		fmt.Fprintln(p.out)
	}
}
