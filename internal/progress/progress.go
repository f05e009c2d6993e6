// Package progress renders the connector's TransferEvent stream as terminal
// progress bars, adapted from the teacher's mpb-based download/upload UI
// (internal/progress/downloadui.go) to this connector's single unified
// event kind instead of separate download/upload bar types.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"

	"github.com/artifactrelay/connector/internal/events"
)

// UI renders one bar per TransferID, driven entirely by events read off a
// Bus subscription. Callers that redirect stdout/stderr to a file get the
// io.Discard fallback automatically (teacher's isTerminal check).
type UI struct {
	progress   *mpb.Progress
	bars       sync.Map // transferID -> *mpb.Bar
	isTerminal bool
}

// NewUI creates a progress renderer. total is the descriptor count in the
// batch; it is not used, and bars carry no "[n/total]" prefix, only the
// event's path.
func NewUI(total int) *UI {
	isTerminal := term.IsTerminal(int(os.Stderr.Fd()))

	var p *mpb.Progress
	if isTerminal {
		p = mpb.New(
			mpb.WithOutput(os.Stderr),
			mpb.WithRefreshRate(300*time.Millisecond),
			mpb.WithWidth(100),
		)
	} else {
		p = mpb.New(mpb.WithOutput(io.Discard))
	}

	return &UI{progress: p, isTerminal: isTerminal}
}

// Run drains ch, updating bars until it's closed (Bus.Close). Meant to run
// in its own goroutine alongside the batch call.
func (u *UI) Run(ch <-chan events.TransferEvent) {
	for ev := range ch {
		switch ev.Kind {
		case events.Initiated:
			u.addBar(ev)
		case events.Progressed:
			u.advance(ev)
		case events.Succeeded:
			u.finish(ev, nil)
		case events.Corrupted:
			if u.isTerminal {
				u.progress.Write([]byte(fmt.Sprintf("! %s: checksum mismatch, kept under WARN policy\n", ev.Path)))
			}
		case events.Failed:
			u.finish(ev, ev.Err)
		}
	}
}

func (u *UI) addBar(ev events.TransferEvent) {
	if !u.isTerminal {
		fmt.Printf("start: %s\n", ev.Path)
		return
	}
	bar := u.progress.New(0,
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(decor.Name(ev.Path, decor.WCSyncSpace)),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
			decor.Name("  "),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
		mpb.BarRemoveOnComplete(),
	)
	u.bars.Store(ev.TransferID, bar)
}

func (u *UI) advance(ev events.TransferEvent) {
	v, ok := u.bars.Load(ev.TransferID)
	if !ok {
		return
	}
	bar := v.(*mpb.Bar)
	if ev.BytesTotal > 0 {
		bar.SetTotal(ev.BytesTotal, false)
	}
	bar.IncrBy(int(ev.BytesDelta))
}

func (u *UI) finish(ev events.TransferEvent, err error) {
	v, ok := u.bars.Load(ev.TransferID)
	if !ok {
		if !u.isTerminal {
			if err != nil {
				fmt.Printf("fail:  %s: %v\n", ev.Path, err)
			} else {
				fmt.Printf("done:  %s\n", ev.Path)
			}
		}
		return
	}
	bar := v.(*mpb.Bar)
	if err != nil {
		bar.Abort(false)
	} else {
		bar.SetTotal(bar.Current(), true)
	}
	u.bars.Delete(ev.TransferID)
}

// Wait blocks until every rendered bar is drained.
func (u *UI) Wait() {
	u.progress.Wait()
}
