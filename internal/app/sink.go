package app

import "github.com/marcus/modeldeck/internal/coordinator"

// notice is an error reported by the coordinator.
type notice struct {
	kind coordinator.ErrorKind
	err  error
}

// panes is the coordinator's sink. It only records what should be shown;
// Model.absorb turns the recorded changes into widget updates and commands.
// The coordinator calls it on the update goroutine, so it needs no locking.
type panes struct {
	status string
	busy   bool
	info   map[string]string
	result *coordinator.Result
	shown  *notice // error displayed in the output pane

	delivered  []coordinator.Result // not yet recorded in history
	notices    []notice             // not yet toasted
	resetInput bool
	version    uint64 // bumped on every display change
}

var _ coordinator.Sink = (*panes)(nil)

func (p *panes) StatusChanged(text string) {
	p.status = text
	p.version++
}

func (p *panes) BusyChanged(busy bool) {
	p.busy = busy
	p.version++
}

func (p *panes) Result(res coordinator.Result) {
	p.result = &res
	p.shown = nil
	p.delivered = append(p.delivered, res)
	p.version++
}

func (p *panes) Info(info map[string]string) {
	p.info = info
	p.version++
}

func (p *panes) Error(kind coordinator.ErrorKind, err error) {
	n := notice{kind: kind, err: err}
	p.shown = &n
	p.notices = append(p.notices, n)
	p.version++
}

func (p *panes) Reset() {
	p.result = nil
	p.shown = nil
	p.resetInput = true
	p.version++
}

// clearOutput drops the displayed result and error.
func (p *panes) clearOutput() {
	p.result = nil
	p.shown = nil
	p.version++
}

func (p *panes) takeDelivered() []coordinator.Result {
	out := p.delivered
	p.delivered = nil
	return out
}

func (p *panes) takeNotices() []notice {
	out := p.notices
	p.notices = nil
	return out
}
