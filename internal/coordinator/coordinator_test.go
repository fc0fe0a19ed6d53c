package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marcus/modeldeck/internal/adapter"
	"github.com/marcus/modeldeck/internal/adapter/stub"
)

type recordingSink struct {
	mu      sync.Mutex
	events  []string
	results []Result
	errs    []error
	kinds   []ErrorKind
	infos   []map[string]string
	busy    bool
	status  string
}

func (s *recordingSink) add(ev string) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) StatusChanged(text string) {
	s.status = text
	s.add("status:" + text)
}

func (s *recordingSink) BusyChanged(busy bool) {
	s.busy = busy
	s.add(fmt.Sprintf("busy:%v", busy))
}

func (s *recordingSink) Result(res Result) {
	s.results = append(s.results, res)
	s.add("result")
}

func (s *recordingSink) Info(info map[string]string) {
	s.infos = append(s.infos, info)
	s.add("info")
}

func (s *recordingSink) Error(kind ErrorKind, err error) {
	s.kinds = append(s.kinds, kind)
	s.errs = append(s.errs, err)
	s.add("error:" + string(kind))
}

func (s *recordingSink) Reset() { s.add("reset") }

func newTestCoordinator(t *testing.T, adapters ...adapter.Adapter) (*Coordinator, *recordingSink) {
	t.Helper()
	reg := adapter.NewRegistry()
	for _, a := range adapters {
		if err := reg.Register(a); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	sink := &recordingSink{}
	return New(reg, sink, WithPollInterval(5*time.Millisecond)), sink
}

func mustRun(t *testing.T, c *Coordinator, p adapter.Payload) {
	t.Helper()
	cmd, err := c.RequestRun(p)
	if err != nil {
		t.Fatalf("RequestRun: %v", err)
	}
	if cmd == nil {
		t.Fatal("RequestRun returned nil poll command")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Drive(ctx, cmd); err != nil {
		t.Fatalf("Drive: %v", err)
	}
}

func TestNew_SelectsFirstAdapter(t *testing.T) {
	c, _ := newTestCoordinator(t, stub.Echo("a"), stub.Echo("b"))
	if got := c.Selected(); got != "a" {
		t.Errorf("Selected() = %q, want a", got)
	}
	if c.Busy() {
		t.Error("new coordinator is busy")
	}
	if got := c.Status(); got != "Ready" {
		t.Errorf("Status() = %q, want Ready", got)
	}
}

func TestRun_SlowAdapterLifecycle(t *testing.T) {
	slow := stub.Slow("slow", 200*time.Millisecond, "done")
	c, sink := newTestCoordinator(t, slow)

	if err := c.RequestLoad(false); err != nil {
		t.Fatalf("RequestLoad: %v", err)
	}
	if c.Loaded() != "slow" {
		t.Fatalf("Loaded() = %q, want slow", c.Loaded())
	}

	start := time.Now()
	cmd, err := c.RequestRun(adapter.TextPayload("x"))
	if err != nil {
		t.Fatalf("RequestRun: %v", err)
	}
	if !c.Busy() {
		t.Fatal("coordinator should be busy right after dispatch")
	}
	snap := c.Snapshot()
	if snap.Active == nil || snap.Active.Adapter != "slow" {
		t.Fatalf("Snapshot().Active = %+v, want slow request", snap.Active)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Drive(ctx, cmd); err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if waited := time.Since(start); waited > 2*time.Second {
		t.Errorf("run took %v", waited)
	}

	if c.Busy() {
		t.Error("coordinator still busy after delivery")
	}
	if len(sink.results) != 1 {
		t.Fatalf("got %d results, want 1", len(sink.results))
	}
	res := sink.results[0]
	if !res.OK() {
		t.Fatalf("result error: %v", res.Err)
	}
	if got := res.Output.Result(); got != "done" {
		t.Errorf("result = %q, want done", got)
	}
	ms, ok := res.Output.ElapsedMS()
	if !ok || ms < 150 {
		t.Errorf("elapsed_ms = %v (%v), want about 200", ms, ok)
	}
	if !strings.HasPrefix(sink.status, "Ran slow in ") {
		t.Errorf("final status = %q", sink.status)
	}
}

func TestRun_EchoReturnsPayload(t *testing.T) {
	c, sink := newTestCoordinator(t, stub.Echo("echo"))
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	mustRun(t, c, adapter.TextPayload("hello"))

	if got := sink.results[0].Output.Result(); got != "hello" {
		t.Errorf("result = %q, want hello", got)
	}
	if len(sink.infos) == 0 || sink.infos[len(sink.infos)-1][adapter.InfoStatus] != adapter.StatusLoaded {
		t.Errorf("info after run = %v", sink.infos)
	}
}

func TestRun_NotLoaded(t *testing.T) {
	echo := stub.Echo("echo")
	c, sink := newTestCoordinator(t, echo)

	cmd, err := c.RequestRun(adapter.TextPayload("x"))
	var nle *NotLoadedError
	if !errors.As(err, &nle) {
		t.Fatalf("err = %v, want *NotLoadedError", err)
	}
	if cmd != nil {
		t.Error("expected nil command")
	}
	if c.Busy() {
		t.Error("gate must not be entered")
	}
	if echo.Runs() != 0 {
		t.Errorf("Run called %d times", echo.Runs())
	}
	if !slices.Equal(sink.kinds, []ErrorKind{KindNotLoaded}) {
		t.Errorf("kinds = %v", sink.kinds)
	}
}

func TestRun_RejectedWhileBusy(t *testing.T) {
	gate := make(chan struct{})
	g := stub.Gated("gated", gate, "ok")
	c, sink := newTestCoordinator(t, g)
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}

	cmd, err := c.RequestRun(adapter.TextPayload("1"))
	if err != nil {
		t.Fatal(err)
	}
	events := len(sink.events)

	if _, err := c.RequestRun(adapter.TextPayload("2")); !errors.Is(err, ErrBusy) {
		t.Errorf("second run err = %v, want ErrBusy", err)
	}
	if err := c.RequestLoad(true); !errors.Is(err, ErrBusy) {
		t.Errorf("load while busy err = %v, want ErrBusy", err)
	}
	if err := c.Select("gated"); !errors.Is(err, ErrBusy) {
		t.Errorf("select while busy err = %v, want ErrBusy", err)
	}
	if len(sink.events) != events {
		t.Errorf("rejections reached the sink: %v", sink.events[events:])
	}

	close(gate)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Drive(ctx, cmd); err != nil {
		t.Fatal(err)
	}
	if g.Runs() != 1 {
		t.Errorf("Runs() = %d, want 1", g.Runs())
	}
	if len(sink.results) != 1 {
		t.Errorf("got %d results, want 1", len(sink.results))
	}
}

func TestRun_ErrorDeliveredOnce(t *testing.T) {
	c, sink := newTestCoordinator(t, stub.FailingRun("bad"))
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	mustRun(t, c, adapter.TextPayload("x"))

	if len(sink.results) != 1 {
		t.Fatalf("got %d results, want 1", len(sink.results))
	}
	res := sink.results[0]
	var re *adapter.RunError
	if !errors.As(res.Err, &re) || !errors.Is(res.Err, stub.ErrStub) {
		t.Errorf("err = %v, want RunError wrapping ErrStub", res.Err)
	}
	if res.Output != nil {
		t.Errorf("output = %v, want nil", res.Output)
	}
	if !slices.Equal(sink.kinds, []ErrorKind{KindRun}) {
		t.Errorf("kinds = %v", sink.kinds)
	}
	if c.Busy() || sink.status != "Error" {
		t.Errorf("busy=%v status=%q", c.Busy(), sink.status)
	}
}

func TestRun_PanicCaptured(t *testing.T) {
	c, sink := newTestCoordinator(t, stub.PanickingRun("boom"))
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	mustRun(t, c, adapter.TextPayload("x"))

	if len(sink.results) != 1 {
		t.Fatalf("got %d results", len(sink.results))
	}
	err := sink.results[0].Err
	if err == nil || !strings.Contains(err.Error(), "stub panic") {
		t.Errorf("err = %v, want captured panic", err)
	}
	if c.Busy() {
		t.Error("gate still held after panic")
	}
}

func TestCancel_DropsStaleResult(t *testing.T) {
	gate := make(chan struct{})
	g := stub.Gated("gated", gate, "late")
	c, sink := newTestCoordinator(t, g)
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}

	cmd, err := c.RequestRun(adapter.TextPayload("x"))
	if err != nil {
		t.Fatal(err)
	}
	if !c.RequestCancel() {
		t.Fatal("RequestCancel returned false while busy")
	}
	if c.Busy() {
		t.Error("still busy after cancel")
	}
	if sink.status != "Cancelled (soft)" {
		t.Errorf("status = %q", sink.status)
	}

	close(gate)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Drive(ctx, cmd); err != nil {
		t.Fatal(err)
	}
	if len(sink.results) != 0 {
		t.Errorf("stale result delivered: %+v", sink.results)
	}
	if c.RequestCancel() {
		t.Error("second cancel should be a no-op")
	}
}

func TestCancel_NewRunAfterCancel(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	g := stub.Gated("gated", gate, "late")
	echo := stub.Echo("echo")
	c, sink := newTestCoordinator(t, g, echo)
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	stale, err := c.RequestRun(adapter.TextPayload("x"))
	if err != nil {
		t.Fatal(err)
	}
	c.RequestCancel()

	if err := c.LoadAdapter("echo", true); err != nil {
		t.Fatal(err)
	}
	mustRun(t, c, adapter.TextPayload("fresh"))

	if c.HandlePoll(stale().(PollMsg)) != nil {
		t.Error("stale tick rescheduled")
	}
	if len(sink.results) != 1 || sink.results[0].Output.Result() != "fresh" {
		t.Errorf("results = %+v", sink.results)
	}
}

func TestLoad_SwitchNeedsConfirmation(t *testing.T) {
	a, b := stub.Echo("a"), stub.Echo("b")
	c, _ := newTestCoordinator(t, a, b)
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	if err := c.Select("b"); err != nil {
		t.Fatal(err)
	}
	from, ok := c.NeedsSwitchConfirm()
	if !ok || from != "a" {
		t.Fatalf("NeedsSwitchConfirm() = %q, %v", from, ok)
	}

	err := c.RequestLoad(false)
	var sce *SwitchConfirmationError
	if !errors.As(err, &sce) || sce.From != "a" || sce.To != "b" {
		t.Fatalf("err = %v, want SwitchConfirmationError a->b", err)
	}
	if b.Loads() != 0 || a.Releases() != 0 || c.Loaded() != "a" {
		t.Errorf("unconfirmed switch changed state: loads=%d releases=%d loaded=%q", b.Loads(), a.Releases(), c.Loaded())
	}
}

func TestLoad_SwitchReleasesPreviousFirst(t *testing.T) {
	log := &stub.Log{}
	a, b := stub.Echo("a"), stub.Echo("b")
	a.Log, b.Log = log, log
	c, sink := newTestCoordinator(t, a, b)

	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	if err := c.LoadAdapter("b", true); err != nil {
		t.Fatal(err)
	}

	want := []string{"load:a", "release:a", "load:b"}
	if got := log.Events(); !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if !slices.Contains(sink.events, "reset") {
		t.Error("display was not reset on switch")
	}
	if c.Loaded() != "b" {
		t.Errorf("Loaded() = %q, want b", c.Loaded())
	}
}

func TestLoad_ReloadSameAdapter(t *testing.T) {
	a := stub.Echo("a")
	c, _ := newTestCoordinator(t, a)
	for range 2 {
		if err := c.RequestLoad(false); err != nil {
			t.Fatal(err)
		}
	}
	if a.Loads() != 2 || a.Releases() != 0 {
		t.Errorf("loads=%d releases=%d", a.Loads(), a.Releases())
	}
}

func TestLoad_FailureReleasesGate(t *testing.T) {
	c, sink := newTestCoordinator(t, stub.FailingLoad("bad"))
	err := c.RequestLoad(false)
	var le *adapter.LoadError
	if !errors.As(err, &le) || !errors.Is(err, stub.ErrStub) {
		t.Fatalf("err = %v, want LoadError wrapping ErrStub", err)
	}
	if c.Busy() {
		t.Error("gate held after failed load")
	}
	if c.Loaded() != "" {
		t.Errorf("Loaded() = %q, want empty", c.Loaded())
	}
	if !slices.Equal(sink.kinds, []ErrorKind{KindLoad}) {
		t.Errorf("kinds = %v", sink.kinds)
	}
	if sink.busy {
		t.Error("sink still shows busy")
	}
}

func TestLoad_PanicReleasesGate(t *testing.T) {
	p := stub.Echo("p")
	p.LoadFunc = func() error { panic("load panic") }
	c, _ := newTestCoordinator(t, p)

	err := c.RequestLoad(false)
	if err == nil || !strings.Contains(err.Error(), "load panic") {
		t.Fatalf("err = %v", err)
	}
	if c.Busy() {
		t.Error("gate held after panicking load")
	}
}

func TestSelect_Unknown(t *testing.T) {
	c, sink := newTestCoordinator(t, stub.Echo("a"))
	err := c.Select("nope")
	var nfe *adapter.NotFoundError
	if !errors.As(err, &nfe) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if c.Selected() != "a" {
		t.Errorf("selection changed to %q", c.Selected())
	}
	if !slices.Equal(sink.kinds, []ErrorKind{KindNotFound}) {
		t.Errorf("kinds = %v", sink.kinds)
	}
}

type panickySink struct {
	recordingSink
}

func (s *panickySink) Result(Result) { panic("display broke") }

func TestDelivery_PanicReported(t *testing.T) {
	reg := adapter.NewRegistry()
	_ = reg.Register(stub.Echo("a"))
	sink := &panickySink{}
	c := New(reg, sink, WithPollInterval(time.Millisecond))
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	mustRun(t, c, adapter.TextPayload("x"))

	if c.Busy() {
		t.Error("gate held after delivery failure")
	}
	if !slices.Contains(sink.kinds, KindDelivery) {
		t.Errorf("kinds = %v, want delivery error", sink.kinds)
	}
}

func TestSnapshot_WorkerState(t *testing.T) {
	gate := make(chan struct{})
	c, _ := newTestCoordinator(t, stub.Gated("g", gate, "ok"))
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	cmd, err := c.RequestRun(adapter.TextPayload("x"))
	if err != nil {
		t.Fatal(err)
	}
	s := c.Snapshot()
	if !s.Busy || !s.WorkerAlive || s.ResultPending {
		t.Errorf("snapshot while running = %+v", s)
	}

	close(gate)
	deadline := time.Now().Add(2 * time.Second)
	for !c.Snapshot().ResultPending && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s := c.Snapshot(); s.WorkerAlive || !s.ResultPending || !s.Busy {
		t.Errorf("snapshot before drain = %+v", s)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Drive(ctx, cmd); err != nil {
		t.Fatal(err)
	}
	if s := c.Snapshot(); s.Busy || s.Active != nil {
		t.Errorf("snapshot after drain = %+v", s)
	}
}

func TestDrive_ContextCancelsRun(t *testing.T) {
	gate := make(chan struct{})
	defer close(gate)
	c, sink := newTestCoordinator(t, stub.Gated("g", gate, "ok"))
	if err := c.RequestLoad(false); err != nil {
		t.Fatal(err)
	}
	cmd, err := c.RequestRun(adapter.TextPayload("x"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := c.Drive(ctx, cmd); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Drive err = %v", err)
	}
	if c.Busy() || sink.status != "Cancelled (soft)" {
		t.Errorf("busy=%v status=%q", c.Busy(), sink.status)
	}
}
