package panel

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/cleartag/cleartag/internal/render"
)

// ErrBusy is returned by Begin while a scan cycle is still in flight.
var ErrBusy = errors.New("a scan is already in progress")

// State is the position of the panel in a scan cycle
type State string

const (
	StateIdle             State = "idle"
	StateCapturing        State = "capturing"
	StateAwaitingResponse State = "awaiting_response"
	StateRendered         State = "rendered"
	StateFailed           State = "failed"
)

// Busy reports whether a cycle is in flight in this state
func (s State) Busy() bool {
	return s == StateCapturing || s == StateAwaitingResponse
}

// Snapshot is a copy of the panel that surfaces can paint without holding
// the panel lock.
type Snapshot struct {
	CycleID        string       `json:"cycle_id,omitempty" yaml:"cycle_id,omitempty"`
	State          State        `json:"state" yaml:"state"`
	Visible        bool         `json:"visible" yaml:"visible"`
	Loading        bool         `json:"loading" yaml:"loading"`
	PreviewVisible bool         `json:"preview_visible" yaml:"preview_visible"`
	Content        *render.View `json:"content,omitempty" yaml:"content,omitempty"`
}

// Panel controls the results overlay: its visibility, the loader and the
// mounted view.
type Panel struct {
	mu             sync.Mutex
	cycleID        string
	state          State
	visible        bool
	loading        bool
	previewVisible bool
	content        *render.View
}

// New returns a hidden, idle panel
func New() *Panel {
	return &Panel{state: StateIdle}
}

// Begin starts a new cycle and returns its id. The panel is opened in the
// same step so no other caller can slip in between.
func (p *Panel) Begin() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Busy() {
		return "", ErrBusy
	}
	p.cycleID = uuid.NewString()
	p.state = StateCapturing
	p.open()
	return p.cycleID, nil
}

// open shows the panel with the loader and no content.
func (p *Panel) open() {
	p.visible = true
	p.loading = true
	p.previewVisible = false
	p.content = nil
}

// AwaitResponse marks the capture as done and the request as sent.
func (p *Panel) AwaitResponse(cycleID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cycleID != p.cycleID || p.state != StateCapturing {
		return
	}
	p.state = StateAwaitingResponse
}

// OnResultReady hides the loader and mounts view. Calls for a cycle that has
// since been closed are dropped.
func (p *Panel) OnResultReady(cycleID string, view render.View) {
	p.finish(cycleID, view, StateRendered)
}

// OnFailure hides the loader and mounts an error card view.
func (p *Panel) OnFailure(cycleID string, view render.View) {
	p.finish(cycleID, view, StateFailed)
}

func (p *Panel) finish(cycleID string, view render.View, state State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cycleID != p.cycleID || !p.state.Busy() {
		return
	}
	p.state = state
	p.loading = false
	p.content = &view
	p.previewVisible = view.Preview != nil
}

// Close hides the panel and drops the preview and content so the next open
// starts clean.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible = false
	p.loading = false
	p.previewVisible = false
	p.content = nil
	p.cycleID = ""
	p.state = StateIdle
}

// State returns the current cycle state
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Snapshot copies the panel
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{
		CycleID:        p.cycleID,
		State:          p.state,
		Visible:        p.visible,
		Loading:        p.loading,
		PreviewVisible: p.previewVisible,
	}
	if p.content != nil {
		content := *p.content
		content.Rows = make([]render.Row, len(p.content.Rows))
		copy(content.Rows, p.content.Rows)
		snap.Content = &content
	}
	return snap
}
