package content

import "fmt"

// FlowState is the dialog lifecycle of one content type's editor:
// idle -> open(adding|editing) -> saving -> idle on success, back to open on
// error. Each content type's flow is independent.
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowOpen
	FlowSaving
)

type FlowMode int

const (
	ModeNone FlowMode = iota
	ModeAdding
	ModeEditing
)

// EditFlow sequences one dialog's open/edit/save/delete lifecycle and owns
// the IDs of uploads staged while the dialog is open. Staged uploads are
// only sent to the media host at save time; closing or cancelling the
// dialog releases them.
type EditFlow struct {
	state    FlowState
	mode     FlowMode
	entityID string
	pending  []string
	lastErr  string
}

func (f *EditFlow) State() FlowState { return f.state }
func (f *EditFlow) Mode() FlowMode   { return f.mode }
func (f *EditFlow) EntityID() string { return f.entityID }
func (f *EditFlow) LastError() string {
	return f.lastErr
}

// OpenAdd opens the dialog for a new entity.
func (f *EditFlow) OpenAdd() error {
	if f.state != FlowIdle {
		return fmt.Errorf("dialog already open")
	}
	f.state = FlowOpen
	f.mode = ModeAdding
	f.entityID = ""
	f.lastErr = ""
	return nil
}

// OpenEdit opens the dialog pre-populated with an existing entity.
func (f *EditFlow) OpenEdit(entityID string) error {
	if f.state != FlowIdle {
		return fmt.Errorf("dialog already open")
	}
	f.state = FlowOpen
	f.mode = ModeEditing
	f.entityID = entityID
	f.lastErr = ""
	return nil
}

// StagePending records an upload staged while the dialog is open. Staging a
// replacement for the same slot returns the superseded ID so the caller can
// release its local file immediately.
func (f *EditFlow) StagePending(pendingID string) {
	f.pending = append(f.pending, pendingID)
}

// DiscardPending removes one staged upload, returning true when it was held.
func (f *EditFlow) DiscardPending(pendingID string) bool {
	for i, id := range f.pending {
		if id == pendingID {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Pending lists the staged upload IDs to send at save time.
func (f *EditFlow) Pending() []string {
	out := make([]string, len(f.pending))
	copy(out, f.pending)
	return out
}

// BeginSave transitions to saving. The save button stays disabled until the
// write resolves or rejects; no client-side timeout abandons a write.
func (f *EditFlow) BeginSave() error {
	if f.state != FlowOpen {
		return fmt.Errorf("no dialog open")
	}
	f.state = FlowSaving
	return nil
}

// SaveSucceeded closes the dialog; staged uploads were consumed by the save.
func (f *EditFlow) SaveSucceeded() {
	f.state = FlowIdle
	f.mode = ModeNone
	f.entityID = ""
	f.pending = nil
	f.lastErr = ""
}

// SaveFailed returns to the open dialog with the error visible, keeping
// staged uploads so the user can retry without re-selecting files.
func (f *EditFlow) SaveFailed(message string) {
	f.state = FlowOpen
	f.lastErr = message
}

// Close cancels the dialog and returns the staged upload IDs the caller must
// release.
func (f *EditFlow) Close() []string {
	released := f.pending
	f.state = FlowIdle
	f.mode = ModeNone
	f.entityID = ""
	f.pending = nil
	f.lastErr = ""
	return released
}
