package tui

import (
	"fmt"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/ipc"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/window"
)

// Desktop is the window manager as the viewer drives it: either a manager in
// this process or a daemon reached over IPC.
type Desktop interface {
	State() (manager.State, error)
	Open(title, icon, content string) (window.ID, error)
	Close(id window.ID) error
	ToggleMinimize(id window.ID) error
	ToggleMaximize(id window.ID) error
	Focus(id window.ID) error
	Pointer(ev input.Event) (bool, error)
	SetViewport(size geometry.Size) error
}

// Local wraps an in-process manager.
func Local(mgr *manager.Manager) Desktop {
	return &localDesktop{mgr: mgr, dispatcher: input.NewDispatcher(mgr, nil, nil)}
}

type localDesktop struct {
	mgr        *manager.Manager
	dispatcher *input.Dispatcher
}

func (d *localDesktop) State() (manager.State, error) {
	return d.mgr.Snapshot(), nil
}

func (d *localDesktop) Open(title, icon, content string) (window.ID, error) {
	return d.mgr.Open(title, icon, content), nil
}

func (d *localDesktop) Close(id window.ID) error          { return found(id, d.mgr.Close(id)) }
func (d *localDesktop) ToggleMinimize(id window.ID) error { return found(id, d.mgr.ToggleMinimize(id)) }
func (d *localDesktop) ToggleMaximize(id window.ID) error { return found(id, d.mgr.ToggleMaximize(id)) }
func (d *localDesktop) Focus(id window.ID) error          { return found(id, d.mgr.Focus(id)) }

func (d *localDesktop) Pointer(ev input.Event) (bool, error) {
	return d.dispatcher.Dispatch(ev)
}

func (d *localDesktop) SetViewport(size geometry.Size) error {
	d.mgr.SetViewport(size)
	return nil
}

func found(id window.ID, ok bool) error {
	if !ok {
		return fmt.Errorf("window %s: %w", id, manager.ErrWindowNotFound)
	}
	return nil
}

// Remote wraps an IPC client connected to a running daemon.
func Remote(client *ipc.Client) Desktop {
	return remoteDesktop{client: client}
}

type remoteDesktop struct {
	client *ipc.Client
}

func (d remoteDesktop) State() (manager.State, error) {
	state, err := d.client.State()
	if err != nil {
		return manager.State{}, err
	}
	return *state, nil
}

func (d remoteDesktop) Open(title, icon, content string) (window.ID, error) {
	return d.client.Open(title, icon, content)
}

func (d remoteDesktop) Close(id window.ID) error          { return d.client.Close(id) }
func (d remoteDesktop) ToggleMinimize(id window.ID) error { return d.client.ToggleMinimize(id) }
func (d remoteDesktop) ToggleMaximize(id window.ID) error { return d.client.ToggleMaximize(id) }
func (d remoteDesktop) Focus(id window.ID) error          { return d.client.Focus(id) }

func (d remoteDesktop) Pointer(ev input.Event) (bool, error) {
	return d.client.Pointer(ev)
}

func (d remoteDesktop) SetViewport(size geometry.Size) error {
	return d.client.SetViewport(size)
}
