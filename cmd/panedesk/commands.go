package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/ipc"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/snap"
	"github.com/1broseidon/panedesk/internal/window"
)

// grabOffsetY is where drag grabs the header, measured from the window top.
const grabOffsetY = 10

// newFlagSet returns a flag set whose usage prints usage, description and
// the flag defaults.
func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: panedesk "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		if fs.HasFlags() {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parseFlags parses args and reports the exit code to return when parsing
// ends the command.
func parseFlags(fs *flag.FlagSet, args []string, nargs int) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != nargs {
		fmt.Fprintf(os.Stderr, "%s takes %d argument(s)\n", fs.Name(), nargs)
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "status", "Show daemon status via IPC.")
	if code, ok := parseFlags(fs, args, 0); !ok {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		return fail(err)
	}
	fmt.Printf("daemon_running:  %v\n", status.DaemonRunning)
	fmt.Printf("windows:         %d\n", status.WindowCount)
	fmt.Printf("minimized:       %d\n", status.MinimizedCount)
	fmt.Printf("viewport:        %gx%g\n", status.Viewport.Width, status.Viewport.Height)
	if status.Session != nil {
		fmt.Printf("gesture:         %s on window %s\n", status.Session.Kind, status.Session.WindowID)
	}
	if status.WebAddr != "" {
		fmt.Printf("web:             http://%s\n", status.WebAddr)
	}
	fmt.Printf("uptime_seconds:  %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "reload", "Ask the daemon to reload its configuration.")
	if code, ok := parseFlags(fs, args, 0); !ok {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		return fail(err)
	}
	fmt.Println("config: reloaded")
	return 0
}

func runList(args []string) int {
	fs := newFlagSet("list", "list [--json]", "List windows back to front.")
	jsonOut := fs.Bool("json", false, "Print the full desktop state as JSON")
	if code, ok := parseFlags(fs, args, 0); !ok {
		return code
	}

	state, err := ipc.NewClient().State()
	if err != nil {
		return fail(err)
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(state); err != nil {
			return fail(err)
		}
		return 0
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tMODE\tX\tY\tWIDTH\tHEIGHT")
	for _, w := range state.Windows {
		g := w.Geometry
		fmt.Fprintf(tw, "%s\t%s\t%s\t%g\t%g\t%g\t%g\n", w.ID, w.Title, w.Mode, g.X, g.Y, g.Width, g.Height)
	}
	return boolCode(tw.Flush() == nil)
}

func runOpen(args []string) int {
	fs := newFlagSet("open", "open [--icon ICON] [--content TEXT] [title]", "Open a window and print its id.")
	icon := fs.String("icon", "", "Icon reference shown by front-ends")
	content := fs.String("content", "", "Window content")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "open takes at most one title")
		fs.Usage()
		return 2
	}

	id, err := ipc.NewClient().Open(fs.Arg(0), *icon, *content)
	if err != nil {
		return fail(err)
	}
	fmt.Println(id)
	return 0
}

// runWindowCommand handles the commands that take only a window id.
func runWindowCommand(name, description string, args []string) int {
	fs := newFlagSet(name, name+" <id>", description)
	if code, ok := parseFlags(fs, args, 1); !ok {
		return code
	}
	id, err := window.ParseID(fs.Arg(0))
	if err != nil {
		return fail(err)
	}

	client := ipc.NewClient()
	ops := map[string]func(window.ID) error{
		"close":    client.Close,
		"minimize": client.ToggleMinimize,
		"maximize": client.ToggleMaximize,
		"focus":    client.Focus,
	}
	if err := ops[name](id); err != nil {
		return fail(err)
	}
	return 0
}

func runDrag(args []string) int {
	fs := newFlagSet("drag", "drag [--snap left|right] <id> [x y]",
		"Drag a window by its header so its top-left corner lands on (x, y), or\n"+
			"release it in a screen-edge band to snap it to that half.")
	snapTo := fs.String("snap", "", "Snap to the left or right half instead of moving")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	preview, err := snap.ParsePreview(*snapTo)
	if err != nil {
		return fail(fmt.Errorf("--snap must be left or right, got %q", *snapTo))
	}
	want := 3
	if preview != snap.None {
		want = 1
	}
	if fs.NArg() != want {
		fs.Usage()
		return 2
	}
	id, err := window.ParseID(fs.Arg(0))
	if err != nil {
		return fail(err)
	}

	client := ipc.NewClient()
	state, w, err := lookupWindow(client, id)
	if err != nil {
		return fail(err)
	}

	grab := geometry.Point{X: w.Geometry.Width / 2, Y: grabOffsetY}
	start := w.Geometry.TopLeft().Add(grab)
	var end geometry.Point
	switch preview {
	case snap.Left:
		end = geometry.Point{X: 0, Y: start.Y}
	case snap.Right:
		end = geometry.Point{X: state.Viewport.Width - 1, Y: start.Y}
	default:
		x, errX := strconv.ParseFloat(fs.Arg(1), 64)
		y, errY := strconv.ParseFloat(fs.Arg(2), 64)
		if err := errors.Join(errX, errY); err != nil {
			return fail(fmt.Errorf("invalid position: %w", err))
		}
		end = geometry.Point{X: x, Y: y}.Add(grab)
	}

	if err := gesture(client, input.Down(id, input.HeaderHandle, start), end); err != nil {
		return fail(err)
	}
	return 0
}

func runResize(args []string) int {
	fs := newFlagSet("resize", "resize <id> <direction> <dx> <dy>",
		"Resize a window by dragging an edge or corner (n, s, e, w, ne, nw, se, sw)\n"+
			"by (dx, dy). Windows never shrink below 100x100.")
	if code, ok := parseFlags(fs, args, 4); !ok {
		return code
	}
	id, err := window.ParseID(fs.Arg(0))
	if err != nil {
		return fail(err)
	}
	dir, err := window.ParseDirection(fs.Arg(1))
	if err != nil {
		return fail(err)
	}
	dx, errX := strconv.ParseFloat(fs.Arg(2), 64)
	dy, errY := strconv.ParseFloat(fs.Arg(3), 64)
	if err := errors.Join(errX, errY); err != nil {
		return fail(fmt.Errorf("invalid delta: %w", err))
	}

	client := ipc.NewClient()
	_, w, err := lookupWindow(client, id)
	if err != nil {
		return fail(err)
	}
	start := w.Geometry.TopLeft()
	end := start.Add(geometry.Point{X: dx, Y: dy})
	if err := gesture(client, input.Down(id, input.ResizeHandle(dir), start), end); err != nil {
		return fail(err)
	}
	return 0
}

func runViewport(args []string) int {
	fs := newFlagSet("viewport", "viewport <width> <height>", "Report a new viewport size to the daemon.")
	if code, ok := parseFlags(fs, args, 2); !ok {
		return code
	}
	width, errW := strconv.ParseFloat(fs.Arg(0), 64)
	height, errH := strconv.ParseFloat(fs.Arg(1), 64)
	if err := errors.Join(errW, errH); err != nil {
		return fail(fmt.Errorf("invalid size: %w", err))
	}
	if err := ipc.NewClient().SetViewport(geometry.Size{Width: width, Height: height}); err != nil {
		return fail(err)
	}
	return 0
}

// lookupWindow fetches the state and the normal-mode window id.
func lookupWindow(client *ipc.Client, id window.ID) (*manager.State, manager.Snapshot, error) {
	state, err := client.State()
	if err != nil {
		return nil, manager.Snapshot{}, err
	}
	w, ok := state.Find(id)
	if !ok {
		return nil, manager.Snapshot{}, fmt.Errorf("window %s: %w", id, manager.ErrWindowNotFound)
	}
	if w.Mode != window.ModeNormal {
		return nil, manager.Snapshot{}, fmt.Errorf("window %s is %s; restore it first", id, w.Mode)
	}
	return state, w, nil
}

// gesture sends down, a move to end and an up at end.
func gesture(client *ipc.Client, down input.Event, end geometry.Point) error {
	started, err := client.Pointer(down)
	if err != nil {
		return err
	}
	if !started {
		return fmt.Errorf("window %s is busy with another gesture", down.WindowID)
	}
	// Scoped to the window so a gesture another client took over is left alone.
	if _, err := client.Pointer(input.Move(end).For(down.WindowID)); err != nil {
		return err
	}
	ended, err := client.Pointer(input.Up(end).For(down.WindowID))
	if err != nil {
		return err
	}
	if !ended {
		return fmt.Errorf("gesture on window %s was interrupted", down.WindowID)
	}
	return nil
}

func boolCode(ok bool) int {
	if ok {
		return 0
	}
	return 1
}
