// Package hostapi is the call surface the game host sees. The host passes a
// command string, optionally with arguments, and reads back a single string
// response of the form ["ok", <json>] or ["error", "<message>"].
package hostapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/dispatcher"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/util"
)

// TimestampCommand is answered without a handler.
const TimestampCommand = ":TIMESTAMP:"

// ErrNoDispatcher is returned before a dispatcher is attached.
var ErrNoDispatcher = errors.New("extension not initialized")

// Host routes host calls to a dispatcher.
type Host struct {
	version    string
	dispatcher *dispatcher.Dispatcher
	now        func() time.Time
}

// New creates a host bridge. d may be nil until initialization finishes.
func New(version string, d *dispatcher.Dispatcher) *Host {
	if version == "" {
		version = "No version set"
	}
	return &Host{version: version, dispatcher: d, now: time.Now}
}

// Version is returned when the host first loads the extension.
func (h *Host) Version() string {
	return h.version
}

// SetDispatcher attaches the dispatcher commands are routed to.
func (h *Host) SetDispatcher(d *dispatcher.Dispatcher) {
	h.dispatcher = d
}

// Call handles the plain form: a bare command, or the legacy pipe form
// "CMD|a|b" when no handler matches the full input.
func (h *Host) Call(input string) string {
	if input == TimestampCommand {
		return FormatResponse(h.timestamp(), nil)
	}
	if h.dispatcher == nil {
		return FormatResponse(nil, ErrNoDispatcher)
	}

	command, args := input, []string(nil)
	if !h.dispatcher.HasHandler(input) {
		command, args = util.SplitLegacy(input)
	}
	return h.CallArgs(command, args)
}

// CallArgs handles the argument form: a command and its arguments.
func (h *Host) CallArgs(command string, args []string) string {
	if command == TimestampCommand {
		return FormatResponse(h.timestamp(), nil)
	}
	if h.dispatcher == nil {
		return FormatResponse(nil, ErrNoDispatcher)
	}

	result, err := h.dispatcher.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: h.now(),
	})
	return FormatResponse(result, err)
}

func (h *Host) timestamp() string {
	return strconv.FormatInt(h.now().UTC().UnixNano(), 10)
}

// FormatResponse formats a dispatcher result for the host.
func FormatResponse(result any, err error) string {
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		return fmt.Sprintf(`["error", %s]`, msg)
	}
	if result == nil {
		return `["ok"]`
	}
	data, err := json.Marshal(result)
	if err != nil {
		msg, _ := json.Marshal(fmt.Sprintf("encoding result: %v", err))
		return fmt.Sprintf(`["error", %s]`, msg)
	}
	return fmt.Sprintf(`["ok", %s]`, data)
}

// Truncate cuts response to fit a host buffer of size bytes, keeping room
// for the terminating NUL the host expects.
func Truncate(response string, size int) string {
	if size <= 0 {
		return ""
	}
	if len(response) < size {
		return response
	}
	return response[:size-1]
}
