// Package extension is the call surface a host process uses to drive the
// extension: a command name plus string arguments in, a JSON array out.
package extension

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ballsym/extension/internal/dispatcher"
	"github.com/ballsym/extension/internal/util"
)

// TimestampCommand is answered without a dispatcher.
const TimestampCommand = ":TIMESTAMP:"

// ErrNoHandler is reported for commands nothing is registered for.
var ErrNoHandler = errors.New("no handler registered")

// Call handles a single "command|arg|arg" input.
func Call(input string) string {
	if input == TimestampCommand {
		return getTimestamp()
	}
	command, args := util.SplitCommand(input)
	return CallArgs(command, args)
}

// CallArgs handles a command with its arguments already split.
func CallArgs(command string, args []string) string {
	d := GetDispatcher()
	if d == nil || !d.HasHandler(command) {
		return formatDispatchResponse(command, nil, ErrNoHandler)
	}

	result, err := d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return formatDispatchResponse(command, result, err)
}

// formatDispatchResponse renders ["ok","cmd",result], ["ok","cmd"] for a nil
// result, or ["error","cmd","message"].
func formatDispatchResponse(command string, result any, err error) string {
	reply := []any{"ok", command}
	if err != nil {
		reply = []any{"error", command, err.Error()}
	} else if result != nil {
		reply = append(reply, result)
	}

	out, mErr := json.Marshal(reply)
	if mErr != nil {
		out, _ = json.Marshal([]any{"error", command, fmt.Sprintf("encoding result: %v", mErr)})
	}
	return string(out)
}

func getTimestamp() string {
	return strconv.FormatInt(time.Now().UTC().UnixNano(), 10)
}
