package service

import "sync"

// Gate command tokens understood by the barrier firmware.
const (
	CommandOpenEntry = "OPEN_ENTRY"
	CommandOpenExit  = "OPEN_EXIT"
	// CommandNone is the sentinel returned to a polling actuator when the
	// mailbox is empty.
	CommandNone = "NONE"
)

// GateCommandRelay is a FIFO mailbox of pending actuator commands. Operator
// actions push; barrier controllers poll and pop the oldest token.
//
// Delivery is at-most-once and unacknowledged: once popped, a command is
// considered delivered even if the actuator never acted on it. There is no
// retry or redelivery channel.
type GateCommandRelay struct {
	mu    sync.Mutex
	queue []string
}

func NewGateCommandRelay() *GateCommandRelay {
	return &GateCommandRelay{}
}

// Push appends a command token to the mailbox.
func (r *GateCommandRelay) Push(cmd string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, cmd)
}

// Poll removes and returns the oldest pending command, or CommandNone when
// the mailbox is empty. Safe under concurrent polls; a command is delivered
// to exactly one caller.
func (r *GateCommandRelay) Poll() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.queue) == 0 {
		return CommandNone
	}
	cmd := r.queue[0]
	r.queue = r.queue[1:]
	return cmd
}

// Pending returns the number of queued commands.
func (r *GateCommandRelay) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}
