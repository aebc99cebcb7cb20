package gatt

import (
	"errors"
	"fmt"
	"time"
)

// DefaultNotifyInterval is the period between notify ticks.
const DefaultNotifyInterval = time.Second

// A Notifier provides a means for a GATT server to send
// notifications about value changes to a connected device.
// Notifiers are provided to NotifyHandlers on each tick.
type Notifier interface {
	// Write sends data to the central.
	Write(data []byte) (int, error)

	// Done reports whether the central has requested not to
	// receive any more notifications with this notifier.
	Done() bool

	// Cap returns the maximum number of bytes that may be sent
	// in a single notification.
	Cap() int
}

// notifier drives the ticks of one subscription. done is its cancellation
// token: StopNotify sets it, and a tick checks it before publishing and
// before re-arming. A notifier is only touched from the loop.
type notifier struct {
	char     *Characteristic
	sched    Scheduler
	interval time.Duration
	maxlen   int
	done     bool
}

func newNotifier(c *Characteristic, s Scheduler, interval time.Duration) *notifier {
	return &notifier{char: c, sched: s, interval: interval, maxlen: MaxAttributeLength}
}

func (n *notifier) Write(data []byte) (int, error) {
	if n.Done() {
		return 0, errors.New("central stopped notifications")
	}
	if len(data) > n.maxlen {
		return 0, fmt.Errorf("notification of %d bytes exceeds %d", len(data), n.maxlen)
	}
	if err := n.char.publish(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (n *notifier) Cap() int {
	return n.maxlen
}

func (n *notifier) Done() bool {
	return n.done
}

func (n *notifier) stop() {
	n.done = true
}

func (n *notifier) arm() {
	n.sched.AfterFunc(n.interval, n.tick)
}

func (n *notifier) tick() {
	if n.done {
		return
	}
	n.char.serveNotify(n)
	if n.done {
		return
	}
	n.arm()
}
