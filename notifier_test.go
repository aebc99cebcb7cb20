package gatt

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDemoCharacteristic(t *testing.T, opts ...Option) (*Characteristic, *fakeScheduler, *fakeEmitter) {
	app, sched, em, _ := newTestApplication(opts...)
	s := NewService(testServiceUUID)
	n := 0
	c := s.AddCharacteristic(testCharUUID, FlagRead|FlagNotify).
		HandleReadFunc(func(resp ReadResponseWriter, req *ReadRequest) {
			fmt.Fprint(resp, "Read........string read from BLE--")
		}).
		HandleNotifyFunc(func(r Request, n2 Notifier) {
			fmt.Fprintf(n2, "Notify........string notify from BLE, counter: %d", n)
			n++
		})
	require.NoError(t, app.AddService(s))
	return c, sched, em
}

func TestNotifyLifecycle(t *testing.T) {
	c, sched, em := newDemoCharacteristic(t)

	v, err := c.ReadValue(nil)
	require.NoError(t, err)
	assert.Equal(t, "Read........string read from BLE--", string(v))

	require.NoError(t, c.StartNotify())
	assert.True(t, c.Notifying())
	assert.Empty(t, em.emitted, "nothing is published before the first tick")
	require.Len(t, sched.pending, 1)
	assert.Equal(t, DefaultNotifyInterval, sched.delays[0])

	assert.Equal(t, 1, sched.fire())
	require.Len(t, em.emitted, 1)
	e := em.emitted[0]
	assert.Equal(t, c.Path(), e.path)
	assert.Equal(t, CharacteristicInterface, e.iface)
	assert.Equal(t, []byte("Notify........string notify from BLE, counter: 0"), e.changed["Value"].Value())
	assert.Empty(t, e.invalidated)
	assert.Equal(t, "Notify........string notify from BLE, counter: 0", string(c.Value()))

	assert.Equal(t, 1, sched.fire())
	require.Len(t, em.emitted, 2)
	assert.Equal(t, []byte("Notify........string notify from BLE, counter: 1"), em.emitted[1].changed["Value"].Value())

	require.NoError(t, c.StopNotify())
	assert.False(t, c.Notifying())
	// The tick armed before StopNotify still fires but publishes nothing
	// and does not re-arm.
	assert.Equal(t, 1, sched.fire())
	assert.Equal(t, 0, sched.fire())
	assert.Len(t, em.emitted, 2)
}

func TestNotifyStartTwice(t *testing.T) {
	app, sched, em, hook := newTestApplication()
	s := NewService(testServiceUUID)
	c := s.AddCharacteristic(testCharUUID, FlagRead|FlagNotify).SetValue([]byte("x"))
	require.NoError(t, app.AddService(s))

	require.NoError(t, c.StartNotify())
	require.NoError(t, c.StartNotify())
	assert.Equal(t, "Already notifying, nothing to do", hook.LastEntry().Message)
	assert.Len(t, sched.pending, 1, "second StartNotify must not arm another timer")

	sched.fire()
	assert.Len(t, em.emitted, 1)
	assert.Len(t, sched.pending, 1)
}

func TestNotifyStopWhenIdle(t *testing.T) {
	app, _, _, hook := newTestApplication()
	s := NewService(testServiceUUID)
	c := s.AddCharacteristic(testCharUUID, FlagNotify)
	require.NoError(t, app.AddService(s))

	require.NoError(t, c.StopNotify())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "Not notifying, nothing to do", hook.LastEntry().Message)
}

func TestNotifyRestart(t *testing.T) {
	c, sched, em := newDemoCharacteristic(t)

	require.NoError(t, c.StartNotify())
	require.NoError(t, c.StopNotify())
	require.NoError(t, c.StartNotify())
	// Two timers are pending: the cancelled one and the new one.
	assert.Equal(t, 2, sched.fire())
	assert.Len(t, em.emitted, 1)
	assert.Len(t, sched.pending, 1, "only the new subscription re-arms")
}

func TestNotifyInterval(t *testing.T) {
	c, sched, _ := newDemoCharacteristic(t, NotifyInterval(250*time.Millisecond))
	require.NoError(t, c.StartNotify())
	require.Len(t, sched.delays, 1)
	assert.Equal(t, 250*time.Millisecond, sched.delays[0])
}

func TestNotifyWithoutHandlerRepublishesRead(t *testing.T) {
	app, sched, em, _ := newTestApplication()
	s := NewService(testServiceUUID)
	c := s.AddCharacteristic(testCharUUID, FlagRead|FlagNotify).SetValue([]byte{1, 2})
	require.NoError(t, app.AddService(s))

	require.NoError(t, c.StartNotify())
	sched.fire()
	require.Len(t, em.emitted, 1)
	assert.Equal(t, []byte{1, 2}, em.emitted[0].changed["Value"].Value())
}

func TestNotifyStopInsideHandler(t *testing.T) {
	app, sched, em, _ := newTestApplication()
	s := NewService(testServiceUUID)
	var c *Characteristic
	c = s.AddCharacteristic(testCharUUID, FlagNotify).HandleNotifyFunc(func(r Request, n Notifier) {
		c.StopNotify()
		_, err := n.Write([]byte("late"))
		assert.Error(t, err)
		assert.True(t, n.Done())
	})
	require.NoError(t, app.AddService(s))

	require.NoError(t, c.StartNotify())
	sched.fire()
	assert.Empty(t, em.emitted)
	assert.Empty(t, sched.pending)
}

func TestNotifierWriteTooLong(t *testing.T) {
	c, sched, em := newDemoCharacteristic(t)
	c.HandleNotifyFunc(func(r Request, n Notifier) {
		_, err := n.Write(make([]byte, n.Cap()+1))
		assert.Error(t, err)
	})
	require.NoError(t, c.StartNotify())
	sched.fire()
	assert.Empty(t, em.emitted)
}
