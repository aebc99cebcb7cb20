package bluez

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

type exportKey struct {
	path  dbus.ObjectPath
	iface string
}

type signal struct {
	path   dbus.ObjectPath
	name   string
	values []interface{}
}

type methodCall struct {
	dest   string
	path   dbus.ObjectPath
	method string
	args   []interface{}
}

// fakeConn records exports, signals and calls. reply produces the
// result of each call; nil means success with no body.
type fakeConn struct {
	mu       sync.Mutex
	exported map[exportKey]interface{}
	signals  []signal
	calls    []methodCall
	reply    func(c methodCall) ([]interface{}, error)
	hold     map[string]bool // methods whose Go replies never arrive
}

func newFakeConn() *fakeConn {
	return &fakeConn{exported: make(map[exportKey]interface{}), hold: make(map[string]bool)}
}

func (f *fakeConn) Export(v interface{}, path dbus.ObjectPath, iface string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported[exportKey{path, iface}] = v
	return nil
}

func (f *fakeConn) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, signal{path, name, values})
	return nil
}

func (f *fakeConn) call(dest string, path dbus.ObjectPath, method string, args []interface{}) *dbus.Call {
	mc := methodCall{dest, path, method, args}
	f.mu.Lock()
	f.calls = append(f.calls, mc)
	reply := f.reply
	f.mu.Unlock()
	c := &dbus.Call{Destination: dest, Path: path, Method: method, Args: args, Done: make(chan *dbus.Call, 1)}
	if reply != nil {
		c.Body, c.Err = reply(mc)
	}
	return c
}

func (f *fakeConn) Call(dest string, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call {
	return f.call(dest, path, method, args)
}

func (f *fakeConn) Go(dest string, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call {
	c := f.call(dest, path, method, args)
	f.mu.Lock()
	hold := f.hold[method]
	f.mu.Unlock()
	if !hold {
		c.Done <- c
	}
	return c
}

func (f *fakeConn) object(path dbus.ObjectPath, iface string) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exported[exportKey{path, iface}]
}

func (f *fakeConn) methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ms []string
	for _, c := range f.calls {
		ms = append(ms, c.method)
	}
	return ms
}

// adapters answers GetManagedObjects with the given adapter paths.
func adapters(paths ...dbus.ObjectPath) map[dbus.ObjectPath]map[string]map[string]dbus.Variant {
	objs := map[dbus.ObjectPath]map[string]map[string]dbus.Variant{
		"/org/bluez": {"org.bluez.AgentManager1": {}},
	}
	for _, p := range paths {
		objs[p] = map[string]map[string]dbus.Variant{
			adapterInterface:     {"Powered": dbus.MakeVariant(false)},
			gattManagerInterface: {},
			advManagerInterface:  {},
		}
	}
	return objs
}

// syncLoop runs functions immediately on the calling goroutine.
type syncLoop struct {
	quit error
	done bool
}

func (l *syncLoop) Post(f func()) bool {
	if l.done {
		return false
	}
	f()
	return true
}

func (l *syncLoop) Do(f func()) bool { return l.Post(f) }

func (l *syncLoop) Quit(err error) {
	if !l.done {
		l.done = true
		l.quit = err
	}
}
