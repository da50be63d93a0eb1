// Package resource provides the handle registry that routes native asset
// calls to redirected buffers.
//
// The native asset API hands out opaque handles on open. When an open is
// redirected, the replacement content is registered under the handle the
// native API returned; every later call on that handle consults the table
// first and falls through to the native implementation on a miss.
//
//	table := resource.NewTable[*buffer.Buffer]()
//
//	// Register after a redirected open
//	table.Register(handle, buf)
//
//	// Serve reads/seeks
//	if buf, ok := table.Lookup(handle); ok { ... }
//
//	// Take ownership back on close
//	buf, ok := table.Retire(handle)
//
// # Handle Semantics
//
// Handles are owned by the native API. They are compared and hashed only,
// never dereferenced. The native API may reuse a handle value after close,
// so Register overwrites stale entries instead of failing.
//
// # Observers
//
// Register observers to track lifecycle events:
//
//	cancel := table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("handle %x %s", e.Handle, e.Type)
//	}))
//	defer cancel()
package resource
