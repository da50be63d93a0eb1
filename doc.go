// Package assetredirect serves a game client's assets from a resource pack
// and keeps compiled materials compatible with the running client.
//
// The client reads its assets through a small native API (open, read,
// seek, length, close and friends). This module intercepts those calls:
// a path that matches the redirect table is served from the pack instead
// of the APK, and compiled materials (.material.bin) are rewritten for the
// client's layout version on the way through.
//
// # Architecture Overview
//
//	assetredirect/
//	├── hook/          Intercepted entry points; delegates unknown handles
//	├── redirect/      Path rewrite table, pack loader, single-slot reuse cache
//	├── autofix/       Client version detection, lightmap and sampler fixes
//	├── materialbin/   Compiled material container: parse, encode, probe
//	│   └── bgfx/      Shader blobs nested inside materials
//	├── buffer/        Seekable named buffers over owned or borrowed bytes
//	├── resource/      Concurrent native handle table with lifecycle events
//	├── pack/          Directory and zip pack loaders
//	├── config/        YAML options, atomic store, file watcher
//	├── errors/        Structured error types
//	└── cmd/matfix/    Inspect, convert and browse material files
//
// # Quick Start
//
// Wire the interceptor over the real API and install it:
//
//	store := config.NewStore(nil)
//	go config.Watch(ctx, "options.yaml", store)
//
//	ic := hook.New(realAPI, hook.Config{Options: store})
//	if err := ic.Install(installer); err != nil {
//	    log.Println(err) // the client keeps working without redirection
//	}
//
//	// once the pack manager is up
//	ic.Redirector().SetLoader(packLoader)
//
// # Failure Model
//
// Nothing here may take the host process down. A path that is not
// redirected, a pack that lacks the file or a loader that is not ready
// yet all fall through to the real API. A material that cannot be parsed
// or re-encoded is served unchanged. Bad seeks and oversized lengths
// return the native error value. Panics inside an entry point are
// recovered and logged.
//
// # Thread Safety
//
// Every entry point may be called from any thread. The handle table has
// its own read/write lock, so reads and seeks on distinct handles never
// wait on an open. The redirector's cache slot and loader share one lock.
// Version detection runs once per process.
package assetredirect
