// Command heffalump_conduit is the C ABI surface the HotSync manager
// loads as a shared library. OpenConduit is the cdecl entry point it
// calls once per sync session (SPEC_FULL.md §4.9, mirroring
// original_source/conduit/src/lib.rs's own #[no_mangle] export).
package main

/*
#include <stdlib.h>

typedef struct CSyncProperties {
	const char *sync_dir_path;
} CSyncProperties;
*/
import "C"

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"unsafe"

	"github.com/heffalump/conduit/internal/enroll"
	"github.com/heffalump/conduit/internal/hflog"
	"github.com/heffalump/conduit/internal/hostsync"
	"github.com/heffalump/conduit/internal/mastoclient"
	"github.com/heffalump/conduit/internal/syncengine"
)

// logFileName is the conduit's append-only log, written inside the
// sync directory.
const logFileName = "heffalump.log"

type cSyncProperties struct {
	dir string
}

func (p cSyncProperties) SyncDirPath() string { return p.dir }

// pathFromSyncProps reads the sync directory out of the host-owned
// CSyncProperties pointer. A nil pointer or empty path is a hard
// failure, mirroring the original's path_from_sync_props.
func pathFromSyncProps(props *C.CSyncProperties) (string, bool) {
	if props == nil || props.sync_dir_path == nil {
		return "", false
	}
	return C.GoString(props.sync_dir_path), true
}

// stdHostRunner is a HostRunner stand-in for hosts that have already
// performed all device I/O by the time they call back into Go — the
// real HotSync manager's runner lives entirely on the C side, outside
// this repository's scope.
type stdHostRunner struct{}

func (stdHostRunner) Run(*hostsync.Session) error { return nil }

//export OpenConduit
func OpenConduit(_ unsafe.Pointer, props *C.CSyncProperties) (code C.long) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "heffalump_conduit: panic at host boundary: %v\n%s\n", r, debug.Stack())
			code = -1
		}
	}()

	dir, ok := pathFromSyncProps(props)
	if !ok {
		return -1
	}

	logFile, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return -1
	}
	defer logFile.Close()

	log := hflog.New(hflog.LevelInfo, logFile)

	deps := syncengine.Deps{
		SyncDir: dir,
		Log:     log,
		NewClient: func(instanceHostname, accessToken string) mastoclient.Client {
			return mastoclient.New(instanceHostname, accessToken)
		},
		Enroll: func(ctx context.Context, dir string) error {
			return enroll.Run(ctx, dir, enroll.Deps{
				Prompt:      os.Stdin,
				Output:      os.Stdout,
				Log:         log,
				RegisterApp: mastoclient.RegisterApp,
				OpenBrowser: enroll.OpenBrowser(log),
				NewClient:   mastoclient.NewUnauthenticated,
			})
		},
		Runner:     stdHostRunner{},
		Properties: cSyncProperties{dir: dir},
	}

	return C.long(syncengine.Run(context.Background(), deps))
}

func main() {}
