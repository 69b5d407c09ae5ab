package cmd

import (
	"os"
	"strings"

	"github.com/marcus/qn/internal/engine"
	"github.com/marcus/qn/internal/netmon"
	"github.com/marcus/qn/internal/output"
	"github.com/marcus/qn/internal/remote"
	"github.com/marcus/qn/internal/remoteclient"
	"github.com/marcus/qn/internal/store"
	"github.com/marcus/qn/internal/syncconfig"
)

// openEngine wires store, connectivity monitor, and (if configured)
// the remote adapter into an engine. The caller must invoke the
// returned cleanup function.
func openEngine() (*engine.Engine, func(), error) {
	s, err := store.Open(getBaseDir())
	if err != nil {
		return nil, nil, err
	}

	adapter := buildAdapter()
	monitor := netmon.New(!offlineRequested())

	e := engine.New(s, adapter, monitor,
		engine.WithNotice(func(format string, args ...any) {
			output.Warning(format, args...)
		}))
	return e, func() { s.Close() }, nil
}

// buildAdapter returns the configured remote adapter, or nil for pure
// local mode (sync disabled or no credentials).
func buildAdapter() remote.Adapter {
	if !syncconfig.SyncEnabled() {
		return nil
	}
	key := syncconfig.GetAuthKey()
	if key == "" {
		return nil
	}
	deviceID, err := syncconfig.GetDeviceID()
	if err != nil {
		output.Warning("device id unavailable, continuing without one: %v", err)
	}
	return remoteclient.New(syncconfig.GetServerURL(), key, deviceID)
}

// offlineRequested reports whether the user forced offline mode via
// QN_OFFLINE. The monitor otherwise starts online and the engine
// discovers real reachability through call outcomes.
func offlineRequested() bool {
	v := strings.ToLower(os.Getenv("QN_OFFLINE"))
	return v == "1" || v == "true"
}
