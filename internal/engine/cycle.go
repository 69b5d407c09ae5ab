package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marcus/qn/internal/remote"
)

// SyncReport summarizes one sync cycle.
type SyncReport struct {
	Pushed      int   // operations confirmed remotely
	Dropped     int   // operations abandoned (remote record vanished)
	Pulled      int   // records fetched from the remote
	Adopted     int   // remote records new to this device
	Overwritten int   // local records replaced by newer remote ones
	Coalesced   bool  // a cycle was already running; this request was queued behind it
	Err         error // transient failure that ended the cycle early
}

// TriggerSync requests a sync cycle without blocking. Triggers that
// arrive while a cycle is running coalesce into at most one further
// cycle. Used by the connectivity monitor edge and the remote change
// subscription; Start's run loop services the requests.
func (e *Engine) TriggerSync() {
	select {
	case e.triggers <- struct{}{}:
	default:
	}
}

// SyncNow runs sync cycles until quiescent: one full cycle, plus one
// more if a trigger arrived while it ran. If a cycle is already in
// flight on another goroutine, the request is queued behind it and
// SyncNow returns immediately with Coalesced set.
func (e *Engine) SyncNow(ctx context.Context) SyncReport {
	if e.adapter == nil {
		return SyncReport{}
	}

	e.cycleMu.Lock()
	if e.running {
		e.queued = true
		e.cycleMu.Unlock()
		return SyncReport{Coalesced: true}
	}
	e.running = true
	e.cycleMu.Unlock()

	var rep SyncReport
	for {
		rep = e.runCycle(ctx)

		e.cycleMu.Lock()
		if e.queued {
			e.queued = false
			e.cycleMu.Unlock()
			continue
		}
		e.running = false
		e.cycleMu.Unlock()
		return rep
	}
}

// runCycle performs one Pushing -> Pulling -> Merging pass. Every
// failure is non-fatal: the report carries it and the engine returns
// to Idle to wait for the next trigger. There is no backoff; each
// trigger is a fresh, unconditional attempt.
func (e *Engine) runCycle(ctx context.Context) SyncReport {
	var rep SyncReport
	defer e.setState(StateIdle)

	if !e.monitor.Online() {
		rep.Err = remote.ErrRemoteUnavailable
		return rep
	}

	// Push: drain the log in sequence order. Peek semantics keep the
	// log intact until the whole drain is confirmed, so a crash
	// mid-drain re-runs from the start and the remote converges on
	// the replayed full-state writes.
	e.setState(StatePushing)
	ops, err := e.store.PendingOps()
	if err != nil {
		rep.Err = err
		e.notice("sync: read pending operations: %v", err)
		return rep
	}
	for _, op := range ops {
		op := op
		err := e.applyRemote(ctx, &op)
		if errors.Is(err, remote.ErrNotFound) {
			slog.Warn("remote record vanished during drain, dropping operation", "seq", op.Seq, "kind", op.Kind, "id", op.NoteID)
			rep.Dropped++
			continue
		}
		if err != nil {
			// Abort immediately: later entries must never jump ahead
			// of an unconfirmed earlier one. The log stays untouched.
			rep.Err = err
			rep.Pushed = 0
			e.notice("sync: push %s for %s failed, will retry: %v", op.Kind, op.NoteID, err)
			return rep
		}
		rep.Pushed++
	}
	if len(ops) > 0 {
		// Clear in one step, bounded by the drained range: an op
		// enqueued while the drain ran stays for the next cycle.
		if err := e.store.ClearOpsThrough(ops[len(ops)-1].Seq); err != nil {
			rep.Err = err
			e.notice("sync: clear operation log: %v", err)
			return rep
		}
	}

	// Pull: always a full fetch; the change channel is never trusted
	// for deltas.
	e.setState(StatePulling)
	recs, err := e.adapter.FetchAll(ctx)
	if err != nil {
		rep.Err = err
		e.notice("sync: pull failed, will retry: %v", err)
		return rep
	}
	rep.Pulled = len(recs)

	// Merge: last-writer-wins by UpdatedAt; ties keep local. Local
	// records absent from the fetch are never deleted here — absence
	// is also the normal state of an unsynced local-only note.
	e.setState(StateMerging)
	changed := 0
	for i := range recs {
		rec := recs[i]
		local, err := e.store.GetNote(rec.ID)
		if err != nil {
			rep.Err = err
			e.notice("sync: merge read %s: %v", rec.ID, err)
			return rep
		}
		switch {
		case local == nil:
			if err := e.store.PutNote(&rec); err != nil {
				rep.Err = err
				return rep
			}
			rep.Adopted++
			changed++
		case rec.UpdatedAt > local.UpdatedAt:
			if err := e.store.PutNote(&rec); err != nil {
				rep.Err = err
				return rep
			}
			rep.Overwritten++
			changed++
		}
	}
	if changed > 0 {
		e.notifyChanged()
	}

	slog.Debug("sync cycle complete",
		"pushed", rep.Pushed, "dropped", rep.Dropped,
		"pulled", rep.Pulled, "adopted", rep.Adopted, "overwritten", rep.Overwritten)
	return rep
}

// Start runs the engine's event loop until ctx is cancelled. It wires
// the two asynchronous sync triggers — connectivity edges and remote
// change notifications — into coalesced sync cycles on this goroutine.
// Remote failures are reported as notices and waited out; they never
// stop the loop.
func (e *Engine) Start(ctx context.Context) error {
	if e.adapter == nil {
		<-ctx.Done()
		return nil
	}

	edges := make(chan bool, 8)
	e.monitor.Notify(edges)
	defer e.monitor.Stop(edges)

	stop, err := e.adapter.Subscribe(ctx, e.TriggerSync)
	if err != nil {
		slog.Warn("change subscription unavailable, relying on connectivity edges", "err", err)
	}
	if stop != nil {
		defer stop()
	}

	// Initial reconciliation if we come up reachable.
	if e.monitor.Online() {
		e.TriggerSync()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case online := <-edges:
			if online {
				e.TriggerSync()
			}
		case <-e.triggers:
			rep := e.SyncNow(ctx)
			if rep.Err != nil {
				slog.Debug("sync cycle failed, waiting for next trigger", "err", rep.Err)
			}
		}
	}
}
