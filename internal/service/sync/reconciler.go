package sync

import (
	"context"

	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/domain/models"
	"github.com/bulgareesoft/bulgaree/internal/repository/local"
	"github.com/bulgareesoft/bulgaree/internal/service/session"
)

// Source names which snapshot a load adopted as authoritative.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
	SourceEmpty  Source = "empty"
)

// RemoteStore is the collection API a reconciler pushes to and fetches from.
type RemoteStore[T models.Record[T]] interface {
	Fetch(ctx context.Context, token string) ([]T, error)
	Upsert(ctx context.Context, token string, rows []T) error
}

// Reconciler decides, per record-set kind, which of the local and remote
// snapshots is authoritative on load, and keeps both written on save. The
// local store is the floor guarantee: every operation succeeds offline.
type Reconciler[T models.Record[T]] struct {
	kind   models.Kind
	store  *local.Store
	remote RemoteStore[T]
	queue  *Queue
	logger *zap.Logger
}

// NewReconciler wires a reconciler for one kind. All reconcilers of a process
// share a single push queue so remote writes stay serialized.
func NewReconciler[T models.Record[T]](kind models.Kind, store *local.Store, remote RemoteStore[T], queue *Queue, logger *zap.Logger) *Reconciler[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler[T]{
		kind:   kind,
		store:  store,
		remote: remote,
		queue:  queue,
		logger: logger,
	}
}

// Load resolves the authoritative record set:
//
//   - a non-empty remote snapshot always wins and overwrites the local one;
//   - an unreachable remote, or no authenticated principal, falls back to the
//     local snapshot;
//   - a reachable-but-empty remote with local data adopts the local snapshot
//     and schedules a background push to seed the empty cloud store;
//   - with nothing anywhere the set is empty.
//
// Remote failures never propagate; offline the local snapshot is the answer.
func (r *Reconciler[T]) Load(ctx context.Context, sess *session.Session) ([]T, Source) {
	var localSet []T
	r.store.Load(r.kind, &localSet)

	if sess.Authenticated() {
		remoteSet, err := r.remote.Fetch(ctx, sess.Token())
		switch {
		case err != nil:
			r.logger.Warn("remote fetch failed, falling back to local snapshot",
				zap.String("kind", string(r.kind)), zap.Error(err))

		case len(remoteSet) > 0:
			// Server wins: the cloud snapshot replaces whatever is on disk.
			if err := r.store.Save(r.kind, remoteSet); err != nil {
				r.logger.Warn("failed to refresh local snapshot from remote",
					zap.String("kind", string(r.kind)), zap.Error(err))
			}
			r.logger.Info("adopted remote snapshot",
				zap.String("kind", string(r.kind)), zap.Int("records", len(remoteSet)))
			return remoteSet, SourceRemote

		default:
			// Reachable but empty: first sign-in from a machine with offline
			// data. Seed the cloud store in the background.
			if len(localSet) > 0 {
				r.logger.Info("remote collection empty, scheduling bootstrap push",
					zap.String("kind", string(r.kind)), zap.Int("records", len(localSet)))
				r.enqueuePush(sess, localSet, "bootstrap")
			}
		}
	}

	if len(localSet) > 0 {
		return localSet, SourceLocal
	}
	return nil, SourceEmpty
}

// Save writes the record set through to the local store first,
// unconditionally, then schedules a remote push when a principal is present.
// The returned error reports only the local write; a remote failure is logged
// by the queue worker and never rolls the local write back.
func (r *Reconciler[T]) Save(ctx context.Context, sess *session.Session, records []T) error {
	err := r.store.Save(r.kind, records)
	if err != nil {
		r.logger.Warn("local snapshot write failed, in-memory state retained",
			zap.String("kind", string(r.kind)), zap.Error(err))
	}

	if sess.Authenticated() && len(records) > 0 {
		r.enqueuePush(sess, records, "save")
	}

	return err
}

// enqueuePush snapshots the records, stamps each with the principal id and
// hands the upsert to the shared worker. The token and rows are captured now;
// later session changes do not affect an in-flight job.
func (r *Reconciler[T]) enqueuePush(sess *session.Session, records []T, op string) {
	principal := sess.Principal()
	if principal == nil {
		return
	}
	token := sess.Token()

	stamped := make([]T, len(records))
	for i, rec := range records {
		stamped[i] = rec.WithUser(principal.ID)
	}

	r.queue.Enqueue(Job{
		Kind: r.kind,
		Op:   op,
		Run: func(ctx context.Context) error {
			return r.remote.Upsert(ctx, token, stamped)
		},
	})
}
