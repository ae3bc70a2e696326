// Package inmem is a memory backed store for students, mentors and admins.
// It is used by tests and by the server's -inmem mode.
package inmem

import (
	"context"
	"sync"

	"github.com/ukane-philemon/mentorship/internal/admin"
	"github.com/ukane-philemon/mentorship/internal/db"
	"github.com/ukane-philemon/mentorship/internal/mentor"
	"github.com/ukane-philemon/mentorship/internal/student"
)

// DB holds every collection. Repositories created from the same DB share
// data.
type DB struct {
	// txMu serializes transactions, mu guards the collections.
	txMu sync.Mutex
	mu   sync.Mutex

	students []*student.Student
	mentors  []*mentor.Mentor
	admins   []*admin.Admin

	fault func(op string) error
}

// New creates an empty *DB.
func New() *DB {
	return &DB{}
}

// Check that *DB implements db.Transactor.
var _ db.Transactor = (*DB)(nil)

// txKey marks a context passed to a transaction function.
type txKey struct{}

// WithTransaction implements db.Transactor. Transactions run one at a time
// and every change made by fn is undone if fn returns an error. fn must use
// the context it is given for its writes.
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := d.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, d)); err != nil {
		d.restore(snap)
		return err
	}

	return nil
}

// SetFault installs fn, which is called with the name of every write before
// it is applied. A non-nil return fails that write. Pass nil to remove it.
func (d *DB) SetFault(fn func(op string) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fault = fn
}

// lockWrite locks the collections for a write and returns the unlock func.
// A write outside a transaction also waits for any open transaction, so a
// rollback can never undo it.
func (d *DB) lockWrite(ctx context.Context) func() {
	if owner, _ := ctx.Value(txKey{}).(*DB); owner == d {
		d.mu.Lock()
		return d.mu.Unlock
	}

	d.txMu.Lock()
	d.mu.Lock()
	return func() {
		d.mu.Unlock()
		d.txMu.Unlock()
	}
}

// checkFault must be called with mu held.
func (d *DB) checkFault(op string) error {
	if d.fault == nil {
		return nil
	}
	return d.fault(op)
}

type snapshot struct {
	students []*student.Student
	mentors  []*mentor.Mentor
	admins   []*admin.Admin
}

func (d *DB) snapshot() *snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := &snapshot{
		students: make([]*student.Student, 0, len(d.students)),
		mentors:  make([]*mentor.Mentor, 0, len(d.mentors)),
		admins:   make([]*admin.Admin, 0, len(d.admins)),
	}
	for _, s := range d.students {
		snap.students = append(snap.students, s.Clone())
	}
	for _, m := range d.mentors {
		snap.mentors = append(snap.mentors, m.Clone())
	}
	for _, a := range d.admins {
		c := *a
		snap.admins = append(snap.admins, &c)
	}
	return snap
}

func (d *DB) restore(snap *snapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.students = snap.students
	d.mentors = snap.mentors
	d.admins = snap.admins
}
