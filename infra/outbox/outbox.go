// Package outbox durably records executions until they are published.
// Each record moves NEW → SENT → ACKED, or to FAILED after too many
// publish attempts. Records are keyed by a gapless sequence that resumes
// from the store on Open.
package outbox

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"matchbook/infra/sequence"
	"matchbook/infra/wire"
)

// -------------------- State --------------------

type State uint8

const (
	StateNew State = iota
	StateSent
	StateAcked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

var ErrNotFound = errors.New("outbox: record not found")

// -------------------- Record --------------------

type Record struct {
	Seq         uint64
	State       State
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

const headerLen = 1 + 4 + 8

// binary encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeRecord(r Record) []byte {
	buf := make([]byte, headerLen+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[headerLen:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (Record, error) {
	if len(b) < headerLen {
		return Record{}, errors.Errorf("outbox: record %d too short (%d bytes)", seq, len(b))
	}
	payload := make([]byte, len(b)-headerLen)
	copy(payload, b[headerLen:])
	return Record{
		Seq:         seq,
		State:       State(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// -------------------- Outbox --------------------

type Outbox struct {
	db  *pebble.DB
	seq *sequence.Sequencer
	now func() time.Time
}

func Open(dir string) (*Outbox, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "outbox: open")
	}

	o := &Outbox{db: db, seq: sequence.New(0), now: time.Now}
	last, err := o.lastSeq()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	o.seq.Reset(last)
	return o, nil
}

func (o *Outbox) Close() error {
	return o.db.Close()
}

// LastSeq is the sequence of the newest record ever appended.
func (o *Outbox) LastSeq() uint64 { return o.seq.Current() }

// -------------------- API --------------------

// Append stores payload as a NEW record and returns its sequence.
func (o *Outbox) Append(payload []byte) (uint64, error) {
	seq := o.seq.Next()

	b := o.db.NewBatch()
	defer b.Close()
	if err := b.Set(keyFor(seq), encodeRecord(Record{Seq: seq, State: StateNew, Payload: payload}), nil); err != nil {
		return 0, errors.Wrap(err, "outbox: append")
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], seq)
	if err := b.Set([]byte(metaSeqKey), meta[:], nil); err != nil {
		return 0, errors.Wrap(err, "outbox: append")
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return 0, errors.Wrap(err, "outbox: append")
	}
	return seq, nil
}

// AppendExecution stores e, names included, in wire format.
func (o *Outbox) AppendExecution(e wire.Execution) (uint64, error) {
	return o.Append(wire.EncodeExecution(e))
}

func (o *Outbox) Get(seq uint64) (Record, error) {
	val, closer, err := o.db.Get(keyFor(seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return Record{}, errors.Wrapf(ErrNotFound, "seq %d", seq)
	}
	if err != nil {
		return Record{}, errors.Wrap(err, "outbox: get")
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

// MarkSent records a publish attempt.
func (o *Outbox) MarkSent(seq uint64) error {
	return o.update(seq, func(r *Record) {
		r.State = StateSent
		r.Retries++
		r.LastAttempt = o.now().UnixNano()
	})
}

func (o *Outbox) MarkAcked(seq uint64) error {
	return o.update(seq, func(r *Record) { r.State = StateAcked })
}

func (o *Outbox) MarkFailed(seq uint64) error {
	return o.update(seq, func(r *Record) { r.State = StateFailed })
}

// Delete removes a record outright.
func (o *Outbox) Delete(seq uint64) error {
	return errors.Wrap(o.db.Delete(keyFor(seq), pebble.Sync), "outbox: delete")
}

// PruneAcked deletes every ACKED record and returns how many went.
func (o *Outbox) PruneAcked() (int, error) {
	var seqs []uint64
	err := o.Scan(func(r Record) error {
		if r.State == StateAcked {
			seqs = append(seqs, r.Seq)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	b := o.db.NewBatch()
	defer b.Close()
	for _, s := range seqs {
		if err := b.Delete(keyFor(s), nil); err != nil {
			return 0, errors.Wrap(err, "outbox: prune")
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return 0, errors.Wrap(err, "outbox: prune")
	}
	return len(seqs), nil
}

// -------------------- Scan --------------------

// Scan visits every record in sequence order.
func (o *Outbox) Scan(fn func(Record) error) error {
	iter, err := o.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyUpper),
	})
	if err != nil {
		return errors.Wrap(err, "outbox: iter")
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return errors.Wrap(iter.Error(), "outbox: iter")
}

// ScanByState visits records in one state, in sequence order.
func (o *Outbox) ScanByState(state State, fn func(Record) error) error {
	return o.Scan(func(r Record) error {
		if r.State != state {
			return nil
		}
		return fn(r)
	})
}

// Pending visits NEW and SENT records: everything not yet acknowledged
// or given up on.
func (o *Outbox) Pending(fn func(Record) error) error {
	return o.Scan(func(r Record) error {
		if r.State != StateNew && r.State != StateSent {
			return nil
		}
		return fn(r)
	})
}

// -------------------- Helpers --------------------

const (
	keyPrefix  = "exec/"
	keyUpper   = "exec/~"
	metaSeqKey = "meta/last-seq"
)

func (o *Outbox) put(r Record) error {
	return errors.Wrap(o.db.Set(keyFor(r.Seq), encodeRecord(r), pebble.Sync), "outbox: put")
}

func (o *Outbox) update(seq uint64, fn func(*Record)) error {
	r, err := o.Get(seq)
	if err != nil {
		return err
	}
	fn(&r)
	return o.put(r)
}

// lastSeq survives pruning, so sequences are never reused.
func (o *Outbox) lastSeq() (uint64, error) {
	val, closer, err := o.db.Get([]byte(metaSeqKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "outbox: read last seq")
	}
	defer closer.Close()

	if len(val) != 8 {
		return 0, errors.Errorf("outbox: corrupt last seq (%d bytes)", len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	s := string(b)
	if len(s) <= len(keyPrefix) || s[:len(keyPrefix)] != keyPrefix {
		return 0, errors.Errorf("outbox: bad key %q", s)
	}
	seq, err := strconv.ParseUint(s[len(keyPrefix):], 10, 64)
	return seq, errors.Wrapf(err, "outbox: bad key %q", s)
}
