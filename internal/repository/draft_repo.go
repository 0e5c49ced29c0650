package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"dcms/internal/discipline"
	"dcms/pkg/redis"
)

// ErrDraftNotFound a draft batch is unknown or expired.
var ErrDraftNotFound = errors.New("draft batch not found")

// BatchDraftRepository keeps in-progress batches between requests.
type BatchDraftRepository interface {
	Save(ctx context.Context, state discipline.BatchState) error
	Get(ctx context.Context, id string) (discipline.BatchState, error)
	Delete(ctx context.Context, id string) (bool, error)
	// Update applies fn to the stored draft atomically with respect to
	// other writers of the same draft and saves the result. An error from
	// fn leaves the draft unchanged.
	Update(ctx context.Context, id string, fn func(*discipline.BatchState) error) (discipline.BatchState, error)
}

// DraftFunc is the mutation passed to Update.
type DraftFunc = func(*discipline.BatchState) error

// ── Redis ──

const draftPrefix = "batch:draft:"

type redisDraftRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisDraftRepo stores drafts in Redis with a sliding TTL.
func NewRedisDraftRepo(rdb *redis.Client, ttl time.Duration) BatchDraftRepository {
	return &redisDraftRepo{rdb: rdb, ttl: ttl}
}

func (r *redisDraftRepo) Save(ctx context.Context, state discipline.BatchState) error {
	return r.rdb.SetJSON(ctx, draftPrefix+state.ID, state, r.ttl)
}

func (r *redisDraftRepo) Get(ctx context.Context, id string) (discipline.BatchState, error) {
	var st discipline.BatchState
	err := r.rdb.GetJSON(ctx, draftPrefix+id, &st)
	if errors.Is(err, redis.ErrNil) {
		return st, ErrDraftNotFound
	}
	return st, err
}

func (r *redisDraftRepo) Delete(ctx context.Context, id string) (bool, error) {
	return r.rdb.Del(ctx, draftPrefix+id)
}

func (r *redisDraftRepo) Update(ctx context.Context, id string, fn DraftFunc) (discipline.BatchState, error) {
	var st discipline.BatchState
	err := r.rdb.Update(ctx, draftPrefix+id, r.ttl, func(data []byte) ([]byte, error) {
		st = discipline.BatchState{}
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, err
		}
		if err := fn(&st); err != nil {
			return nil, err
		}
		return json.Marshal(st)
	})
	if errors.Is(err, redis.ErrNil) {
		return discipline.BatchState{}, ErrDraftNotFound
	}
	if err != nil {
		return discipline.BatchState{}, err
	}
	return st, nil
}

// ── In-process ──

type memoryDraft struct {
	data    []byte
	expires time.Time
}

// memoryDraftRepo holds mu across Update so concurrent edits of a draft
// apply one after another.
type memoryDraftRepo struct {
	mu     sync.Mutex
	drafts map[string]memoryDraft
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryDraftRepo keeps drafts in process memory. Drafts are lost on
// restart.
func NewMemoryDraftRepo(ttl time.Duration) BatchDraftRepository {
	return &memoryDraftRepo{drafts: make(map[string]memoryDraft), ttl: ttl, now: time.Now}
}

func (r *memoryDraftRepo) Save(_ context.Context, state discipline.BatchState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	r.drafts[state.ID] = memoryDraft{data: data, expires: r.now().Add(r.ttl)}
	return nil
}

func (r *memoryDraftRepo) Get(_ context.Context, id string) (discipline.BatchState, error) {
	r.mu.Lock()
	d, ok := r.drafts[id]
	r.mu.Unlock()

	var st discipline.BatchState
	if !ok || (r.ttl > 0 && r.now().After(d.expires)) {
		return st, ErrDraftNotFound
	}
	err := json.Unmarshal(d.data, &st)
	return st, err
}

func (r *memoryDraftRepo) Update(_ context.Context, id string, fn DraftFunc) (discipline.BatchState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var st discipline.BatchState
	d, ok := r.drafts[id]
	if !ok || (r.ttl > 0 && r.now().After(d.expires)) {
		return st, ErrDraftNotFound
	}
	if err := json.Unmarshal(d.data, &st); err != nil {
		return st, err
	}
	if err := fn(&st); err != nil {
		return discipline.BatchState{}, err
	}
	data, err := json.Marshal(st)
	if err != nil {
		return discipline.BatchState{}, err
	}
	r.drafts[id] = memoryDraft{data: data, expires: r.now().Add(r.ttl)}
	return st, nil
}

func (r *memoryDraftRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.drafts[id]
	delete(r.drafts, id)
	return ok, nil
}

// sweep drops expired drafts. Callers hold mu.
func (r *memoryDraftRepo) sweep() {
	if r.ttl <= 0 {
		return
	}
	now := r.now()
	for id, d := range r.drafts {
		if now.After(d.expires) {
			delete(r.drafts, id)
		}
	}
}
