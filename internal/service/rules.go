package service

import (
	"context"
	"strings"
	"sync"

	"github.com/epidash/backend/internal/domain"
)

// ViewPhase is the lifecycle state of a view
type ViewPhase string

const (
	PhaseBootstrapping ViewPhase = "bootstrapping"
	PhaseReady         ViewPhase = "ready"
	PhaseError         ViewPhase = "error"
)

// viewStatus is the phase and error message every view carries
type viewStatus struct {
	phase  ViewPhase
	errMsg string
}

// fetchRule fires a dependent fetch when its part of the selection is
// complete and differs from what the slot last fetched
type fetchRule[V any] struct {
	slot   string
	errMsg string
	ready  func(sel domain.FilterSelection) bool
	key    func(sel domain.FilterSelection) string
	fetch  func(ctx context.Context, sel domain.FilterSelection) (apply func(v *V), err error)
}

// slotState tracks the request generation of one fetch slot.
// Only a response carrying the current generation may be applied.
type slotState struct {
	gen uint64
	key string
}

type slotTable map[string]*slotState

func newSlotTable(names ...string) slotTable {
	t := make(slotTable, len(names))
	for _, n := range names {
		t[n] = &slotState{}
	}
	return t
}

// issue starts a new generation for the slot
func (t slotTable) issue(name, key string) uint64 {
	s := t[name]
	s.gen++
	s.key = key
	return s.gen
}

func (t slotTable) current(name string, gen uint64) bool {
	return t[name].gen == gen
}

func (t slotTable) lastKey(name string) string {
	return t[name].key
}

// forget clears the last issued key so the same tuple fires again once it
// is complete. A request still in flight for the old key becomes stale.
func (t slotTable) forget(name string) {
	s := t[name]
	if s.key == "" {
		return
	}
	s.gen++
	s.key = ""
}

// supersedeAll invalidates every in-flight request
func (t slotTable) supersedeAll() {
	for _, s := range t {
		s.gen++
		s.key = ""
	}
}

// fetchRunner evaluates a view's rule table and applies results that are
// still current. mu is the owning view's mutex and guards everything here.
type fetchRunner[V any] struct {
	mu      *sync.Mutex
	state   *V
	status  *viewStatus
	bootErr string
	rec     *fetchRecorder
	rules   []fetchRule[V]

	slots    slotTable
	inflight int
	wg       sync.WaitGroup
}

func newFetchRunner[V any](mu *sync.Mutex, state *V, status *viewStatus, bootErr string, rec *fetchRecorder, slots ...string) *fetchRunner[V] {
	return &fetchRunner[V]{
		mu:      mu,
		state:   state,
		status:  status,
		bootErr: bootErr,
		rec:     rec,
		slots:   newSlotTable(slots...),
	}
}

// evaluate fires every rule whose key is complete and changed. Caller holds mu.
func (r *fetchRunner[V]) evaluate(sel domain.FilterSelection) {
	for i := range r.rules {
		rule := &r.rules[i]
		if !rule.ready(sel) {
			r.slots.forget(rule.slot)
			continue
		}
		key := rule.key(sel)
		if key == r.slots.lastKey(rule.slot) {
			continue
		}
		gen := r.slots.issue(rule.slot, key)
		r.inflight++
		r.wg.Add(1)
		go r.run(rule, sel, gen)
	}
}

func (r *fetchRunner[V]) run(rule *fetchRule[V], sel domain.FilterSelection, gen uint64) {
	defer r.wg.Done()

	params := selectionParams(sel)
	start := r.rec.started(rule.slot, gen, params)
	apply, err := rule.fetch(context.Background(), sel)

	r.mu.Lock()
	r.inflight--
	if !r.slots.current(rule.slot, gen) {
		r.mu.Unlock()
		r.rec.finished(rule.slot, gen, params, start, domain.OutcomeStale, err)
		return
	}
	outcome := domain.OutcomeOK
	if err != nil {
		outcome = domain.OutcomeError
		r.status.phase = PhaseError
		r.status.errMsg = rule.errMsg
	} else {
		apply(r.state)
		// a bootstrap error is cleared only by a successful Start
		if r.status.phase == PhaseError && r.status.errMsg != r.bootErr {
			r.status.phase = PhaseReady
			r.status.errMsg = ""
		}
	}
	r.mu.Unlock()

	r.rec.finished(rule.slot, gen, params, start, outcome, err)
}

// wait blocks until all in-flight fetches complete
func (r *fetchRunner[V]) wait() {
	r.wg.Wait()
}

func selectionParams(sel domain.FilterSelection) string {
	var parts []string
	if sel.State != "" {
		parts = append(parts, "state="+sel.State)
	}
	if sel.Disease != "" {
		parts = append(parts, "disease="+sel.Disease)
	}
	if sel.Week != "" {
		parts = append(parts, "week="+sel.Week)
	}
	return strings.Join(parts, " ")
}
