package usecase

import (
	"sync"
	"time"

	"github.com/fse-compliance/internal/domain"
)

// Run - дескриптор прогона, выданный RunTracker.Begin
type Run struct {
	Key        string
	Generation uint64
}

type runEntry struct {
	generation uint64
	state      domain.RunState
	result     *domain.ValidationResult
	err        string
	updatedAt  time.Time
}

// RunTracker хранит состояние последнего прогона по ключу (обычно id отчёта).
// Каждый Begin увеличивает поколение; завершения устаревших поколений игнорируются,
// чтобы старый прогон не перезаписал результат нового.
type RunTracker struct {
	mu      sync.RWMutex
	entries map[string]*runEntry
	now     func() time.Time
}

func NewRunTracker() *RunTracker {
	return &RunTracker{
		entries: make(map[string]*runEntry),
		now:     time.Now,
	}
}

// Begin начинает новый прогон: предыдущие результаты по ключу сбрасываются
func (t *RunTracker) Begin(key string) Run {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[key]
	if !ok {
		e = &runEntry{}
		t.entries[key] = e
	}
	e.generation++
	e.state = domain.RunStateLoading
	e.result = nil
	e.err = ""
	e.updatedAt = t.now()

	return Run{Key: key, Generation: e.generation}
}

// Complete фиксирует результат; false означает, что прогон устарел (или уже завершён) и результат отброшен
func (t *RunTracker) Complete(run Run, result *domain.ValidationResult) bool {
	return t.finish(run, domain.RunStateCompleted, result, "")
}

// Fail переводит прогон в состояние error; false для устаревшего прогона
func (t *RunTracker) Fail(run Run, err error) bool {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return t.finish(run, domain.RunStateError, nil, msg)
}

// Retry возвращает упавший прогон в состояние loading под тем же поколением.
// false, если по ключу уже начат более новый прогон или прогон не в состоянии error.
func (t *RunTracker) Retry(run Run) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[run.Key]
	if !ok || e.generation != run.Generation || e.state != domain.RunStateError {
		return false
	}
	e.state = domain.RunStateLoading
	e.err = ""
	e.updatedAt = t.now()
	return true
}

// IsCurrent сообщает, является ли прогон последним по своему ключу
func (t *RunTracker) IsCurrent(run Run) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[run.Key]
	return ok && e.generation == run.Generation
}

// Snapshot возвращает состояние по ключу; неизвестный ключ находится в состоянии idle
func (t *RunTracker) Snapshot(key string) domain.RunSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[key]
	if !ok {
		return domain.RunSnapshot{Key: key, State: domain.RunStateIdle}
	}
	return domain.RunSnapshot{
		Key:        key,
		State:      e.state,
		Generation: e.generation,
		Result:     e.result,
		Error:      e.err,
		UpdatedAt:  e.updatedAt,
	}
}

func (t *RunTracker) finish(run Run, state domain.RunState, result *domain.ValidationResult, errMsg string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[run.Key]
	if !ok || e.generation != run.Generation || e.state != domain.RunStateLoading {
		return false
	}
	e.state = state
	e.result = result
	e.err = errMsg
	e.updatedAt = t.now()
	return true
}
