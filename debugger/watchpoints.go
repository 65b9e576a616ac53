package debugger

import (
	"fmt"
	"sync"

	"github.com/jpoag/asmr/parser"
	"github.com/jpoag/asmr/vm"
)

// WatchType mirrors gdb-style watch/rwatch/awatch. asmr's engine can only
// detect value changes between steps, not distinguish a read from a write,
// so all three types behave identically; the field is kept so `info
// watchpoints` can still report what the user asked for.
type WatchType int

const (
	WatchWrite WatchType = iota
	WatchRead
	WatchReadWrite
)

// Watchpoint monitors a register or a heap buffer for a value change.
type Watchpoint struct {
	ID         int
	Type       WatchType
	Expression string
	IsRegister bool
	Register   parser.RegisterName
	HeapIndex  int32
	Enabled    bool
	LastValue  string
	HitCount   int
}

// WatchpointManager manages all watchpoints.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager creates a new watchpoint manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{watchpoints: make(map[int]*Watchpoint), nextID: 1}
}

// AddWatchpoint adds a new watchpoint.
func (wm *WatchpointManager) AddWatchpoint(wpType WatchType, expression string, isRegister bool, register parser.RegisterName, heapIndex int32) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{
		ID:         wm.nextID,
		Type:       wpType,
		Expression: expression,
		IsRegister: isRegister,
		Register:   register,
		HeapIndex:  heapIndex,
		Enabled:    true,
	}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

// DeleteWatchpoint removes a watchpoint by ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

// EnableWatchpoint enables a watchpoint by ID.
func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = true
	return nil
}

// DisableWatchpoint disables a watchpoint by ID.
func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = false
	return nil
}

// GetWatchpoint gets a watchpoint by ID.
func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.watchpoints[id]
}

// GetAllWatchpoints returns all watchpoints.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	result := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		result = append(result, wp)
	}
	return result
}

func watchCurrentValue(wp *Watchpoint, ctx *vm.Context) string {
	if wp.IsRegister {
		return fmt.Sprintf("%d", ctx.Registers.Get(wp.Register).Raw)
	}
	if wp.HeapIndex < 0 || int(wp.HeapIndex) >= ctx.Heap.Len() {
		return "<unallocated>"
	}
	return string(ctx.Heap.Get(wp.HeapIndex))
}

// CheckWatchpoints checks all watchpoints and returns the first that changed
// since it was last observed.
func (wm *WatchpointManager) CheckWatchpoints(ctx *vm.Context) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}

		current := watchCurrentValue(wp, ctx)
		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}

	return nil, false
}

// InitializeWatchpoint records a watchpoint's starting value so the first
// CheckWatchpoints call doesn't spuriously fire.
func (wm *WatchpointManager) InitializeWatchpoint(id int, ctx *vm.Context) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.LastValue = watchCurrentValue(wp, ctx)
	return nil
}

// Clear removes all watchpoints.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
