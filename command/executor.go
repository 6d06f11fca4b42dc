package command

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/lixenwraith/helix/callback"
)

// Error identifiers surfaced to the script side through callback
// records. Other failure messages are human-readable and not
// contractual.
const (
	ErrRateLimited = "ERR_RATE_LIMITED"
	ErrNoHandler   = "ERR_NO_HANDLER"
)

// DefaultRateLimitPerAgent is the commands/second bucket depth applied
// to each agent unless configured otherwise. 0 disables rate limiting.
const DefaultRateLimitPerAgent = 100

// pendingResult is a handler result waiting to be enqueued to the
// callback queue.
type pendingResult struct {
	callbackID uint64
	result     Result
	ready      bool
}

// Executor dispatches generic commands to named handlers.
//
// Thread-Safety Model:
//   - RegisterHandler / UnregisterHandler / HasHandler / RegisteredTypes:
//     mutex-protected, called during quiescent initialization (cold path)
//   - Execute / DeliverPendingCallbacks: main thread only, lock-free
//     handler-map read (registration completes before the game loop)
//   - StoreCallback / TakeCallback: script worker only; the handle is
//     stored before submission and moved out at callback delivery
type Executor struct {
	mu       sync.Mutex
	handlers map[string]Handler

	// Script-thread confined: callbackId → opaque script callable
	storedCallbacks map[uint64]any

	// Main-thread confined: callbackId → handler result
	pendingResults map[uint64]*pendingResult

	// Rate limiting
	agentRateLimits   map[string]*RateLimitState
	rateLimitPerAgent uint32

	// Statistics (main-thread mutation, snapshot under no concurrency
	// assumptions beyond staleness)
	totalExecuted    uint64
	totalErrors      uint64
	totalUnhandled   uint64
	totalRateLimited uint64
	agentStats       map[string]*AgentStatistics
	typeStats        map[string]*TypeStatistics

	auditLogging bool
	now          NowFunc
}

// NewExecutor creates an executor with the default rate limit. now may
// be nil to use the process monotonic clock.
func NewExecutor(now NowFunc) *Executor {
	if now == nil {
		now = MonotonicSeconds
	}
	return &Executor{
		handlers:          make(map[string]Handler),
		storedCallbacks:   make(map[uint64]any),
		pendingResults:    make(map[uint64]*pendingResult),
		agentRateLimits:   make(map[string]*RateLimitState),
		rateLimitPerAgent: DefaultRateLimitPerAgent,
		agentStats:        make(map[string]*AgentStatistics),
		typeStats:         make(map[string]*TypeStatistics),
		now:               now,
	}
}

// RegisterHandler binds a handler to a command type. Returns false
// without overwriting when the type already has a handler. Must
// complete before the first command is consumed.
func (e *Executor) RegisterHandler(cmdType string, h Handler) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.handlers[cmdType]; exists {
		log.Printf("Executor: handler already registered for type '%s'", cmdType)
		return false
	}
	e.handlers[cmdType] = h
	return true
}

// UnregisterHandler removes the handler for a command type. Returns
// false if none was registered.
func (e *Executor) UnregisterHandler(cmdType string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.handlers[cmdType]; !exists {
		return false
	}
	delete(e.handlers, cmdType)
	return true
}

// HasHandler reports whether a handler is registered for cmdType.
func (e *Executor) HasHandler(cmdType string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.handlers[cmdType]
	return ok
}

// RegisteredTypes returns the registered command type names.
func (e *Executor) RegisteredTypes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	types := make([]string, 0, len(e.handlers))
	for t := range e.handlers {
		types = append(types, t)
	}
	return types
}

// Execute dispatches one command (main thread only).
//
// Order: per-agent submit count, rate-limit check, handler lookup,
// isolated invocation, audit log, pending-result persistence. Every
// failure is confined to this frame — nothing propagates.
func (e *Executor) Execute(cmd Command) {
	e.agent(cmd.AgentID).Submitted++

	if e.rateLimitPerAgent > 0 && cmd.AgentID != "" {
		state, ok := e.agentRateLimits[cmd.AgentID]
		if !ok {
			state = &RateLimitState{
				Tokens:         float64(e.rateLimitPerAgent),
				LastRefillTime: e.now(),
				MaxTokens:      e.rateLimitPerAgent,
			}
			e.agentRateLimits[cmd.AgentID] = state
		}

		if !state.TryConsume(e.now()) {
			e.totalRateLimited++
			e.agent(cmd.AgentID).RateLimited++

			// First rejection always, then every 100th to avoid spam
			if state.RejectedCount == 1 || state.RejectedCount%100 == 0 {
				log.Printf("Executor: rate limited agent '%s' (rejected: %d, limit: %d/sec)",
					cmd.AgentID, state.RejectedCount, e.rateLimitPerAgent)
			}

			if cmd.HasCallback() {
				e.storeResult(cmd.CallbackID, Failure(ErrRateLimited))
			}
			return
		}
	}

	h, ok := e.handlers[cmd.Type]
	if !ok {
		e.totalUnhandled++
		e.agent(cmd.AgentID).Unhandled++
		log.Printf("Executor: no handler for command type '%s' from agent '%s'",
			cmd.Type, cmd.AgentID)

		if cmd.HasCallback() {
			e.storeResult(cmd.CallbackID, Failure(ErrNoHandler))
		}
		return
	}

	result := e.invoke(h, &cmd)
	if result.IsSuccess() {
		e.totalExecuted++
		e.agent(cmd.AgentID).Executed++
		e.typ(cmd.Type).Executed++
	} else {
		e.totalErrors++
		e.agent(cmd.AgentID).Failed++
		e.typ(cmd.Type).Failed++
		log.Printf("Executor: handler failed for '%s' from agent '%s': %s",
			cmd.Type, cmd.AgentID, result.Err)
	}

	if e.auditLogging {
		if result.IsSuccess() {
			log.Printf("AUDIT: agent='%s' type='%s' callbackId=%d result=SUCCESS",
				cmd.AgentID, cmd.Type, cmd.CallbackID)
		} else {
			log.Printf("AUDIT: agent='%s' type='%s' callbackId=%d result=FAILED error='%s'",
				cmd.AgentID, cmd.Type, cmd.CallbackID, result.Err)
		}
	}

	if cmd.HasCallback() {
		e.storeResult(cmd.CallbackID, result)
	}
}

// invoke runs the handler inside an error-isolating frame. A panic —
// including a failed payload type assertion — becomes an error result
// embedding the command type; it never unwinds into the queue drain.
func (e *Executor) invoke(h Handler, cmd *Command) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			if _, isCast := r.(*runtime.TypeAssertionError); isCast {
				result = Failure(fmt.Sprintf("bad payload cast for '%s': %v", cmd.Type, r))
			} else {
				result = Failure(fmt.Sprintf("handler panic for '%s': %v", cmd.Type, r))
			}
		}
	}()
	return h(cmd.Payload)
}

func (e *Executor) storeResult(callbackID uint64, result Result) {
	e.pendingResults[callbackID] = &pendingResult{
		callbackID: callbackID,
		result:     result,
		ready:      true,
	}
}

// DeliverPendingCallbacks pushes every ready result onto the callback
// queue (main thread, after the command drain). Records that do not fit
// stay pending and are retried next frame.
func (e *Executor) DeliverPendingCallbacks(q *callback.Queue) {
	fullLogged := false

	for id, pending := range e.pendingResults {
		if !pending.ready {
			continue
		}

		data := callback.Data{
			CallbackID:   id,
			ErrorMessage: pending.result.Err,
			Type:         callback.Generic,
		}

		if pending.result.IsSuccess() {
			if raw, ok := pending.result.Data["resultId"]; ok {
				switch v := raw.(type) {
				case uint64:
					data.ResultID = v
				case int:
					data.ResultID = uint64(v)
				case int64:
					data.ResultID = uint64(v)
				case float64:
					// Script numbers arrive as doubles
					data.ResultID = uint64(v)
				default:
					log.Printf("Executor: resultId has unsupported type %T for callback %d", raw, id)
				}
			}
			if raw, ok := pending.result.Data["resultJson"]; ok {
				if s, ok := raw.(string); ok {
					data.ResultJSON = s
				} else {
					log.Printf("Executor: resultJson has unsupported type %T for callback %d", raw, id)
				}
			}
		}

		if err := q.Push(data); err != nil {
			if !fullLogged {
				log.Printf("Executor: callback queue full, callback %d deferred to next frame", id)
				fullLogged = true
			}
			continue
		}
		delete(e.pendingResults, id)
	}
}

// PendingResultCount returns the number of undelivered results.
func (e *Executor) PendingResultCount() int { return len(e.pendingResults) }

// StoreCallback stores the opaque script callable for a callback id.
// Called by the script bridge before the command is pushed.
func (e *Executor) StoreCallback(callbackID uint64, cb any) {
	e.storedCallbacks[callbackID] = cb
}

// TakeCallback moves a stored callable out of the table. The script
// side calls it while draining callback records and invokes the
// callable afterward, releasing the handle.
func (e *Executor) TakeCallback(callbackID uint64) (any, bool) {
	cb, ok := e.storedCallbacks[callbackID]
	if !ok {
		return nil, false
	}
	delete(e.storedCallbacks, callbackID)
	return cb, true
}

// StoredCallbackCount returns the number of callables awaiting delivery.
func (e *Executor) StoredCallbackCount() int { return len(e.storedCallbacks) }

// SetRateLimitPerAgent sets the per-agent commands/second limit.
// 0 disables rate limiting. Existing buckets adopt the new depth.
func (e *Executor) SetRateLimitPerAgent(maxCommandsPerSecond uint32) {
	e.rateLimitPerAgent = maxCommandsPerSecond
	for _, state := range e.agentRateLimits {
		state.MaxTokens = maxCommandsPerSecond
	}
}

// RateLimitPerAgent returns the current limit.
func (e *Executor) RateLimitPerAgent() uint32 { return e.rateLimitPerAgent }

// AgentRateLimitState returns the bucket for an agent, or nil if the
// agent has not been limited yet. Diagnostics only.
func (e *Executor) AgentRateLimitState(agentID string) *RateLimitState {
	return e.agentRateLimits[agentID]
}

// SetAuditLogging toggles the one-record-per-execution audit log.
func (e *Executor) SetAuditLogging(enabled bool) { e.auditLogging = enabled }

// AuditLogging reports whether audit logging is on.
func (e *Executor) AuditLogging() bool { return e.auditLogging }

// Counter accessors.
func (e *Executor) TotalExecuted() uint64    { return e.totalExecuted }
func (e *Executor) TotalErrors() uint64      { return e.totalErrors }
func (e *Executor) TotalUnhandled() uint64   { return e.totalUnhandled }
func (e *Executor) TotalRateLimited() uint64 { return e.totalRateLimited }

// Statistics returns a full snapshot with per-agent and per-type
// breakdowns.
func (e *Executor) Statistics() Statistics {
	stats := Statistics{
		TotalExecuted:    e.totalExecuted,
		TotalErrors:      e.totalErrors,
		TotalUnhandled:   e.totalUnhandled,
		TotalRateLimited: e.totalRateLimited,
		AgentStats:       make(map[string]AgentStatistics, len(e.agentStats)),
		TypeStats:        make(map[string]TypeStatistics, len(e.typeStats)),
	}
	for id, s := range e.agentStats {
		stats.AgentStats[id] = *s
	}
	for t, s := range e.typeStats {
		stats.TypeStats[t] = *s
	}
	return stats
}

// Close logs final statistics and warns about script callables that
// were stored but never delivered.
func (e *Executor) Close() {
	log.Printf("Executor: shutdown - executed: %d, errors: %d, unhandled: %d, rateLimited: %d, pending results: %d",
		e.totalExecuted, e.totalErrors, e.totalUnhandled, e.totalRateLimited, len(e.pendingResults))

	if n := len(e.storedCallbacks); n > 0 {
		log.Printf("Executor: %d stored callbacks not delivered at shutdown", n)
	}
}

func (e *Executor) agent(id string) *AgentStatistics {
	s, ok := e.agentStats[id]
	if !ok {
		s = &AgentStatistics{}
		e.agentStats[id] = s
	}
	return s
}

func (e *Executor) typ(t string) *TypeStatistics {
	s, ok := e.typeStats[t]
	if !ok {
		s = &TypeStatistics{}
		e.typeStats[t] = s
	}
	return s
}
