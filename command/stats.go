package command

// AgentStatistics is the per-agent execution breakdown.
type AgentStatistics struct {
	Submitted   uint64 `json:"submitted"`
	Executed    uint64 `json:"executed"`
	Failed      uint64 `json:"failed"`
	RateLimited uint64 `json:"rateLimited"`
	Unhandled   uint64 `json:"unhandled"`
}

// TypeStatistics is the per-command-type breakdown.
type TypeStatistics struct {
	Executed uint64 `json:"executed"`
	Failed   uint64 `json:"failed"`
}

// Statistics is an aggregate snapshot returned by Executor.Statistics.
type Statistics struct {
	TotalExecuted    uint64 `json:"totalExecuted"`
	TotalErrors      uint64 `json:"totalErrors"`
	TotalUnhandled   uint64 `json:"totalUnhandled"`
	TotalRateLimited uint64 `json:"totalRateLimited"`

	AgentStats map[string]AgentStatistics `json:"agentStats"`
	TypeStats  map[string]TypeStatistics  `json:"typeStats"`
}
