package metricskey

import "github.com/effective-security/metrics"

// Stats
var (
	// StatsAgentRunsSucceeded is base for counter metric for total agent runs succeeded
	StatsAgentRunsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_runs_succeeded",
		Help:         "stats_agent_runs_succeeded provides total agent runs succeeded",
		RequiredTags: []string{"scope"},
	}

	StatsAgentRunsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_runs_failed",
		Help:         "stats_agent_runs_failed provides total agent runs failed",
		RequiredTags: []string{"scope"},
	}

	StatsAgentRunsExhausted = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_agent_runs_exhausted",
		Help:         "stats_agent_runs_exhausted provides total agent runs terminated by the iteration cap",
		RequiredTags: []string{"scope"},
	}

	StatsLLMMessagesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_messages_sent",
		Help:         "stats_llm_messages_sent provides total messages sent to LLM",
		RequiredTags: []string{"model"},
	}

	StatsLLMBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_sent",
		Help:         "stats_llm_bytes_sent provides total bytes sent to LLM",
		RequiredTags: []string{"model"},
	}

	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides total tool calls succeeded",
		RequiredTags: []string{"tool"},
	}

	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides total tool calls failed",
		RequiredTags: []string{"tool"},
	}

	StatsCatalogFetchFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_catalog_fetch_failed",
		Help:         "stats_catalog_fetch_failed provides total tool catalog fetch failures",
		RequiredTags: []string{"scope"},
	}
)

// Perf
var (
	PerfAgentRun = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_agent_run",
		Help:         "perf_agent_run provides duration of agent run",
		RequiredTags: []string{"scope"},
	}

	PerfModelCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_model_call",
		Help:         "perf_model_call provides duration of model call",
		RequiredTags: []string{"model"},
	}

	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfAgentRun,
	&PerfModelCall,
	&PerfToolCall,
	&StatsAgentRunsExhausted,
	&StatsAgentRunsFailed,
	&StatsAgentRunsSucceeded,
	&StatsCatalogFetchFailed,
	&StatsLLMBytesSent,
	&StatsLLMMessagesSent,
	&StatsToolCallsFailed,
	&StatsToolCallsSucceeded,
}
