// Package agent runs a bounded think/act/observe loop over a closed tool
// registry. Each loop step asks the language model for a JSON decision,
// dispatches the chosen tool, and feeds the observation back in; the loop is
// hard-capped and always ends in a final answer attempt.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/nkapoor/docuchat/internal/agent/tools"
	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/metrics"
	"github.com/nkapoor/docuchat/internal/rag/llm"
	"github.com/nkapoor/docuchat/pkg/logger_i"
)

// Step is one executed tool call in a research trace.
type Step struct {
	Seq         int    `json:"seq"`
	Tool        string `json:"tool"`
	Input       string `json:"input"`
	Observation string `json:"observation"`
}

// Result is what a research run hands back to the host. ToolsUsed always
// carries the registered tool names so a failed run can still tell the user
// what the agent was capable of.
type Result struct {
	Success   bool     `json:"success"`
	Response  string   `json:"response"`
	ToolsUsed []string `json:"tools_used"`
	Trace     []Step   `json:"trace,omitempty"`
	Error     string   `json:"error,omitempty"`
}

type Agent struct {
	provider      llm.Provider
	registry      *tools.Registry
	memory        *commonModels.ConversationMemory
	maxIterations int
	logger        *logger_i.Logger
}

type Option func(*Agent)

// WithMaxIterations overrides the tool-call cap. Values below one are ignored.
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		if n >= 1 {
			a.maxIterations = n
		}
	}
}

func New(provider llm.Provider, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		provider:      provider,
		registry:      registry,
		memory:        commonModels.NewConversationMemory(),
		maxIterations: config.AgentMaxIterations,
		logger:        logger_i.NewLogger("agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AvailableTools lists the registered tool specs in registration order.
func (a *Agent) AvailableTools() []tools.Spec {
	return a.registry.Specs()
}

// ClearMemory drops the agent's conversation history.
func (a *Agent) ClearMemory() {
	a.memory.Clear()
}

// Research answers the query, calling at most maxIterations tools. If the cap
// is hit without the model declaring a final answer, one extra generation is
// spent composing a best-effort answer from the observations gathered. A
// model gateway failure is reported, never raised as a panic.
func (a *Agent) Research(ctx context.Context, query string) (Result, error) {
	history := a.memory.Turns()
	specs := a.registry.Specs()

	var trace []Step

	for iter := 0; iter < a.maxIterations; iter++ {
		reply, err := a.provider.Generate(ctx, buildDecisionPrompt(query, specs, history, trace), nil)
		if err != nil {
			return a.failedResult(err), fmt.Errorf("%w: decision generation: %v", ragerr.ErrAgent, err)
		}

		d, err := parseDecision(reply)
		if err != nil {
			a.logger.Warn("unparseable decision, feeding back", "error", err.Error())
			trace = append(trace, Step{
				Seq:         len(trace) + 1,
				Tool:        "(none)",
				Input:       "",
				Observation: "Your previous reply was not a valid JSON decision. Reply with exactly one JSON object.",
			})
			continue
		}

		if d.Action == actionFinal {
			metrics.CaptureAgentIterations(len(trace))
			return a.finish(query, d.Answer, trace), nil
		}

		observation, ok := a.registry.Execute(d.Action, d.Input)
		if !ok {
			observation = fmt.Sprintf("Unknown tool %q. Available tools: %s",
				d.Action, strings.Join(a.registry.Names(), ", "))
		}
		trace = append(trace, Step{
			Seq:         len(trace) + 1,
			Tool:        d.Action,
			Input:       d.Input,
			Observation: observation,
		})
	}

	// cap reached without a final decision: one best-effort wrap-up call
	metrics.CaptureAgentIterations(len(trace))
	answer, err := a.provider.Generate(ctx, buildFinalizePrompt(query, trace), nil)
	if err != nil {
		return a.failedResult(err), fmt.Errorf("%w: finalization: %v", ragerr.ErrAgent, err)
	}
	return a.finish(query, answer, trace), nil
}

func (a *Agent) finish(query, answer string, trace []Step) Result {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = "I was unable to produce an answer for this query."
	}
	a.memory.Append(commonModels.SpeakerUser, query)
	a.memory.Append(commonModels.SpeakerAssistant, answer)
	return Result{
		Success:   true,
		Response:  answer,
		ToolsUsed: a.registry.Names(),
		Trace:     trace,
	}
}

func (a *Agent) failedResult(cause error) Result {
	return Result{
		Success:   false,
		Response:  "The research service is temporarily unavailable. Please try again shortly.",
		ToolsUsed: a.registry.Names(),
		Error:     cause.Error(),
	}
}
