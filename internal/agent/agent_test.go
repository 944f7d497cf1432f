package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nkapoor/docuchat/internal/agent/tools"
	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
)

// scriptedProvider replays canned replies in order and records every prompt.
type scriptedProvider struct {
	replies []string
	err     error
	Prompts []string
}

func (p *scriptedProvider) Generate(_ context.Context, prompt string, _ []commonModels.Turn) (string, error) {
	p.Prompts = append(p.Prompts, prompt)
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return `{"action": "final", "answer": "out of script"}`, nil
	}
	reply := p.replies[0]
	p.replies = p.replies[1:]
	return reply, nil
}

func TestResearchToolThenFinal(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"action": "calculator", "input": "2+2"}`,
		`{"action": "final", "answer": "The answer is 4."}`,
	}}
	a := New(provider, tools.DefaultRegistry())

	res, err := a.Research(context.Background(), "what is 2+2?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatal("expected success")
	}
	if res.Response != "The answer is 4." {
		t.Fatalf("unexpected response %q", res.Response)
	}
	if len(res.Trace) != 1 || res.Trace[0].Tool != "calculator" {
		t.Fatalf("unexpected trace %+v", res.Trace)
	}
	if !strings.Contains(res.Trace[0].Observation, "4") {
		t.Fatalf("calculator observation missing result: %q", res.Trace[0].Observation)
	}
	// second prompt must carry the first observation back to the model
	if !strings.Contains(provider.Prompts[1], res.Trace[0].Observation) {
		t.Fatal("observation not fed back into the follow-up prompt")
	}
}

func TestResearchCapForcesFinalisation(t *testing.T) {
	// the model keeps asking for tools and never declares final
	provider := &scriptedProvider{replies: []string{
		`{"action": "calculator", "input": "1+1"}`,
		`{"action": "calculator", "input": "2+2"}`,
		`{"action": "calculator", "input": "3+3"}`,
		"best effort answer",
	}}
	a := New(provider, tools.DefaultRegistry())

	res, err := a.Research(context.Background(), "run five calculations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trace) != 3 {
		t.Fatalf("cap of 3 tool calls violated: %d steps", len(res.Trace))
	}
	// 3 decision calls + 1 wrap-up call, never more
	if len(provider.Prompts) != 4 {
		t.Fatalf("expected 4 generations, got %d", len(provider.Prompts))
	}
	if res.Response != "best effort answer" {
		t.Fatalf("unexpected response %q", res.Response)
	}
	if !strings.Contains(provider.Prompts[3], "best-effort final answer") {
		t.Fatal("wrap-up prompt missing finalisation instruction")
	}
}

func TestResearchCustomIterationCap(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"action": "calculator", "input": "1+1"}`,
		"done",
	}}
	a := New(provider, tools.DefaultRegistry(), WithMaxIterations(1))

	res, err := a.Research(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trace) != 1 || len(provider.Prompts) != 2 {
		t.Fatalf("cap of 1 not honored: trace=%d prompts=%d", len(res.Trace), len(provider.Prompts))
	}
	if res.Response != "done" {
		t.Fatalf("unexpected response %q", res.Response)
	}
}

func TestResearchUnknownToolFedBack(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		`{"action": "web_search", "input": "anything"}`,
		`{"action": "final", "answer": "ok"}`,
	}}
	a := New(provider, tools.DefaultRegistry())

	res, err := a.Research(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trace) != 1 || !strings.Contains(res.Trace[0].Observation, "Unknown tool") {
		t.Fatalf("unknown tool not surfaced as observation: %+v", res.Trace)
	}
	if !strings.Contains(res.Trace[0].Observation, "calculator") {
		t.Fatal("observation should list the available tools")
	}
	if !res.Success {
		t.Fatal("run should still succeed after recovering")
	}
}

func TestResearchUnparseableDecisionFedBack(t *testing.T) {
	provider := &scriptedProvider{replies: []string{
		"I think I should use the calculator.",
		`{"action": "final", "answer": "ok"}`,
	}}
	a := New(provider, tools.DefaultRegistry())

	res, err := a.Research(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Response != "ok" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !strings.Contains(provider.Prompts[1], "not a valid JSON decision") {
		t.Fatal("parse failure not fed back to the model")
	}
}

func TestResearchGatewayDown(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("connection refused")}
	a := New(provider, tools.DefaultRegistry())

	res, err := a.Research(context.Background(), "q")
	if !errors.Is(err, ragerr.ErrAgent) {
		t.Fatalf("want ErrAgent, got %v", err)
	}
	if res.Success {
		t.Fatal("expected failed result")
	}
	if len(res.ToolsUsed) != 3 {
		t.Fatalf("failed result should still name the tools, got %v", res.ToolsUsed)
	}
	if res.Error == "" || res.Response == "" {
		t.Fatalf("failed result missing message: %+v", res)
	}
}

func TestResearchMemoryIsolationAndClear(t *testing.T) {
	mk := func() (*Agent, *scriptedProvider) {
		p := &scriptedProvider{replies: []string{
			`{"action": "final", "answer": "first"}`,
			`{"action": "final", "answer": "second"}`,
		}}
		return New(p, tools.DefaultRegistry()), p
	}
	a1, p1 := mk()
	a2, _ := mk()

	if _, err := a1.Research(context.Background(), "alpha"); err != nil {
		t.Fatal(err)
	}
	if _, err := a1.Research(context.Background(), "beta"); err != nil {
		t.Fatal(err)
	}
	// the second run of a1 must see the first exchange
	if !strings.Contains(p1.Prompts[1], "alpha") || !strings.Contains(p1.Prompts[1], "first") {
		t.Fatal("agent memory not carried into the next run")
	}

	if _, err := a2.Research(context.Background(), "gamma"); err != nil {
		t.Fatal(err)
	}
	// a2 never saw a1's conversation
	for _, prompt := range p1.Prompts {
		if strings.Contains(prompt, "gamma") {
			t.Fatal("memory leaked between agents")
		}
	}

	a1.ClearMemory()
	if a1.memory.Len() != 0 {
		t.Fatal("ClearMemory did not clear")
	}
}

func TestAvailableTools(t *testing.T) {
	a := New(&scriptedProvider{}, tools.DefaultRegistry())
	specs := a.AvailableTools()
	if len(specs) != 3 {
		t.Fatalf("want 3 specs, got %d", len(specs))
	}
	if specs[0].Name != "calculator" {
		t.Fatalf("registration order not preserved: %q first", specs[0].Name)
	}
}
