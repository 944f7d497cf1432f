package agent

import (
	"fmt"
	"strings"

	"github.com/nkapoor/docuchat/internal/agent/tools"
	"github.com/nkapoor/docuchat/internal/domain/commonModels"
)

func buildDecisionPrompt(query string, specs []tools.Spec, history []commonModels.Turn, trace []Step) string {
	var sb strings.Builder

	sb.WriteString("You are a research assistant that can use tools to answer questions.\n\n")
	sb.WriteString("Available tools:\n")
	for _, s := range specs {
		fmt.Fprintf(&sb, "- %s: %s\n", s.Name, s.Description)
	}

	if len(history) > 0 {
		sb.WriteString("\nPrevious conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Speaker, turn.Text)
		}
	}

	fmt.Fprintf(&sb, "\nQuestion: %s\n", query)

	if len(trace) > 0 {
		sb.WriteString("\nSteps taken so far:\n")
		for _, step := range trace {
			fmt.Fprintf(&sb, "%d. tool=%s input=%q observation: %s\n",
				step.Seq, step.Tool, step.Input, step.Observation)
		}
	}

	sb.WriteString("\nDecide the next step. Reply with exactly one JSON object and nothing else:\n")
	sb.WriteString(`{"action": "<tool name>", "input": "<tool input>"}` + "\n")
	sb.WriteString("or, when you can answer the question:\n")
	sb.WriteString(`{"action": "final", "answer": "<your answer>"}` + "\n")
	return sb.String()
}

func buildFinalizePrompt(query string, trace []Step) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Question: %s\n\n", query)
	if len(trace) > 0 {
		sb.WriteString("Tool observations gathered:\n")
		for _, step := range trace {
			fmt.Fprintf(&sb, "%d. %s(%q): %s\n", step.Seq, step.Tool, step.Input, step.Observation)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Give your best-effort final answer to the question from the observations above. ")
	sb.WriteString("Reply with the answer text only, no JSON.")
	return sb.String()
}
