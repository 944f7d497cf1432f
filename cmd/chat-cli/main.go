package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/nkapoor/docuchat/internal/api"
	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/customHttpClient"
	"github.com/nkapoor/docuchat/internal/domain/jobModel"
)

var (
	serverAddr = flag.String("addr", "http://localhost:3000", "docuchat server address")
	authToken  = flag.String("token", "", "bearer token, empty when the server runs without auth")
	research   = flag.Bool("research", false, "start in research mode instead of document chat")
)

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
)

type session struct {
	client  *customHttpClient.Client
	chatId  string
	agentId string
}

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	s := &session{client: customHttpClient.New(*serverAddr, *authToken)}
	researchMode := *research

	fmt.Println(boldGreen("docuchat terminal client"))
	fmt.Printf("Server: %s\n", boldCyan(*serverAddr))
	fmt.Println("Commands: /upload <file> [name], /summary, /formats, /tools, /research, /chat, /clear, exit")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if researchMode {
			fmt.Print(boldGreen("Research> "))
		} else {
			fmt.Print(boldGreen("You: "))
		}
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			break
		}

		if strings.HasPrefix(input, "/") {
			researchMode = s.runCommand(ctx, input, researchMode)
			continue
		}

		if researchMode {
			s.runResearch(ctx, input)
		} else {
			s.runChat(ctx, input)
		}
	}
}

func (s *session) runCommand(ctx context.Context, input string, researchMode bool) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/research":
		fmt.Println(yellow("Research mode. Ask anything - the agent can calculate, analyze text and work with dates."))
		return true
	case "/chat":
		fmt.Println(yellow("Document chat mode."))
		return false
	case "/upload":
		if len(fields) < 2 {
			fmt.Println(red("usage: /upload <file> [display name]"))
			return researchMode
		}
		name := filepath.Base(fields[1])
		if len(fields) > 2 {
			name = strings.Join(fields[2:], " ")
		}
		s.upload(ctx, fields[1], name)
	case "/summary":
		s.summary(ctx)
	case "/formats":
		s.formats(ctx)
	case "/tools":
		s.tools(ctx)
	case "/clear":
		s.clear(ctx, researchMode)
	default:
		fmt.Println(red("unknown command " + fields[0]))
	}
	return researchMode
}

func (s *session) runChat(ctx context.Context, message string) {
	var initResp api.InitJobResponse
	code, err := s.client.PostJSON(ctx, "/chat", api.ChatRequest{Message: message, ChatID: s.chatId}, &initResp)
	if err != nil || code != http.StatusAccepted {
		fmt.Println(red(fmt.Sprintf("chat request failed: code=%d err=%v", code, err)))
		return
	}
	s.chatId = initResp.ChatId

	job, ok := s.waitForJob(ctx, initResp.Id)
	if !ok {
		return
	}
	if job.Error != nil {
		fmt.Println(red("Error: " + job.Error.Message))
		return
	}

	fmt.Print(boldCyan("Assistant: "))
	if job.Result.RAGExternalResponse == nil {
		fmt.Println(yellow("(no answer)"))
		return
	}
	fmt.Println(job.Result.RAGExternalResponse.Answer)
	for i, src := range job.Result.RAGExternalResponse.Sources {
		fmt.Println(faint(fmt.Sprintf("  [%d] %s (chunk %d): %s", i+1, src.DocName, src.Order, src.Preview)))
	}
	fmt.Println()
}

func (s *session) runResearch(ctx context.Context, query string) {
	var resp api.ResearchResponse
	code, err := s.client.PostJSON(ctx, "/research", api.ResearchRequest{Query: query, AgentID: s.agentId}, &resp)
	if err != nil {
		fmt.Println(red("research request failed: " + err.Error()))
		return
	}
	s.agentId = resp.AgentId

	for _, step := range resp.Trace {
		fmt.Println(faint(fmt.Sprintf("  step %d: %s(%s)", step.Seq, step.Tool, step.Input)))
	}
	if !resp.Success {
		fmt.Println(red(fmt.Sprintf("research failed (code=%d): %s", code, resp.Error)))
		return
	}
	fmt.Print(boldCyan("Agent: "))
	fmt.Println(resp.Response)
	fmt.Println()
}

func (s *session) upload(ctx context.Context, filePath string, docName string) {
	var initResp api.InitJobResponse
	code, err := s.client.UploadDocument(ctx, "/ingest", docName, s.chatId, filePath, &initResp)
	if err != nil || code != http.StatusAccepted {
		fmt.Println(red(fmt.Sprintf("upload failed: code=%d err=%v", code, err)))
		return
	}
	s.chatId = initResp.ChatId
	fmt.Println(yellow("Indexing " + docName + " ..."))

	job, ok := s.waitForJob(ctx, initResp.Id)
	if !ok {
		return
	}
	if job.Error != nil {
		fmt.Println(red("Ingest failed: " + job.Error.Message))
		return
	}
	if job.Result.IngestResponse != nil {
		fmt.Println(yellow(fmt.Sprintf("Indexed %q into %d chunks. Ask away.",
			job.Result.IngestResponse.DocumentName, job.Result.IngestResponse.ChunkCount)))
	}
}

func (s *session) summary(ctx context.Context) {
	if s.chatId == "" {
		fmt.Println(red("no active chat - upload a document first"))
		return
	}
	var resp api.SummaryResponse
	if _, err := s.client.Get(ctx, "/chat/"+s.chatId+"/summary", &resp); err != nil {
		fmt.Println(red("summary failed: " + err.Error()))
		return
	}
	fmt.Println(boldCyan("Summary: ") + resp.Summary)
}

func (s *session) formats(ctx context.Context) {
	var resp api.FormatsResponse
	if _, err := s.client.Get(ctx, "/formats", &resp); err != nil {
		fmt.Println(red("formats failed: " + err.Error()))
		return
	}
	fmt.Println(yellow("Supported formats: " + strings.Join(resp.Formats, ", ")))
}

func (s *session) tools(ctx context.Context) {
	var resp api.ToolsResponse
	if _, err := s.client.Get(ctx, "/tools", &resp); err != nil {
		fmt.Println(red("tools failed: " + err.Error()))
		return
	}
	for _, tool := range resp.Tools {
		fmt.Printf("%s - %s\n", boldCyan(tool.Name), tool.Description)
	}
}

func (s *session) clear(ctx context.Context, researchMode bool) {
	if researchMode {
		if s.agentId == "" {
			fmt.Println(red("no agent session to clear"))
			return
		}
		if _, err := s.client.Delete(ctx, "/agent/"+s.agentId+"/memory", nil); err != nil {
			fmt.Println(red("clear failed: " + err.Error()))
			return
		}
		fmt.Println(yellow("Agent memory cleared."))
		return
	}

	if s.chatId == "" {
		fmt.Println(red("no chat session to clear"))
		return
	}
	if _, err := s.client.Delete(ctx, "/chat/"+s.chatId, nil); err != nil {
		fmt.Println(red("clear failed: " + err.Error()))
		return
	}
	s.chatId = ""
	fmt.Println(yellow("Chat session cleared."))
}

// waitForJob polls the status endpoint until the job settles.
func (s *session) waitForJob(ctx context.Context, jobId string) (api.JobResponse, bool) {
	deadline := time.Now().Add(config.StatusPollTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return api.JobResponse{}, false
		case <-time.After(config.StatusPollInterval):
		}

		var job api.JobResponse
		code, err := s.client.Get(ctx, "/status/"+jobId, &job)
		if err != nil {
			fmt.Println(red("status poll failed: " + err.Error()))
			return api.JobResponse{}, false
		}
		if code == http.StatusNotFound {
			continue
		}

		switch job.Result.Status {
		case string(jobModel.JobStatusComplete), string(jobModel.JobStatusError):
			return job, true
		}
	}
	fmt.Println(red("timed out waiting for job " + jobId))
	return api.JobResponse{}, false
}
