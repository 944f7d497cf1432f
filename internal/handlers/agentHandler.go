package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nkapoor/docuchat/internal/adapter/utils"
	"github.com/nkapoor/docuchat/internal/api"
	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/rag/docload"
	"github.com/nkapoor/docuchat/pkg/logger_i"
)

var logAH *logger_i.Logger

// ResearchHandler runs the bounded tool loop synchronously - research is a
// handful of model round trips, not a long extraction pipeline, so it does
// not go through the job queue.
func ResearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logAH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	var requestData api.ResearchRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logAH.Error("Couldn't close the research reader", "err", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.Query == "" {
		logAH.Warn("Bad research request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.AgentID, "Bad Request")
		return
	}

	agentID := requestData.AgentID
	if agentID == "" {
		agentID = utils.GetNewUUID()
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.ResearchTimeout)
	defer cancel()

	a := handlerInstance.service.Sessions.Agent(agentID)
	result, err := a.Research(ctx, requestData.Query)
	response := api.ResearchResponse{AgentId: agentID, Result: result}

	if err != nil {
		logAH.Error("Research run failed", "agentId", agentID, "err", err)
		if errors.Is(err, ragerr.ErrAgent) {
			writeJsonResponse(w, http.StatusBadGateway, response)
			return
		}
		writeJsonResponse(w, http.StatusInternalServerError, response)
		return
	}

	writeJsonResponse(w, http.StatusOK, response)
}

// GetToolsHandler lists the registered tool specs.
func GetToolsHandler(w http.ResponseWriter, r *http.Request) {
	specs := handlerInstance.service.Sessions.Tools()

	tools := make([]api.ToolInfo, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, api.ToolInfo{Name: s.Name, Description: s.Description})
	}
	writeJsonResponse(w, http.StatusOK, api.ToolsResponse{Tools: tools})
}

// ClearAgentMemoryHandler forgets one agent's conversation history.
func ClearAgentMemoryHandler(w http.ResponseWriter, r *http.Request) {
	agentID := utils.GetChiURLParam(r, "id")

	a, found := handlerInstance.service.Sessions.LookupAgent(agentID)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, agentID, "Agent not found")
		return
	}
	a.ClearMemory()
	writeJsonResponse(w, http.StatusOK, map[string]string{"agent_id": agentID, "status": "cleared"})
}

// GetSummaryHandler composes a best-effort summary of the session's document.
func GetSummaryHandler(w http.ResponseWriter, r *http.Request) {
	chatID := utils.GetChiURLParam(r, "id")

	session, found := handlerInstance.service.Sessions.Lookup(chatID)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, chatID, "Chat not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.QueryTimeout)
	defer cancel()

	summary := session.Summarize(ctx)
	writeJsonResponse(w, http.StatusOK, api.SummaryResponse{ChatId: chatID, Summary: summary})
}

// DeleteChatHandler clears the session's document, index and history, then
// forgets the session.
func DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID := utils.GetChiURLParam(r, "id")

	session, found := handlerInstance.service.Sessions.Lookup(chatID)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, chatID, "Chat not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.QueryTimeout)
	defer cancel()

	if err := session.Clear(ctx); err != nil {
		logAH.Error("Failed clearing session", "chatId", chatID, "err", err)
		WriteErrorResponse(w, http.StatusInternalServerError, chatID, "Could not clear chat")
		return
	}
	handlerInstance.service.Sessions.Drop(chatID)
	writeJsonResponse(w, http.StatusOK, map[string]string{"chat_id": chatID, "status": "deleted"})
}

// GetFormatsHandler lists the upload formats the loader accepts.
func GetFormatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.FormatsResponse{Formats: docload.SupportedFormats()})
}
