package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"portalsync/internal/notify"
	"portalsync/internal/settings"
	"portalsync/pkg/api"
)

// A helper function to write standard JSON responses.
func (s *Server) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (s *Server) httpError(w http.ResponseWriter, message string, code int) {
	s.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.startWorkflow(w, notify.WorkflowExport, func(ctx context.Context) (notify.Result, error) {
		return s.runner.Export(ctx)
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req api.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.httpError(w, "Invalid body", http.StatusBadRequest)
		return
	}
	if req.FilePath == "" {
		s.httpError(w, "filePath is required", http.StatusBadRequest)
		return
	}
	s.startWorkflow(w, notify.WorkflowImport, func(ctx context.Context) (notify.Result, error) {
		return s.runner.Import(ctx, req.FilePath, req.ThenSales)
	})
}

func (s *Server) handleSales(w http.ResponseWriter, r *http.Request) {
	s.startWorkflow(w, notify.WorkflowSales, func(ctx context.Context) (notify.Result, error) {
		return s.runner.SalesDownload(ctx)
	})
}

// startWorkflow launches the workflow in the background and acknowledges
// with 202. A run may span hours, so it is decoupled from the request
// context; its outcome reaches clients through the event stream.
func (s *Server) startWorkflow(w http.ResponseWriter, wf notify.Workflow, fn func(context.Context) (notify.Result, error)) {
	if !s.running.CompareAndSwap(false, true) {
		s.httpError(w, "A workflow is already running", http.StatusConflict)
		return
	}

	go func() {
		defer s.running.Store(false)
		res, err := fn(context.Background())
		if err != nil {
			s.log.Error("workflow failed to start", "workflow", string(wf), "error", err)
			return
		}
		s.log.Info("workflow finished", "workflow", string(wf), "success", res.Success, "message", res.Message)
	}()

	s.respondJson(w, http.StatusAccepted, api.RunAccepted{Workflow: string(wf), State: "started"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.respondJson(w, http.StatusOK, apiSettings(s.settings.Redacted()))
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var in api.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.httpError(w, "Invalid body", http.StatusBadRequest)
		return
	}

	// The GET view redacts the password; an empty one on update means
	// "keep what is stored".
	if in.Password == "" {
		in.Password = s.settings.Get().Password
	}

	if err := s.settings.Put(storedSettings(in)); err != nil {
		s.log.Error("settings write failed", "error", err)
		s.httpError(w, "Failed to persist settings", http.StatusInternalServerError)
		return
	}
	s.respondJson(w, http.StatusOK, apiSettings(s.settings.Redacted()))
}

// apiSettings maps the stored settings onto the wire type.
func apiSettings(in settings.Settings) api.Settings {
	return api.Settings{
		URL:               in.URL,
		Username:          in.Username,
		Password:          in.Password,
		DownloadFolder:    in.DownloadFolder,
		DestinationFolder: in.DestinationFolder,
		SpreadsheetPath:   in.SpreadsheetPath,
		UpdaterPath:       in.UpdaterPath,
	}
}

func storedSettings(in api.Settings) settings.Settings {
	return settings.Settings{
		URL:               in.URL,
		Username:          in.Username,
		Password:          in.Password,
		DownloadFolder:    in.DownloadFolder,
		DestinationFolder: in.DestinationFolder,
		SpreadsheetPath:   in.SpreadsheetPath,
		UpdaterPath:       in.UpdaterPath,
	}
}
