package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andremarcal/draftsync/internal/ops"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))
	r.Get("/editor/status", editorStatusHandler(cfg))
	r.Get("/projects", listProjectsHandler(cfg))

	r.Post("/analyze", analyzeHandler(cfg))
	r.Post("/sync", syncHandler(cfg))
	r.Post("/loop/media", loopMediaHandler(cfg))
	r.Post("/loop/audio", loopAudioHandler(cfg))

	r.Post("/srt/scan", scanSrtMatchesHandler(cfg))
	r.Post("/srt/insert", insertSrtHandler(cfg))
	r.Post("/srt/batch/scan", scanSrtBatchHandler(cfg))
	r.Post("/srt/batch/insert", insertSrtBatchHandler(cfg))
	r.Post("/srt/create", createAndInsertSrtHandler(cfg))

	r.Post("/merge", mergeProjectsHandler(cfg))

	r.Post("/project/media", mediaPathsHandler(cfg))
	r.Post("/project/media/update", updateMediaPathsHandler(cfg))
	r.Post("/project/export", exportProjectHandler(cfg))
	r.Post("/project/import", importProjectHandler(cfg))

	r.Post("/backups/list", listBackupsHandler(cfg))
	r.Post("/backups/restore", restoreBackupHandler(cfg))
	r.Post("/backups/delete", deleteBackupHandler(cfg))
	r.Post("/backups/delete-all", deleteAllBackupsHandler(cfg))

	return r
}

// decode parses a JSON request body, writing the error response itself.
func decode[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "BAD_REQUEST")
		return req, false
	}
	return req, true
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: cfg.Version,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func editorStatusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Service.EditorStatus(r.Context()))
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := cfg.Service.ListProjects(r.Context(), ops.ListProjectsRequest{
			Dir: r.URL.Query().Get("dir"),
		})
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func analyzeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.AnalyzeRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.Analyze(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func syncHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.SyncRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.Sync(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func loopMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.LoopMediaRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.LoopMedia(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func loopAudioHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.LoopAudioRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.LoopAudio(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func scanSrtMatchesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.ScanSrtMatchesRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.ScanSrtMatches(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func insertSrtHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.InsertSrtRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.InsertSrt(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func scanSrtBatchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.ScanSrtBatchRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.ScanSrtBatch(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func insertSrtBatchHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.InsertSrtBatchRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.InsertSrtBatch(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createAndInsertSrtHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.CreateAndInsertSrtRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.CreateAndInsertSrt(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func mergeProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.MergeProjectsRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.MergeProjects(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func mediaPathsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.MediaPathsRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.MediaPaths(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func updateMediaPathsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.UpdateMediaPathsRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.UpdateMediaPaths(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func exportProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.ExportProjectRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.ExportProject(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func importProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.ImportProjectRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.ImportProject(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func listBackupsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.ListBackupsRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.ListBackups(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func restoreBackupHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.RestoreBackupRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.RestoreBackup(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func deleteBackupHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.DeleteBackupRequest](w, r)
		if !ok {
			return
		}
		if err := cfg.Service.DeleteBackup(r.Context(), req); err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

func deleteAllBackupsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode[ops.DeleteAllBackupsRequest](w, r)
		if !ok {
			return
		}
		resp, err := cfg.Service.DeleteAllBackups(r.Context(), req)
		if err != nil {
			WriteOpError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
