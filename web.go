package main

import (
	"context"
	"encoding/json"
	"net/http"
)

type fileLister interface {
	listFiles(ctx context.Context) ([]storedFile, error)
}

type webExporter struct {
	status *loadStatusManager
	files  fileLister
	logger logger

	server *http.Server
}

func newWebExporter(status *loadStatusManager, files fileLister, log logger) *webExporter {
	return &webExporter{
		status: status,
		files:  files,
		logger: log,
	}
}

func (i *webExporter) handler(cfg *webConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", i.getStatus)
	mux.HandleFunc("/files", i.getFiles)

	var handler http.Handler = mux

	if !cfg.DisableRequestLog {
		handler = &webLoggerHandler{
			logger: i.logger.newSubLogger("request"),
			next:   handler,
		}
	}

	return handler
}

func (i *webExporter) newServer(cfg *webConfig) *http.Server {
	return &http.Server{
		Addr:    cfg.Address,
		Handler: i.handler(cfg),
	}
}

func (i *webExporter) getStatus(resp http.ResponseWriter, _ *http.Request) {
	i.writeJSON(resp, i.status.get())
}

func (i *webExporter) getFiles(resp http.ResponseWriter, req *http.Request) {
	files, err := i.files.listFiles(req.Context())

	if err != nil {
		i.logger.Errorf("failed to list files: %v", err)
		resp.WriteHeader(500)
		return
	}

	i.writeJSON(resp, files)
}

func (i *webExporter) writeJSON(resp http.ResponseWriter, v any) {
	marshal, err := json.Marshal(v)

	if err != nil {
		i.logger.Errorf("failed to serialize response: %v", err)
		resp.WriteHeader(500)
		return
	}

	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(200)
	_, _ = resp.Write(marshal)
}

type webLoggerHandler struct {
	logger logger
	next   http.Handler
}

func (w *webLoggerHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	w.next.ServeHTTP(writer, request)
	w.logger.Printf("[%s] %s %s", request.RemoteAddr, request.Method, request.URL)
}
