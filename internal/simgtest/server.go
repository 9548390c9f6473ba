// Package simgtest runs an in-process fake of the simg HTTP service.
package simgtest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// InvalidFolder is rejected by the server with code INVFLDR.
const InvalidFolder = "invalid_folder"

// Request is a recorded call.
type Request struct {
	Method     string
	EscapedURI string
	Header     http.Header
	Body       []byte
}

// Server stores objects in memory behind the simg HTTP API.
type Server struct {
	*httptest.Server

	apiKey string

	mu       sync.Mutex
	objects  map[string][]byte
	requests []Request
}

// NewServer starts a server accepting apiKey. Close it when done.
func NewServer(apiKey string) *Server {
	s := &Server{
		apiKey:  apiKey,
		objects: make(map[string][]byte),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload/{folder}", s.upload)
	mux.HandleFunc("DELETE /remove/{folder}/{filename}", s.remove)
	mux.HandleFunc("GET /image/{folder}/{filename}", s.image)

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// Object returns the stored bytes of folder/filename.
func (s *Server) Object(folder, filename string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key(folder, filename)]
	return data, ok
}

// Put stores an object directly, bypassing the API.
func (s *Server) Put(folder, filename string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key(folder, filename)] = append([]byte(nil), data...)
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent call. It panics if there is none.
func (s *Server) LastRequest() Request {
	reqs := s.Requests()
	return reqs[len(reqs)-1]
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:     r.Method,
			EscapedURI: r.URL.EscapedPath(),
			Header:     r.Header.Clone(),
			Body:       body,
		})
		s.mu.Unlock()

		if r.Header.Get("x-api-key") != s.apiKey {
			writeJSON(w, http.StatusForbidden, map[string]string{"code": "INVKEY"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	folder := r.PathValue("folder")
	filename := r.Header.Get("x-filename")
	if !validFolder(folder) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "INVFLDR"})
		return
	}
	if !validFilename(filename) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "INVNAME"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "NOBODY"})
		return
	}

	s.Put(folder, filename, body)
	writeJSON(w, http.StatusCreated, map[string]any{
		"folder":   folder,
		"filename": filename,
		"size":     len(body),
	})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	folder, filename := r.PathValue("folder"), r.PathValue("filename")
	if !validFolder(folder) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"code": "INVFLDR"})
		return
	}

	s.mu.Lock()
	_, ok := s.objects[key(folder, filename)]
	delete(s.objects, key(folder, filename))
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "NOTFOUND"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": filename})
}

func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	data, ok := s.Object(r.PathValue("folder"), r.PathValue("filename"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"code": "NOTFOUND"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func validFolder(folder string) bool {
	return folder != "" && folder != InvalidFolder
}

func validFilename(filename string) bool {
	return filename != "" && !strings.ContainsAny(filename, "/\\")
}

func key(folder, filename string) string {
	return folder + "/" + filename
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
