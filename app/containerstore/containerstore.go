package containerstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/pipekit/component"
	"github.com/c360/pipekit/config"
)

// MetadataPrefix marks request headers carried as container metadata.
const MetadataPrefix = "X-Container-Meta-"

// Response headers reporting container state on GET and HEAD.
const (
	HeaderObjectCount = "X-Container-Object-Count"
	HeaderBytesUsed   = "X-Container-Bytes-Used"
	HeaderTimestamp   = "X-Put-Timestamp"
)

// Schema validates the settings accepted by Factory.
const Schema = `{
	"type": "object",
	"properties": {
		"max_containers_per_account": {"type": "string", "pattern": "^[0-9]+$"}
	}
}`

// Record is the externally visible state of one container.
type Record struct {
	Account      string            `json:"account"`
	Container    string            `json:"container"`
	ObjectCount  int64             `json:"object_count"`
	BytesUsed    int64             `json:"bytes_used"`
	PutTimestamp string            `json:"put_timestamp"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type containerState struct {
	record  Record
	objects map[string]int64
}

// Store is the in-memory container-record application.
type Store struct {
	mu            sync.RWMutex
	containers    map[string]*containerState
	maxPerAccount int
	logger        *slog.Logger
}

// Factory builds the container store application.
// max_containers_per_account (default 0) caps creations per account;
// zero means unlimited.
func Factory(settings config.Settings, deps component.Dependencies) (http.Handler, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		containers:    make(map[string]*containerState),
		maxPerAccount: settings.GetInt("max_containers_per_account", 0),
		logger:        logger,
	}, nil
}

// Register registers the container store application with the given
// registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Key:         "egg:pipekit#container_store",
		Kind:        component.KindApp,
		App:         Factory,
		Schema:      Schema,
		Description: "In-memory container record application",
		Version:     "1.0.0",
	})
}

// splitPath breaks /<account>/<container>[/<object>] into its parts.
// The object part may itself contain slashes.
func splitPath(path string) (account, container, object string, err error) {
	trimmed := strings.TrimPrefix(path, "/")
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("path %q: expected /<account>/<container>", path)
	}
	account, container = parts[0], parts[1]
	if len(parts) == 3 {
		object = parts[2]
	}
	return account, container, object, nil
}

func (s *Store) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	account, container, object, err := splitPath(req.URL.Path)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if object != "" {
		s.serveObject(w, req, account, container, object)
		return
	}
	s.serveContainer(w, req, account, container)
}

func (s *Store) serveContainer(w http.ResponseWriter, req *http.Request, account, container string) {
	switch req.Method {
	case http.MethodPut:
		s.putContainer(w, req, account, container)
	case http.MethodPost:
		s.postContainer(w, req, account, container)
	case http.MethodGet:
		s.getContainer(w, account, container, true)
	case http.MethodHead:
		s.getContainer(w, account, container, false)
	case http.MethodDelete:
		s.deleteContainer(w, account, container)
	default:
		w.Header().Set("Allow", "PUT, POST, GET, HEAD, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Store) putContainer(w http.ResponseWriter, req *http.Request, account, container string) {
	key := account + "/" + container
	metadata := extractMetadata(req.Header)

	s.mu.Lock()
	defer s.mu.Unlock()

	if state, exists := s.containers[key]; exists {
		// Re-PUT refreshes timestamp and metadata, keeps the rows.
		state.record.PutTimestamp = timestamp()
		for k, v := range metadata {
			state.record.Metadata[k] = v
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if s.maxPerAccount > 0 && s.accountCountLocked(account) >= s.maxPerAccount {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	s.containers[key] = &containerState{
		record: Record{
			Account:      account,
			Container:    container,
			PutTimestamp: timestamp(),
			Metadata:     metadata,
		},
		objects: make(map[string]int64),
	}
	s.logger.Debug("Created container", "account", account, "container", container)
	w.WriteHeader(http.StatusCreated)
}

func (s *Store) postContainer(w http.ResponseWriter, req *http.Request, account, container string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.containers[account+"/"+container]
	if !exists {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	for k, v := range extractMetadata(req.Header) {
		if v == "" {
			delete(state.record.Metadata, k)
			continue
		}
		state.record.Metadata[k] = v
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Store) getContainer(w http.ResponseWriter, account, container string, withBody bool) {
	s.mu.RLock()
	state, exists := s.containers[account+"/"+container]
	var record Record
	var objects []string
	if exists {
		record = state.record
		record.Metadata = copyMetadata(state.record.Metadata)
		for name := range state.objects {
			objects = append(objects, name)
		}
	}
	s.mu.RUnlock()

	if !exists {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set(HeaderObjectCount, strconv.FormatInt(record.ObjectCount, 10))
	w.Header().Set(HeaderBytesUsed, strconv.FormatInt(record.BytesUsed, 10))
	w.Header().Set(HeaderTimestamp, record.PutTimestamp)
	for k, v := range record.Metadata {
		w.Header().Set(MetadataPrefix+k, v)
	}

	if !withBody {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sort.Strings(objects)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(struct {
		Record
		Objects []string `json:"objects"`
	}{Record: record, Objects: objects}); err != nil {
		s.logger.Error("Failed to encode container listing",
			"account", account, "container", container, "error", err)
	}
}

func (s *Store) deleteContainer(w http.ResponseWriter, account, container string) {
	key := account + "/" + container

	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.containers[key]
	if !exists {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if state.record.ObjectCount > 0 {
		http.Error(w, "Conflict", http.StatusConflict)
		return
	}

	delete(s.containers, key)
	s.logger.Debug("Deleted container", "account", account, "container", container)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Store) serveObject(w http.ResponseWriter, req *http.Request, account, container, object string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, exists := s.containers[account+"/"+container]
	if !exists {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	switch req.Method {
	case http.MethodPut:
		size, err := strconv.ParseInt(req.Header.Get("X-Size"), 10, 64)
		if err != nil || size < 0 {
			size = 0
		}
		if previous, had := state.objects[object]; had {
			state.record.BytesUsed -= previous
		} else {
			state.record.ObjectCount++
		}
		state.objects[object] = size
		state.record.BytesUsed += size
		w.WriteHeader(http.StatusCreated)
	case http.MethodDelete:
		size, had := state.objects[object]
		if !had {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		delete(state.objects, object)
		state.record.ObjectCount--
		state.record.BytesUsed -= size
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "PUT, DELETE")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// accountCountLocked counts an account's containers; callers hold mu.
func (s *Store) accountCountLocked(account string) int {
	prefix := account + "/"
	count := 0
	for key := range s.containers {
		if strings.HasPrefix(key, prefix) {
			count++
		}
	}
	return count
}

func extractMetadata(headers http.Header) map[string]string {
	metadata := make(map[string]string)
	for name, values := range headers {
		if key, ok := strings.CutPrefix(name, MetadataPrefix); ok && len(values) > 0 {
			metadata[key] = values[0]
		}
	}
	return metadata
}

func copyMetadata(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func timestamp() string {
	return strconv.FormatFloat(float64(time.Now().UnixNano())/1e9, 'f', 5, 64)
}
