package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
)

// resourceKeys maps each resource to its natural key field.
var resourceKeys = map[string]string{
	"recipes":       "id",
	"favorites":     "id",
	"shoppingLists": "recipeId",
	"chatMessages":  "messageId",
	"chatSessions":  "sessionId",
}

// FakeRemote is an in-memory implementation of the remote store HTTP
// contract: GET lists owned entities, POST upserts one entity or
// {items: [...]} for bulk, DELETE ?id=<key> removes one entity.
type FakeRemote struct {
	mu          sync.Mutex
	collections map[string]map[string]json.RawMessage
	failKeys    map[string]map[string]bool
	rejectAuth  bool
	server      *httptest.Server
}

// NewFakeRemote creates a fake remote store and starts its HTTP server
func NewFakeRemote() *FakeRemote {
	f := &FakeRemote{
		collections: make(map[string]map[string]json.RawMessage),
		failKeys:    make(map[string]map[string]bool),
	}

	router := chi.NewRouter()
	router.Get("/{resource}", f.handleList)
	router.Post("/{resource}", f.handleUpsert)
	router.Delete("/{resource}", f.handleDelete)
	router.Head("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	f.server = httptest.NewServer(router)
	return f
}

// URL returns the base URL of the fake server
func (f *FakeRemote) URL() string {
	return f.server.URL
}

// Close shuts the server down, simulating an unreachable remote
func (f *FakeRemote) Close() {
	f.server.Close()
}

// RejectAuth makes every request fail with 401
func (f *FakeRemote) RejectAuth(reject bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectAuth = reject
}

// FailKey makes bulk upserts report the given key as failed
func (f *FakeRemote) FailKey(resource, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[resource] == nil {
		f.failKeys[resource] = make(map[string]bool)
	}
	f.failKeys[resource][key] = true
}

// Seed stores an entity directly, bypassing HTTP
func (f *FakeRemote) Seed(resource string, entity interface{}) {
	doc, err := json.Marshal(entity)
	if err != nil {
		panic(err)
	}
	key := keyOf(resource, doc)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.collections[resource] == nil {
		f.collections[resource] = make(map[string]json.RawMessage)
	}
	f.collections[resource][key] = doc
}

// Count returns the number of stored entities in a resource
func (f *FakeRemote) Count(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections[resource])
}

// Has reports whether a key exists in a resource
func (f *FakeRemote) Has(resource, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.collections[resource][key]
	return ok
}

// Get decodes one stored entity into dest, reporting whether it exists
func (f *FakeRemote) Get(resource, key string, dest interface{}) bool {
	f.mu.Lock()
	doc, ok := f.collections[resource][key]
	f.mu.Unlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(doc, dest); err != nil {
		panic(err)
	}
	return true
}

func keyOf(resource string, doc json.RawMessage) string {
	field, ok := resourceKeys[resource]
	if !ok {
		field = "id"
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(doc, &m); err != nil {
		return ""
	}
	var key string
	if raw, ok := m[field]; ok {
		_ = json.Unmarshal(raw, &key)
	}
	return key
}

func (f *FakeRemote) authorized(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	reject := f.rejectAuth
	f.mu.Unlock()
	if reject || r.Header.Get("Authorization") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}
	return true
}

func (f *FakeRemote) handleList(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	resource := chi.URLParam(r, "resource")

	f.mu.Lock()
	docs := make([]json.RawMessage, 0, len(f.collections[resource]))
	for _, doc := range f.collections[resource] {
		docs = append(docs, doc)
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs) //nolint:errcheck
}

func (f *FakeRemote) handleUpsert(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	resource := chi.URLParam(r, "resource")

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	// A bulk request is exactly {"items": [...]}. Entities that carry their
	// own "items" field (shopping lists) have other keys alongside it.
	if rawItems, ok := body["items"]; ok && len(body) == 1 {
		f.handleBulk(w, resource, rawItems)
		return
	}

	// Single upsert: re-encode the decoded object.
	doc, err := json.Marshal(body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	key := keyOf(resource, doc)
	if key == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	if f.collections[resource] == nil {
		f.collections[resource] = make(map[string]json.RawMessage)
	}
	f.collections[resource][key] = doc
	f.mu.Unlock()

	w.WriteHeader(http.StatusOK)
}

type bulkFailure struct {
	Key    string `json:"id"`
	Reason string `json:"error,omitempty"`
}

type bulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []bulkFailure `json:"failed,omitempty"`
}

func (f *FakeRemote) handleBulk(w http.ResponseWriter, resource string, rawItems json.RawMessage) {
	var items []json.RawMessage
	if err := json.Unmarshal(rawItems, &items); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var result bulkResult
	result.Succeeded = []string{}

	f.mu.Lock()
	if f.collections[resource] == nil {
		f.collections[resource] = make(map[string]json.RawMessage)
	}
	for _, doc := range items {
		key := keyOf(resource, doc)
		if key == "" || f.failKeys[resource][key] {
			result.Failed = append(result.Failed, bulkFailure{Key: key, Reason: "rejected"})
			continue
		}
		f.collections[resource][key] = doc
		result.Succeeded = append(result.Succeeded, key)
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result) //nolint:errcheck
}

func (f *FakeRemote) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	resource := chi.URLParam(r, "resource")
	key := r.URL.Query().Get("id")

	f.mu.Lock()
	_, exists := f.collections[resource][key]
	if exists {
		delete(f.collections[resource], key)
	}
	f.mu.Unlock()

	if !exists {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}
