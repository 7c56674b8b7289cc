package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nickyhof/FlatDB"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/db"
	"github.com/nickyhof/FlatDB/ps"
)

var bindingIdentity = core.Identity{
	Name:  "FlatDB Bindings",
	Email: "bindings@flatdb.local",
}

// Handle represents an open catalog
type Handle struct {
	instance *FlatDB.Instance
	engine   *db.Engine
}

var (
	handlesMu  sync.Mutex
	handles    = make(map[int]*Handle)
	nextHandle = 1
)

// Response mirrors the server protocol for consistency
type Response struct {
	ID      string          `json:"id,omitempty"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Type    string          `json:"type,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
}

type QueryResponse struct {
	Columns         []string   `json:"columns"`
	Data            [][]string `json:"data"`
	RecordsRead     int        `json:"records_read"`
	ExecutionTimeMs float64    `json:"execution_time_ms"`
	ExecutionOps    int        `json:"execution_ops"`
}

func register(instance *FlatDB.Instance) int {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	handle := nextHandle
	nextHandle++
	handles[handle] = &Handle{
		instance: instance,
		engine:   instance.Engine(bindingIdentity),
	}
	return handle
}

func lookup(handle int) (*Handle, bool) {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	h, ok := handles[handle]
	return h, ok
}

func closeHandle(handle int) {
	handlesMu.Lock()
	defer handlesMu.Unlock()

	delete(handles, handle)
}

// openCatalog opens a plain directory or git catalog and returns its handle,
// or -1.
func openCatalog(path string, gitUrl *string) int {
	persistence, err := ps.NewFilePersistence(path, gitUrl)
	if err != nil {
		return -1
	}
	return register(FlatDB.Open(persistence))
}

func openGitCatalog(path string, gitUrl *string) int {
	if gitUrl != nil {
		return openCatalog(path, gitUrl)
	}
	persistence, err := ps.NewGitPersistence(path)
	if err != nil {
		return -1
	}
	return register(FlatDB.Open(persistence))
}

func openRemoteCatalog(url string) int {
	if !ps.IsRemoteURL(url) {
		return -1
	}
	instance, err := FlatDB.OpenPath(context.Background(), url, nil, nil)
	if err != nil {
		return -1
	}
	return register(instance)
}

// runQuery executes query against database and encodes the outcome.
func runQuery(handle int, database, query string) []byte {
	h, ok := lookup(handle)
	if !ok {
		return errorResponse("Invalid handle")
	}

	schema, err := h.instance.Database(database)
	if err != nil {
		return errorResponse(err.Error())
	}

	result, err := h.engine.Query(schema, query)
	if err != nil {
		return errorResponse(err.Error())
	}

	data, _ := json.Marshal(QueryResponse{
		Columns:         result.Columns,
		Data:            result.Data,
		RecordsRead:     result.RecordsRead,
		ExecutionTimeMs: result.ExecutionTimeSec * 1000,
		ExecutionOps:    result.ExecutionOps,
	})
	resp, _ := json.Marshal(Response{
		ID:      result.QueryID.String(),
		Success: true,
		Type:    "query",
		Result:  data,
	})
	return resp
}

func errorResponse(msg string) []byte {
	resp, _ := json.Marshal(Response{
		Success: false,
		Error:   msg,
	})
	return resp
}
