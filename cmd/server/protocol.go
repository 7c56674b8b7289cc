// Package main provides a TCP query server for FlatDB catalogs.
package main

import (
	"encoding/json"
	"errors"

	"github.com/nickyhof/FlatDB/analyzer"
	"github.com/nickyhof/FlatDB/db"
	"github.com/nickyhof/FlatDB/sql"
)

// Request is a query sent as a JSON line. Database overrides the
// connection's current database for this query only.
type Request struct {
	Query    string `json:"query"`
	Database string `json:"database,omitempty"`
}

// Response represents the server's response to one request line.
type Response struct {
	ID        string          `json:"id,omitempty"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
	ErrorKind string          `json:"error_kind,omitempty"` // "syntax", "semantic" or "fatal"
	Type      string          `json:"type,omitempty"`       // "query", "use" or "auth"
	Result    json.RawMessage `json:"result,omitempty"`
}

// QueryResponse contains tabular query results.
type QueryResponse struct {
	Columns     []string   `json:"columns"`
	Data        [][]string `json:"data"`
	RecordsRead int        `json:"records_read"`
	TimeMs      float64    `json:"time_ms"`
	Transaction string     `json:"transaction,omitempty"`
}

// UseResponse describes the database selected by USE.
type UseResponse struct {
	Database string   `json:"database"`
	Tables   []string `json:"tables"`
}

// AuthResponse contains authentication results.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	Identity      string `json:"identity"`
	ExpiresIn     int    `json:"expires_in,omitempty"`
}

// EncodeResponse serializes a Response to JSON with a newline.
func EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// DecodeRequest parses a JSON request from a byte slice.
func DecodeRequest(data []byte) (Request, error) {
	var req Request
	err := json.Unmarshal(data, &req)
	return req, err
}

func errorResponse(kind string, err error) Response {
	return Response{
		Success:   false,
		Type:      kind,
		Error:     err.Error(),
		ErrorKind: errorKind(err),
	}
}

func errorKind(err error) string {
	var syntaxErr *sql.SyntaxError
	var semanticErr *analyzer.SemanticError
	switch {
	case errors.As(err, &syntaxErr):
		return "syntax"
	case errors.As(err, &semanticErr):
		return "semantic"
	case db.Fatal(err):
		return "fatal"
	default:
		return ""
	}
}

func queryResponse(result db.QueryResult) Response {
	qr := QueryResponse{
		Columns:     result.Columns,
		Data:        result.Data,
		RecordsRead: result.RecordsRead,
		TimeMs:      result.ExecutionTimeSec * 1000,
		Transaction: result.Transaction.Id,
	}
	if qr.Data == nil {
		qr.Data = [][]string{}
	}
	data, _ := json.Marshal(qr)
	return Response{
		ID:      result.QueryID.String(),
		Success: true,
		Type:    "query",
		Result:  data,
	}
}
