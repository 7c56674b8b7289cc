package main

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/nickyhof/FlatDB"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/db"
	"github.com/nickyhof/FlatDB/ps"
)

var errNoDatabase = errors.New("no database selected: send USE <database>")

// Server answers queries over TCP, one JSON response per request line.
type Server struct {
	listener   net.Listener
	instance   *FlatDB.Instance
	identity   core.Identity
	authConfig *AuthConfig
	tlsEnabled bool

	// default database for new connections
	database string

	mu      sync.RWMutex
	schemas map[string]*core.Database

	cron     *cron.Cron
	pullAuth *ps.RemoteAuth

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewServer creates a server whose clients query as identity.
func NewServer(instance *FlatDB.Instance, identity core.Identity) *Server {
	return &Server{
		instance: instance,
		identity: identity,
		schemas:  make(map[string]*core.Database),
		conns:    make(map[net.Conn]struct{}),
		done:     make(chan struct{}),
	}
}

// NewServerWithAuth creates a server that requires AUTH before queries.
func NewServerWithAuth(instance *FlatDB.Instance, authConfig *AuthConfig) *Server {
	s := NewServer(instance, core.Identity{Name: "FlatDB Server", Email: "server@flatdb.local"})
	s.authConfig = authConfig
	return s
}

// SetDefaultDatabase selects the database new connections start with.
func (s *Server) SetDefaultDatabase(name string) error {
	if _, err := s.schema(name); err != nil {
		return err
	}
	s.database = name
	return nil
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("Query server listening on %s", listener.Addr())

	go s.acceptLoop()
	return nil
}

// StartTLS is Start with TLS using the given certificate and key files.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start TLS server: %w", err)
	}
	s.listener = listener
	s.tlsEnabled = true

	log.Printf("Query server listening on %s (TLS)", listener.Addr())

	go s.acceptLoop()
	return nil
}

// SetPullAuth sets the credentials Reload uses to pull origin.
func (s *Server) SetPullAuth(auth *ps.RemoteAuth) {
	s.pullAuth = auth
}

// StartReload schedules Reload with a cron spec such as "*/5 * * * *" or
// "@every 1m".
func (s *Server) StartReload(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := s.Reload(); err != nil {
			log.Printf("Reload failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}
	c.Start()
	s.cron = c
	log.Printf("Reloading catalog on schedule %q", spec)
	return nil
}

// Reload pulls a git catalog's origin, when it has one, and forgets every
// cached schema so the next USE or query reads them again.
func (s *Server) Reload() error {
	persistence := s.instance.Persistence
	if persistence.IsVersioned() {
		remotes, err := persistence.ListRemotes()
		if err != nil {
			return err
		}
		for _, remote := range remotes {
			if remote.Name == ps.DefaultRemote {
				if err := persistence.Pull(ps.DefaultRemote, "", s.pullAuth); err != nil {
					return err
				}
				break
			}
		}
	}

	s.mu.Lock()
	s.schemas = make(map[string]*core.Database)
	s.mu.Unlock()

	log.Printf("Catalog reloaded (%s)", persistence.LatestTransaction().Id)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	close(s.done)
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	if s.listener != nil {
		s.listener.Close()
	}

	s.connMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// schema returns the named database's schema, loading it on first use.
func (s *Server) schema(name string) (*core.Database, error) {
	key := core.Fold(name)

	s.mu.RLock()
	database, ok := s.schemas[key]
	s.mu.RUnlock()
	if ok {
		return database, nil
	}

	database, err := s.instance.Database(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.schemas[key] = database
	s.mu.Unlock()
	return database, nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}

		s.connMu.Lock()
		s.conns[conn] = struct{}{}
		s.connMu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) newConnectionState() *ConnectionState {
	state := &ConnectionState{}
	if !s.authConfig.required() {
		identity := s.identity
		state.identity = &identity
		state.authenticated = true
	}
	if s.database != "" {
		state.database, _ = s.schema(s.database)
	}
	return state
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()
	defer func() {
		s.connMu.Lock()
		delete(s.conns, conn)
		s.connMu.Unlock()
	}()

	log.Printf("Client connected: %s", conn.RemoteAddr())

	state := s.newConnectionState()
	reader := bufio.NewReader(conn)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("Read error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			log.Printf("Client disconnected: %s", conn.RemoteAddr())
			return
		}

		data, err := EncodeResponse(s.handleLine(line, state))
		if err != nil {
			log.Printf("Failed to encode response: %v", err)
			continue
		}

		if _, err := conn.Write(data); err != nil {
			log.Printf("Write error to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}

// handleLine dispatches one request line: AUTH, USE, a JSON Request or a
// bare query.
func (s *Server) handleLine(line string, state *ConnectionState) Response {
	if word, _, _ := strings.Cut(line, " "); strings.EqualFold(word, "AUTH") {
		return s.handleAuth(line, state)
	}

	if !state.IsAuthenticated() {
		return errorResponse("auth", errAuthRequired)
	}

	if name, ok := parseUse(line); ok {
		return s.handleUse(name, state)
	}

	req := Request{Query: line}
	if strings.HasPrefix(line, "{") {
		var err error
		if req, err = DecodeRequest([]byte(line)); err != nil {
			return errorResponse("query", fmt.Errorf("invalid request: %w", err))
		}
	}

	database := state.database
	if req.Database != "" {
		var err error
		if database, err = s.schema(req.Database); err != nil {
			return errorResponse("query", err)
		}
	}

	return s.executeQuery(database, *state.identity, req.Query)
}

// parseUse recognizes "USE <database>" with an optional ';'.
func parseUse(line string) (string, bool) {
	parts := strings.Fields(strings.TrimSuffix(strings.TrimSpace(line), ";"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "USE") {
		return "", false
	}
	return parts[1], true
}

func (s *Server) handleUse(name string, state *ConnectionState) Response {
	database, err := s.schema(name)
	if err != nil {
		return errorResponse("use", err)
	}
	state.database = database

	tables := make([]string, len(database.Tables))
	for i, table := range database.Tables {
		tables[i] = table.Name
	}
	data, _ := json.Marshal(UseResponse{Database: database.Name, Tables: tables})
	return Response{
		Success: true,
		Type:    "use",
		Result:  data,
	}
}

func (s *Server) executeQuery(database *core.Database, identity core.Identity, query string) Response {
	if database == nil {
		return errorResponse("query", errNoDatabase)
	}

	result, err := s.instance.Engine(identity).Query(database, query)
	if err != nil {
		if db.Fatal(err) {
			log.Printf("Query on %s failed: %v", database.Name, err)
		}
		return errorResponse("query", err)
	}

	log.Printf("Query %s on %s: %d rows", result.QueryID, database.Name, result.RecordsRead)
	return queryResponse(result)
}
