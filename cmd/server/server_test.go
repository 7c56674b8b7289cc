package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/nickyhof/FlatDB"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/op"
	"github.com/nickyhof/FlatDB/ps"
)

var testIdentity = core.Identity{Name: "test", Email: "test@test.com"}

func schoolSchema() core.Database {
	return core.Database{
		Name: "school",
		Tables: []core.TableMeta{
			{Name: "Students", RecordSize: 32, Columns: []core.ColumnMeta{
				{Name: "id", Type: core.IntType, Index: core.UniqueIndexed},
				{Name: "name", Type: core.StringType},
				{Name: "gpa", Type: core.RealType},
			}},
			{Name: "Teachers", Columns: []core.ColumnMeta{
				{Name: "name", Type: core.StringType},
			}},
		},
	}
}

// setupInstance creates the school database; Teachers has no data file.
func setupInstance(t *testing.T) *FlatDB.Instance {
	t.Helper()

	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	_, dbOp, err := op.CreateDatabase(schoolSchema(), persistence, testIdentity)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	students, _ := dbOp.Table("Students")
	_, err = students.PutAll([]op.Record{
		{core.IntValue(1), core.StringValue("Alice"), core.RealValue(3.9)},
		{core.IntValue(2), core.StringValue("Bob"), core.RealValue(3.1)},
		{core.IntValue(3), core.StringValue("Cara"), core.RealValue(3.5)},
	}, testIdentity)
	if err != nil {
		t.Fatalf("Failed to write students: %v", err)
	}
	return FlatDB.Open(persistence)
}

func setupTestServer(t *testing.T) (*Server, func()) {
	server := NewServer(setupInstance(t), testIdentity)
	if err := server.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	return server, func() {
		server.Stop()
	}
}

type client struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, addr string) *client {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

func (c *client) send(line string) Response {
	c.t.Helper()

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.t.Fatalf("Failed to send %q: %v", line, err)
	}

	reply, err := c.reader.ReadString('\n')
	if err != nil {
		c.t.Fatalf("Failed to read response: %v", err)
	}

	var resp Response
	if err := json.Unmarshal([]byte(reply), &resp); err != nil {
		c.t.Fatalf("Failed to parse response: %v", err)
	}
	return resp
}

func decodeQuery(t *testing.T, resp Response) QueryResponse {
	t.Helper()
	if !resp.Success {
		t.Fatalf("Query failed: %s", resp.Error)
	}
	if resp.Type != "query" {
		t.Fatalf("Expected query type, got %s", resp.Type)
	}
	var qr QueryResponse
	if err := json.Unmarshal(resp.Result, &qr); err != nil {
		t.Fatalf("Failed to parse query result: %v", err)
	}
	return qr
}

func TestServerStartStop(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	if server.Addr() == "" {
		t.Error("Expected non-empty address")
	}
	if server.TLSEnabled() {
		t.Error("Did not expect TLS")
	}
}

func TestServerUseAndQuery(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	c := dial(t, server.Addr())

	resp := c.send("USE school;")
	if !resp.Success || resp.Type != "use" {
		t.Fatalf("USE failed: %+v", resp)
	}
	var use UseResponse
	if err := json.Unmarshal(resp.Result, &use); err != nil {
		t.Fatalf("Failed to parse use result: %v", err)
	}
	if use.Database != "school" || !reflect.DeepEqual(use.Tables, []string{"Students", "Teachers"}) {
		t.Errorf("Unexpected use result %+v", use)
	}

	resp = c.send("SELECT name, gpa FROM Students WHERE gpa >= 3.5 ORDER BY gpa DESC;")
	if _, err := uuid.Parse(resp.ID); err != nil {
		t.Errorf("Expected a query id, got %q", resp.ID)
	}
	qr := decodeQuery(t, resp)
	if !reflect.DeepEqual(qr.Columns, []string{"name", "gpa"}) {
		t.Errorf("Unexpected columns %v", qr.Columns)
	}
	if !reflect.DeepEqual(qr.Data, [][]string{{"Alice", "3.9"}, {"Cara", "3.5"}}) {
		t.Errorf("Unexpected data %v", qr.Data)
	}
	if qr.RecordsRead != 2 {
		t.Errorf("Expected 2 records, got %d", qr.RecordsRead)
	}
	if qr.Transaction == "" {
		t.Error("Expected the catalog transaction")
	}

	// The terminating ';' is optional.
	qr = decodeQuery(t, c.send("SELECT COUNT(id) FROM Students"))
	if qr.Data[0][0] != "3" {
		t.Errorf("Expected 3, got %v", qr.Data)
	}
}

func TestServerNoDatabase(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	resp := dial(t, server.Addr()).send("SELECT id FROM Students;")
	if resp.Success || !strings.Contains(resp.Error, "no database selected") {
		t.Errorf("Expected no database error, got %+v", resp)
	}

	resp = dial(t, server.Addr()).send("USE nope")
	if resp.Success || resp.Type != "use" {
		t.Errorf("Expected USE of an unknown database to fail, got %+v", resp)
	}
}

func TestServerDefaultDatabase(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	if err := server.SetDefaultDatabase("nope"); err == nil {
		t.Error("Expected an error for an unknown database")
	}
	if err := server.SetDefaultDatabase("school"); err != nil {
		t.Fatalf("SetDefaultDatabase failed: %v", err)
	}

	qr := decodeQuery(t, dial(t, server.Addr()).send("SELECT name FROM Students LIMIT 1;"))
	if !reflect.DeepEqual(qr.Data, [][]string{{"Alice"}}) {
		t.Errorf("Unexpected data %v", qr.Data)
	}
}

func TestServerJSONRequest(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	qr := decodeQuery(t, dial(t, server.Addr()).send(`{"query": "SELECT MAX(gpa) FROM Students;", "database": "school"}`))
	if !reflect.DeepEqual(qr.Data, [][]string{{"3.9"}}) {
		t.Errorf("Unexpected data %v", qr.Data)
	}

	resp := dial(t, server.Addr()).send(`{"query": `)
	if resp.Success || !strings.Contains(resp.Error, "invalid request") {
		t.Errorf("Expected an invalid request error, got %+v", resp)
	}
}

func TestServerErrors(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	c := dial(t, server.Addr())
	c.send("USE school")

	tests := []struct {
		query string
		kind  string
	}{
		{"SELECT FROM Students;", "syntax"},
		{"SELECT nope FROM Students;", "semantic"},
		{"SELECT name FROM Teachers;", "fatal"},
	}
	for _, test := range tests {
		t.Run(test.kind, func(t *testing.T) {
			resp := c.send(test.query)
			if resp.Success {
				t.Fatalf("Expected %q to fail", test.query)
			}
			if resp.ErrorKind != test.kind {
				t.Errorf("Expected %s error, got %q (%s)", test.kind, resp.ErrorKind, resp.Error)
			}
		})
	}

	// The connection survives every kind of error.
	qr := decodeQuery(t, c.send("SELECT id FROM Students WHERE name = 'bob';"))
	if !reflect.DeepEqual(qr.Data, [][]string{{"2"}}) {
		t.Errorf("Unexpected data %v", qr.Data)
	}
}

func TestServerQuit(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	c := dial(t, server.Addr())
	if _, err := c.conn.Write([]byte("quit\n")); err != nil {
		t.Fatalf("Failed to send quit: %v", err)
	}
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.reader.ReadString('\n'); err == nil {
		t.Error("Expected the server to close the connection")
	}
}

func TestServerReload(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	tables := func() []string {
		resp := dial(t, server.Addr()).send("USE school")
		var use UseResponse
		json.Unmarshal(resp.Result, &use)
		return use.Tables
	}

	if got := tables(); len(got) != 2 {
		t.Fatalf("Expected 2 tables, got %v", got)
	}

	schema := schoolSchema()
	schema.Tables = append(schema.Tables, core.TableMeta{Name: "Clubs", Columns: []core.ColumnMeta{{Name: "name", Type: core.StringType}}})
	if _, err := server.instance.Persistence.CreateDatabase(schema, testIdentity); err != nil {
		t.Fatalf("Failed to update schema: %v", err)
	}

	if got := tables(); len(got) != 2 {
		t.Errorf("Expected the cached schema before reload, got %v", got)
	}
	if err := server.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got := tables(); !reflect.DeepEqual(got, []string{"Students", "Teachers", "Clubs"}) {
		t.Errorf("Expected the new schema after reload, got %v", got)
	}
}

func TestServerReloadSchedule(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	if err := server.StartReload("not a schedule"); err == nil {
		t.Error("Expected an invalid schedule to fail")
	}
	if err := server.StartReload("@every 1h"); err != nil {
		t.Fatalf("StartReload failed: %v", err)
	}
	if len(server.cron.Entries()) != 1 {
		t.Errorf("Expected one scheduled reload, got %d", len(server.cron.Entries()))
	}
}

func TestServerReloadWithoutOrigin(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	server.SetPullAuth(&ps.RemoteAuth{Type: ps.AuthTypeToken, Token: "secret"})
	if err := server.instance.Persistence.AddRemote("upstream", "https://example.com/catalog.git"); err != nil {
		t.Fatalf("AddRemote failed: %v", err)
	}

	// only origin is pulled
	if err := server.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
}

func TestParseUse(t *testing.T) {
	tests := []struct {
		line string
		name string
		ok   bool
	}{
		{"USE school", "school", true},
		{"use school;", "school", true},
		{"  Use   school ; ", "school", true},
		{"USE", "", false},
		{"USE a b", "", false},
		{"SELECT id FROM USE;", "", false},
	}
	for _, test := range tests {
		name, ok := parseUse(test.line)
		if name != test.name || ok != test.ok {
			t.Errorf("parseUse(%q) = %q, %v; expected %q, %v", test.line, name, ok, test.name, test.ok)
		}
	}
}

// === Authentication ===

// setupAuthTestServer creates a server with authentication enabled
func setupAuthTestServer(t *testing.T, secret string) (*Server, func()) {
	authConfig := &AuthConfig{
		Enabled:   true,
		JWTSecret: secret,
	}

	server := NewServerWithAuth(setupInstance(t), authConfig)
	if err := server.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	return server, func() {
		server.Stop()
	}
}

// createTestJWT creates a JWT token for testing
func createTestJWT(t *testing.T, secret, name, email string, expiresIn time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name":  name,
		"email": email,
		"exp":   time.Now().Add(expiresIn).Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to create test JWT: %v", err)
	}
	return tokenString
}

func TestAuthRequired(t *testing.T) {
	server, cleanup := setupAuthTestServer(t, "test-secret")
	defer cleanup()

	c := dial(t, server.Addr())
	for _, line := range []string{"USE school", "SELECT id FROM Students;"} {
		resp := c.send(line)
		if resp.Success {
			t.Errorf("Expected %q to fail when not authenticated", line)
		}
		if !strings.Contains(resp.Error, "authentication required") {
			t.Errorf("Expected 'authentication required' error, got: %s", resp.Error)
		}
	}
}

func TestAuthWithValidJWT(t *testing.T) {
	secret := "test-secret"
	server, cleanup := setupAuthTestServer(t, secret)
	defer cleanup()

	c := dial(t, server.Addr())
	resp := c.send("AUTH JWT " + createTestJWT(t, secret, "Test User", "test@example.com", time.Hour))
	if !resp.Success {
		t.Fatalf("Auth failed: %s", resp.Error)
	}
	if resp.Type != "auth" {
		t.Errorf("Expected 'auth' type, got: %s", resp.Type)
	}

	var authResp AuthResponse
	if err := json.Unmarshal(resp.Result, &authResp); err != nil {
		t.Fatalf("Failed to parse auth result: %v", err)
	}
	if !authResp.Authenticated {
		t.Error("Expected authenticated to be true")
	}
	if authResp.Identity != "Test User <test@example.com>" {
		t.Errorf("Expected identity 'Test User <test@example.com>', got: %s", authResp.Identity)
	}
	if authResp.ExpiresIn <= 0 || authResp.ExpiresIn > 3600 {
		t.Errorf("Unexpected expiry %d", authResp.ExpiresIn)
	}

	if resp := c.send("USE school"); !resp.Success {
		t.Fatalf("USE after auth failed: %s", resp.Error)
	}
	decodeQuery(t, c.send("SELECT id FROM Students;"))
}

func TestAuthWithInvalidJWT(t *testing.T) {
	server, cleanup := setupAuthTestServer(t, "test-secret")
	defer cleanup()

	tests := []struct {
		name string
		line string
	}{
		{"wrong secret", "AUTH JWT " + createTestJWT(t, "wrong-secret", "Test User", "test@example.com", time.Hour)},
		{"expired", "AUTH JWT " + createTestJWT(t, "test-secret", "Test User", "test@example.com", -time.Hour)},
		{"missing identity", "AUTH JWT " + createTestJWT(t, "test-secret", "", "", time.Hour)},
		{"malformed", "AUTH JWT not-a-token"},
		{"unsupported type", "AUTH BASIC dXNlcjpwYXNz"},
		{"missing token", "AUTH JWT"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := dial(t, server.Addr())
			resp := c.send(test.line)
			if resp.Success {
				t.Error("Expected auth to fail")
			}
			if resp.Error == "" {
				t.Error("Expected error message")
			}
			if resp := c.send("USE school"); resp.Success {
				t.Error("Expected the connection to stay unauthenticated")
			}
		})
	}
}

func TestValidateJWTClaims(t *testing.T) {
	secret := "claims-secret"
	cfg := &AuthConfig{Enabled: true, JWTSecret: secret, Issuer: "flatdb", Audience: "queries", NameClaim: "preferred_username"}

	sign := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("Failed to sign: %v", err)
		}
		return token
	}

	result := validateJWT(cfg, sign(jwt.MapClaims{"iss": "flatdb", "aud": "queries", "preferred_username": "ada"}))
	if result.err != nil {
		t.Fatalf("Expected a valid token, got %v", result.err)
	}
	if result.identity.Name != "ada" || !result.expiresAt.IsZero() {
		t.Errorf("Unexpected result %+v", result)
	}

	if result := validateJWT(cfg, sign(jwt.MapClaims{"iss": "other", "aud": "queries", "preferred_username": "ada"})); result.err == nil {
		t.Error("Expected a wrong issuer to fail")
	}
	if result := validateJWT(cfg, sign(jwt.MapClaims{"iss": "flatdb", "aud": "other", "preferred_username": "ada"})); result.err == nil {
		t.Error("Expected a wrong audience to fail")
	}
	if result := validateJWT(nil, "x"); result.err == nil {
		t.Error("Expected an error without configuration")
	}
}

func TestParseBearer(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, test := range tests {
		token, ok := parseBearer(test.header)
		if token != test.token || ok != test.ok {
			t.Errorf("parseBearer(%q) = %q, %v; expected %q, %v", test.header, token, ok, test.token, test.ok)
		}
	}
}

// === gRPC ===

func dialGRPC(t *testing.T, server *Server) *grpc.ClientConn {
	t.Helper()

	gs, addr, err := server.ServeGRPC("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ServeGRPC failed: %v", err)
	}
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient(addr.String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	)
	if err != nil {
		t.Fatalf("Failed to dial gRPC: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPCQuery(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	conn := dialGRPC(t, server)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var resp Response
	err := conn.Invoke(ctx, queryMethod, &GRPCQueryRequest{Database: "school", SQL: "SELECT name FROM Students WHERE gpa < 3.5;"}, &resp)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	qr := decodeQuery(t, resp)
	if !reflect.DeepEqual(qr.Data, [][]string{{"Bob"}}) {
		t.Errorf("Unexpected data %v", qr.Data)
	}

	resp = Response{}
	if err := conn.Invoke(ctx, queryMethod, &GRPCQueryRequest{Database: "school", SQL: "SELECT nope FROM Students;"}, &resp); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if resp.Success || resp.ErrorKind != "semantic" {
		t.Errorf("Expected a semantic error, got %+v", resp)
	}

	resp = Response{}
	if err := conn.Invoke(ctx, queryMethod, &GRPCQueryRequest{SQL: "SELECT id FROM Students;"}, &resp); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if resp.Success || !strings.Contains(resp.Error, "no database selected") {
		t.Errorf("Expected no database error, got %+v", resp)
	}
}

func TestGRPCAuth(t *testing.T) {
	secret := "grpc-secret"
	server, cleanup := setupAuthTestServer(t, secret)
	defer cleanup()

	conn := dialGRPC(t, server)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := &GRPCQueryRequest{Database: "school", SQL: "SELECT COUNT(id) FROM Students;"}

	var resp Response
	err := conn.Invoke(ctx, queryMethod, req, &resp)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("Expected Unauthenticated, got %v", err)
	}

	authCtx := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+createTestJWT(t, secret, "Grpc User", "grpc@example.com", time.Hour))
	if err := conn.Invoke(authCtx, queryMethod, req, &resp); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if qr := decodeQuery(t, resp); qr.Data[0][0] != "3" {
		t.Errorf("Unexpected data %v", qr.Data)
	}
}

// === TLS ===

// setupTLSTestServer creates a server with TLS enabled using test certificates
func setupTLSTestServer(t *testing.T) (*Server, string, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	certFile := tmpDir + "/cert.pem"
	keyFile := tmpDir + "/key.pem"
	generateTestCertificate(t, certFile, keyFile)

	server := NewServer(setupInstance(t), testIdentity)
	if err := server.StartTLS("127.0.0.1:0", certFile, keyFile); err != nil {
		t.Fatalf("Failed to start TLS server: %v", err)
	}

	return server, certFile, func() {
		server.Stop()
	}
}

// generateTestCertificate creates a self-signed certificate for testing
func generateTestCertificate(t *testing.T, certFile, keyFile string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate private key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			CommonName: "localhost",
		},
		NotBefore: time.Now(),
		NotAfter:  time.Now().Add(time.Hour),
		KeyUsage:  x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
		},
		IPAddresses: []net.IP{net.ParseIP("127.0.0.1"), net.IPv6loopback},
		DNSNames:    []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}

	certOut, err := os.Create(certFile)
	if err != nil {
		t.Fatalf("Failed to create cert file: %v", err)
	}
	pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	certOut.Close()

	keyOut, err := os.Create(keyFile)
	if err != nil {
		t.Fatalf("Failed to create key file: %v", err)
	}
	pem.Encode(keyOut, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	keyOut.Close()
}

func TestTLSServerConnection(t *testing.T) {
	server, certFile, cleanup := setupTLSTestServer(t)
	defer cleanup()

	if !server.TLSEnabled() {
		t.Error("Expected TLS to be enabled")
	}

	certPool := x509.NewCertPool()
	certData, err := os.ReadFile(certFile)
	if err != nil {
		t.Fatalf("Failed to read cert: %v", err)
	}
	certPool.AppendCertsFromPEM(certData)

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: 2 * time.Second}, "tcp", server.Addr(), &tls.Config{
		RootCAs:    certPool,
		ServerName: "localhost",
	})
	if err != nil {
		t.Fatalf("Failed to connect with TLS: %v", err)
	}
	defer conn.Close()

	c := &client{t: t, conn: conn, reader: bufio.NewReader(conn)}
	if resp := c.send("USE school"); !resp.Success {
		t.Fatalf("USE failed: %s", resp.Error)
	}
	qr := decodeQuery(t, c.send("SELECT MIN(gpa) FROM Students;"))
	if qr.Data[0][0] != "3.1" {
		t.Errorf("Unexpected data %v", qr.Data)
	}
}

func TestTLSServerInvalidCert(t *testing.T) {
	server, _, cleanup := setupTLSTestServer(t)
	defer cleanup()

	// The system roots do not include the self-signed certificate
	_, err := tls.DialWithDialer(&net.Dialer{Timeout: 2 * time.Second}, "tcp", server.Addr(), &tls.Config{
		ServerName: "localhost",
	})
	if err == nil {
		t.Error("Expected TLS connection to fail with invalid certificate")
	}
}
