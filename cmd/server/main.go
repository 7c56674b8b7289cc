package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nickyhof/FlatDB"
	"github.com/nickyhof/FlatDB/core"
	"github.com/nickyhof/FlatDB/ps"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	port := flag.Int("port", 3306, "TCP port to listen on")
	grpcAddr := flag.String("grpc", "", "gRPC listen address (empty to disable)")
	baseDir := flag.String("baseDir", "", "Catalog directory (plain or git repository)")
	gitUrl := flag.String("gitUrl", "", "Git URL to clone the catalog from")
	remote := flag.String("remote", "", "Remote catalog URL (http(s):// or s3://bucket/prefix)")
	s3Endpoint := flag.String("s3Endpoint", "", "S3-compatible endpoint for s3:// catalogs")
	s3Region := flag.String("s3Region", "", "AWS region for s3:// catalogs")
	gitToken := flag.String("gitToken", "", "Access token for pulling the catalog's origin")
	database := flag.String("database", "", "Database new connections start with")
	reload := flag.String("reload", "", "Cron schedule for reloading the catalog (e.g. \"@every 5m\")")
	tlsCert := flag.String("tlsCert", "", "TLS certificate file")
	tlsKey := flag.String("tlsKey", "", "TLS key file")
	jwtSecret := flag.String("jwtSecret", "", "HMAC secret; enables AUTH JWT when set")
	jwtIssuer := flag.String("jwtIssuer", "", "Expected JWT issuer")
	jwtAudience := flag.String("jwtAudience", "", "Expected JWT audience")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("FlatDB Query Server v%s\n", Version)
		return
	}

	var instance *FlatDB.Instance
	var err error
	switch {
	case *remote != "":
		log.Printf("Using remote catalog: %s", *remote)
		instance, err = FlatDB.OpenPath(context.Background(), *remote, nil, &ps.S3Config{Endpoint: *s3Endpoint, Region: *s3Region})
	case *baseDir != "":
		log.Printf("Using catalog: %s", *baseDir)
		var gitUrlPtr *string
		if *gitUrl != "" {
			gitUrlPtr = gitUrl
		}
		instance, err = FlatDB.OpenPath(context.Background(), *baseDir, gitUrlPtr, nil)
	default:
		log.Println("Using memory persistence")
		var persistence *ps.Persistence
		persistence, err = ps.NewMemoryPersistence()
		instance = FlatDB.Open(persistence)
	}
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}

	var server *Server
	if *jwtSecret != "" {
		server = NewServerWithAuth(instance, &AuthConfig{
			Enabled:   true,
			JWTSecret: *jwtSecret,
			Issuer:    *jwtIssuer,
			Audience:  *jwtAudience,
		})
	} else {
		server = NewServer(instance, core.Identity{
			Name:  "FlatDB Server",
			Email: "server@flatdb.local",
		})
	}

	if *gitToken != "" {
		server.SetPullAuth(&ps.RemoteAuth{Type: ps.AuthTypeToken, Token: *gitToken})
	}

	if *database != "" {
		if err := server.SetDefaultDatabase(*database); err != nil {
			log.Fatalf("Failed to open database %s: %v", *database, err)
		}
	}

	addr := fmt.Sprintf(":%d", *port)
	if *tlsCert != "" && *tlsKey != "" {
		err = server.StartTLS(addr, *tlsCert, *tlsKey)
	} else {
		err = server.Start(addr)
	}
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	if *reload != "" {
		if err := server.StartReload(*reload); err != nil {
			log.Fatalf("Failed to schedule reload: %v", err)
		}
	}

	if *grpcAddr != "" {
		gs, _, err := server.ServeGRPC(*grpcAddr)
		if err != nil {
			log.Fatalf("Failed to start gRPC: %v", err)
		}
		defer gs.GracefulStop()
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Printf("║   FlatDB Query Server v%-14s  ║\n", Version)
	fmt.Println("║   Flat-file SQL Query Engine          ║")
	fmt.Println("╚═══════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Listening on port %d\n", *port)
	fmt.Println("Send USE <database>, then one query per line; 'quit' to disconnect")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	server.Stop()
	log.Println("Server stopped")
}
