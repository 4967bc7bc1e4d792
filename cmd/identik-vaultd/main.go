package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"identik.app/stamp/store/fsstore"
	"identik.app/stamp/store/grpcvault"
	"identik.app/stamp/store/memstore"
)

func main() {
	fs := flag.NewFlagSet("identik-vaultd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7707", "listen address")
	backend := fs.String("backend", "fs", "vault backend: fs or mem")
	dataDir := fs.String("data-dir", "", "record directory (for --backend=fs)")

	_ = fs.Parse(os.Args[1:])

	var vault grpcvault.Backend
	switch *backend {
	case "fs":
		if *dataDir == "" {
			fmt.Fprintln(os.Stderr, "missing --data-dir for fs backend")
			os.Exit(2)
		}
		s, err := fsstore.New(*dataDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		vault = s
	case "mem":
		vault = memstore.New()
	default:
		fmt.Fprintf(os.Stderr, "unknown backend: %s\n", *backend)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcvault.RegisterVaultServer(s, &grpcvault.Server{Backend: vault})

	fmt.Fprintf(os.Stderr, "identik-vaultd listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
