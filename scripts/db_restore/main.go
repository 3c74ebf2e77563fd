package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/garnizeh/staffboard/internal/config"
)

// Stop the server before restoring; the database file is replaced in place.
func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	in := flag.String("in", "", "Backup file (default <database_path>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	src := *in
	if src == "" {
		src = cfg.DatabasePath + ".bak"
	}
	dst := cfg.DatabasePath

	srcFile, err := os.Open(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	// stale journal files would be replayed over the restored data
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		_ = os.Remove(dst + suffix)
	}

	fmt.Println("Database restore completed.")
}
