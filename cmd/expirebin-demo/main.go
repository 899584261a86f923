package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/expirebin/engine/internal/expirebin"
	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/record"
)

// Walks the bin expiration lifecycle end to end against a local data
// directory: write bins with mixed TTLs, read them back, refresh one,
// wait for the short ones to lapse, then sweep.
func main() {
	dataDir := "./demo-data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	ctx := context.Background()

	store, err := record.Open(dataDir + "/records")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open record store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	registry, err := metastore.NewStore(dataDir + "/meta")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open set registry: %v\n", err)
		os.Exit(1)
	}

	if err := registry.CreateSet(&metastore.SetConfig{
		Namespace:   "demo",
		Set:         "sessions",
		TrackedBins: []string{"short", "long", "forever"},
	}); err != nil {
		if _, ok := err.(metastore.SetExistsError); !ok {
			fmt.Fprintf(os.Stderr, "Failed to register set: %v\n", err)
			os.Exit(1)
		}
	}

	client := expirebin.NewClient(store, expirebin.WithRegistry(registry))
	key := record.NewKey("demo", "sessions", "user-1")

	fmt.Println("Writing bins...")
	result, err := client.Puts(ctx, key,
		expirebin.PutEntry{Bin: "short", Value: []byte("lapses in 2s"), TTL: 2 * time.Second},
		expirebin.PutEntry{Bin: "long", Value: []byte("lapses in 1h"), TTL: time.Hour},
		expirebin.PutEntry{Bin: "forever", Value: []byte("never lapses"), TTL: expirebin.NoExpiry},
		expirebin.PutEntry{Bin: "plain", Value: []byte("not tracked")},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Batch put failed (status %d): %v\n", result.Status, err)
		os.Exit(1)
	}
	for _, entry := range result.Entries {
		fmt.Printf("  wrote %s\n", entry.Bin)
	}

	printBins(ctx, client, key)

	fmt.Println("\nRefreshing 'long' to 2h...")
	if _, err := client.Touch(ctx, key, expirebin.TouchEntry{Bin: "long", TTL: 2 * time.Hour}); err != nil {
		fmt.Fprintf(os.Stderr, "Touch failed: %v\n", err)
		os.Exit(1)
	}
	if remaining, never, err := client.TTL(ctx, key, "long"); err == nil && !never {
		fmt.Printf("  'long' now lapses in %s\n", remaining.Round(time.Minute))
	}

	fmt.Println("\nWaiting 3s for 'short' to lapse...")
	time.Sleep(3 * time.Second)

	printBins(ctx, client, key)

	fmt.Println("\nSweeping expired bins...")
	reaper := expirebin.NewReaper(store, client, registry)
	stats, err := reaper.Sweep(ctx, "demo", "sessions", []string{"short", "long", "forever"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sweep failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  visited %d record(s), removed %d bin(s)\n", stats.RecordsVisited, stats.BinsRemoved)

	fmt.Println("\nDone.")
}

func printBins(ctx context.Context, client *expirebin.Client, key record.Key) {
	names := []string{"short", "long", "forever", "plain"}
	values, err := client.Get(ctx, key, names...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Get failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Current bins:")
	for i, name := range names {
		if values[i] == nil {
			fmt.Printf("  %-8s <absent>\n", name)
		} else {
			fmt.Printf("  %-8s %s\n", name, values[i])
		}
	}
}
