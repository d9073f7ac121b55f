// Command gc-bench stress-tests the reference/GC subsystem: it repeatedly
// allocates references, procedures, and variables, and records each run's
// memory profile in a small bbolt history file so growth can be compared
// across commits instead of just eyeballed once.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/feather-lang/feather"
	bolt "go.etcd.io/bbolt"
)

const runsBucket = "runs"

type memStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
}

func getMemStats() memStats {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return memStats{Alloc: m.Alloc, TotalAlloc: m.TotalAlloc, Sys: m.Sys, NumGC: m.NumGC}
}

func (m memStats) String() string {
	return fmt.Sprintf("Alloc: %6d KB, TotalAlloc: %6d KB, Sys: %6d KB, NumGC: %d",
		m.Alloc/1024, m.TotalAlloc/1024, m.Sys/1024, m.NumGC)
}

type runRecord struct {
	Timestamp         time.Time `json:"timestamp"`
	Iterations        int       `json:"iterations"`
	StartAlloc        uint64    `json:"start_alloc"`
	EndAlloc          uint64    `json:"end_alloc"`
	BytesPerIteration float64   `json:"bytes_per_iteration"`
	ReferencesLive    int       `json:"references_live"`
	Pass              bool      `json:"pass"`
}

func main() {
	if err := runBench(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBench() error {
	ip := feather.New()
	defer ip.Close()

	const iterations = 10000
	const reportInterval = 1000
	const maxBytesPerIter = 50.0

	startMem := getMemStats()
	fmt.Println("Start:", startMem)

	script := `
		set x [list a b c d e f g h i j]
		lappend x k l m n o p q r s t
		proc tmp {} { return [expr {1 + 2}] }
		tmp
		rename tmp {}
		set r [ref $x cleanup]
		unset r
	`
	if _, err := ip.Eval(`proc cleanup {token value} { return }`); err != nil {
		return fmt.Errorf("registering finalizer: %w", err)
	}

	for i := 0; i < iterations; i++ {
		if _, err := ip.Eval(script); err != nil {
			return fmt.Errorf("eval error at iteration %d: %w", i, err)
		}
		if i%reportInterval == 0 && i > 0 {
			fmt.Printf("Iteration %5d: %s\n", i, getMemStats())
			if _, err := ip.Eval("collect"); err != nil {
				return fmt.Errorf("collect at iteration %d: %w", i, err)
			}
		}
	}

	if _, err := ip.Eval("collect"); err != nil {
		return fmt.Errorf("final collect: %w", err)
	}
	refsLive, err := ip.Eval("debug refcount")
	if err != nil {
		return err
	}
	liveCount, _ := refsLive.Int()

	endMem := getMemStats()
	fmt.Println("End:  ", endMem)

	allocGrowth := int64(endMem.Alloc) - int64(startMem.Alloc)
	bytesPerIteration := float64(allocGrowth) / float64(iterations)
	fmt.Printf("\nMemory growth: %d KB (%.2f bytes/iteration)\n", allocGrowth/1024, bytesPerIteration)
	fmt.Printf("Live references after final collect: %d\n", liveCount)

	pass := bytesPerIteration <= maxBytesPerIter
	if !pass {
		fmt.Fprintf(os.Stderr, "FAIL: memory leak detected (%.2f bytes/iteration, threshold %.2f)\n", bytesPerIteration, maxBytesPerIter)
	} else {
		fmt.Println("PASS: no memory leak detected")
	}

	record := runRecord{
		Timestamp:         time.Now(),
		Iterations:        iterations,
		StartAlloc:        startMem.Alloc,
		EndAlloc:          endMem.Alloc,
		BytesPerIteration: bytesPerIteration,
		ReferencesLive:    int(liveCount),
		Pass:              pass,
	}
	if err := recordRun(record); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not persist run history: %v\n", err)
	}

	if !pass {
		os.Exit(1)
	}
	return nil
}

// recordRun appends record to the bbolt-backed run-history file, so
// successive gc-bench invocations build a trend line instead of a single
// disconnected data point.
func recordRun(record runRecord) error {
	path := historyPath()
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		if err != nil {
			return err
		}
		key := []byte(record.Timestamp.UTC().Format(time.RFC3339Nano))
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func historyPath() string {
	if p := os.Getenv("GC_BENCH_HISTORY"); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), "feather-gc-bench-history.db")
}
