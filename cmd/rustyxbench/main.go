// Command rustyxbench measures extraction-plus-query throughput against a
// gzipped feed of <item> elements, adapted from wilkmaciej-xml-streamer's
// perf_test/main.go (same iteration/profiling structure) onto this
// module's streaming extractor and XPath engine instead of that teacher's
// gosax-backed channel parser.
package main

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/mkowalczyk/rustyx"
)

const numIterations = 5

var queries = []string{"g:OfferID", "g:ProductName", "g:ProductPrice", "g:CategoryID"}

func main() {
	log.Println("Starting XML Processor Test")

	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		log.Fatalf("Failed to get source file path")
	}
	baseDir := filepath.Dir(filename)

	log.Println("Warmup run...")
	runIteration(baseDir)
	runtime.GC()

	cpuProfileFile, err := os.Create(filepath.Join(baseDir, "cpu.profile"))
	if err != nil {
		log.Fatalf("Failed to create CPU profile: %v", err)
	}
	defer func() { _ = cpuProfileFile.Close() }()
	_ = pprof.StartCPUProfile(cpuProfileFile)
	defer pprof.StopCPUProfile()

	durations := make([]time.Duration, numIterations)
	var totalCount int

	for i := 0; i < numIterations; i++ {
		runtime.GC()
		elapsed, count := runIteration(baseDir)
		durations[i] = elapsed
		totalCount = count
		log.Printf("Run %d: %s (%.2f items/sec)", i+1, elapsed, float64(count)/elapsed.Seconds())
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}
	avg := total / time.Duration(numIterations)
	median := durations[numIterations/2]
	min := durations[0]
	max := durations[numIterations-1]

	memProfileFile, err := os.Create(filepath.Join(baseDir, "mem.profile"))
	if err != nil {
		log.Fatalf("Failed to create memory profile: %v", err)
	}
	runtime.GC()
	_ = pprof.WriteHeapProfile(memProfileFile)
	_ = memProfileFile.Close()

	fmt.Println("\n=== Results ===")
	fmt.Printf("Items processed: %d\n", totalCount)
	fmt.Printf("Iterations: %d\n", numIterations)
	fmt.Printf("Min:    %s (%.2f items/sec)\n", min, float64(totalCount)/min.Seconds())
	fmt.Printf("Max:    %s (%.2f items/sec)\n", max, float64(totalCount)/max.Seconds())
	fmt.Printf("Avg:    %s (%.2f items/sec)\n", avg, float64(totalCount)/avg.Seconds())
	fmt.Printf("Median: %s (%.2f items/sec)\n", median, float64(totalCount)/median.Seconds())
	log.Println("XML Processor Test Completed")
}

func runIteration(baseDir string) (time.Duration, int) {
	testFile, err := os.Open(filepath.Join(baseDir, "test.xml.gz"))
	if err != nil {
		log.Fatalf("Failed to open test.xml.gz: %v", err)
	}
	defer func() { _ = testFile.Close() }()

	gz, err := gzip.NewReader(testFile)
	if err != nil {
		log.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer func() { _ = gz.Close() }()

	in := bufio.NewReaderSize(gz, 64*1024*1024)
	extractor := rustyx.NewStreamExtractor("item")

	start := time.Now()
	count := 0
	chunk := make([]byte, 1<<20)

	for {
		n, err := in.Read(chunk)
		if n > 0 {
			extractor.Feed(chunk[:n])
			count += processAvailable(extractor)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read test.xml.gz: %v", err)
		}
	}
	extractor.Finalize()
	count += processAvailable(extractor)

	return time.Since(start), count
}

func processAvailable(extractor interface {
	AvailableElements() int
	TakeElements(int) [][]byte
}) int {
	elems := extractor.TakeElements(extractor.AvailableElements())
	for _, raw := range elems {
		doc, err := rustyx.Parse(raw)
		if err != nil {
			continue
		}
		root, ok := doc.Root()
		if !ok {
			continue
		}
		for _, q := range queries {
			_, _ = doc.QueryFrom(root, q)
		}
	}
	return len(elems)
}
