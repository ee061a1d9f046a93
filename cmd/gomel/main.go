package main

import (
	"bufio"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aleph-committee/aleph-poset/pkg/config"
	"github.com/aleph-committee/aleph-poset/pkg/gomel"
	"github.com/aleph-committee/aleph-poset/pkg/logging"
	"github.com/aleph-committee/aleph-poset/pkg/process"
)

func getMember(filename string) (*config.Member, error) {
	if filename == "" {
		return nil, errors.New("please provide a file with private keys and pid")
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return config.LoadMember(file)
}

func getCommittee(filename string) (*config.Committee, error) {
	if filename == "" {
		return nil, errors.New("please provide a file with keys and addresses of the committee")
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return config.LoadCommittee(file)
}

func getParams(filename string) (config.Params, error) {
	if filename == "" {
		return config.Default(), nil
	}
	file, err := os.Open(filename)
	if err != nil {
		return config.Params{}, err
	}
	defer file.Close()
	return config.LoadParams(file)
}

// randomDataSource produces n random bytes of payload for every created unit.
type randomDataSource struct {
	n int
}

func (r randomDataSource) Data() []byte {
	data := make([]byte, r.n)
	rand.Read(data)
	return data
}

// stdinDataSource attaches one line of stdin, read lazily, to every created unit. Once stdin
// is exhausted it keeps returning nil.
type stdinDataSource struct {
	scanner *bufio.Scanner
}

func newStdinDataSource() *stdinDataSource {
	return &stdinDataSource{scanner: bufio.NewScanner(os.Stdin)}
}

func (s *stdinDataSource) Data() []byte {
	if !s.scanner.Scan() {
		return nil
	}
	return append([]byte(nil), s.scanner.Bytes()...)
}

type cliOptions struct {
	privFilename      string
	keysAddrsFilename string
	paramsFilename    string
	logPath           string
	cpuProfFilename   string
	memProfFilename   string
	traceFilename     string
	data              int
	mutexFraction     int
	blockFraction     int
	delay             int64
}

func getOptions() cliOptions {
	var result cliOptions
	flag.StringVar(&result.privFilename, "priv", "", "a file with private keys and process id")
	flag.StringVar(&result.keysAddrsFilename, "keys_addrs", "", "a file with keys and associated addresses")
	flag.StringVar(&result.paramsFilename, "params", "", "a JSON file with adjustable protocol parameters, defaults used if empty")
	flag.StringVar(&result.logPath, "log", "stdout", "where to write logs (\"stdout\", \"stderr\" or a file path)")
	flag.IntVar(&result.data, "data", 0, "size [bytes] of random data to put in every unit (-1 to read one line of data per unit from stdin)")
	flag.StringVar(&result.cpuProfFilename, "cpuprof", "", "the name of the file with cpu-profile results")
	flag.StringVar(&result.memProfFilename, "memprof", "", "the name of the file with mem-profile results")
	flag.StringVar(&result.traceFilename, "trace", "", "the name of the file with trace-profile results")
	flag.IntVar(&result.mutexFraction, "mf", 0, "the sampling fraction of mutex contention events")
	flag.IntVar(&result.blockFraction, "bf", 0, "the sampling fraction of goroutine blocking events")
	flag.Int64Var(&result.delay, "delay", 0, "number of seconds to wait before running the protocol")
	flag.Parse()
	return result
}

func main() {
	options := getOptions()

	if options.delay != 0 {
		time.Sleep(time.Duration(options.delay) * time.Second)
	}

	if options.cpuProfFilename != "" {
		f, err := os.Create(options.cpuProfFilename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Creating cpu-profile file %q failed because: %s.\n", options.cpuProfFilename, err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Cpu-profile failed to start because: %s\n", err)
		}
		defer pprof.StopCPUProfile()
		runtime.SetMutexProfileFraction(options.mutexFraction)
		runtime.SetBlockProfileRate(options.blockFraction)
	}
	if options.traceFilename != "" {
		f, err := os.Create(options.traceFilename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Creating trace-profile file %q failed because: %s.\n", options.traceFilename, err)
		}
		defer f.Close()
		trace.Start(f)
		defer trace.Stop()
	}

	member, err := getMember(options.privFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid private key file %q, because: %s.\n", options.privFilename, err)
		return
	}
	committee, err := getCommittee(options.keysAddrsFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid key file %q, because: %s.\n", options.keysAddrsFilename, err)
		return
	}
	params, err := getParams(options.paramsFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid params file %q, because: %s.\n", options.paramsFilename, err)
		return
	}

	if err := logging.InitLogger(logging.FromParams(params, options.logPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger because: %s.\n", err)
		return
	}

	conf := config.Generate(params, member, committee)
	if err := config.Valid(conf); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration because: %s.\n", err)
		return
	}

	var ds process.DataSource
	if options.data == -1 {
		ds = newStdinDataSource()
	} else {
		ds = randomDataSource{n: options.data}
	}

	preblocks := make(chan []gomel.Unit)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range preblocks {
			// rounds of linearly ordered units are handed off here; this binary just
			// drains them so the extender never blocks.
		}
	}()

	proc, err := process.NewProcess(conf, ds, preblocks, log.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Process failed to initialize because: %s.\n", err)
		return
	}

	mem := logging.NewMemoryLogger(params.LogMemInterval, log.Logger)

	fmt.Fprintln(os.Stdout, "Starting process...")
	if err := proc.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Process failed to start because: %s.\n", err)
		return
	}
	mem.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	proc.Stop()
	mem.Stop()
	close(preblocks)
	<-done

	if options.memProfFilename != "" {
		f, err := os.Create(options.memProfFilename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Creating mem-profile file %q failed because: %s.\n", options.memProfFilename, err)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Mem-profile failed to start because: %s\n", err)
		}
	}

	time.Sleep(time.Second)
	fmt.Fprintln(os.Stdout, "All done!")
}
