// This file is part of chipvm.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command chipvmctl assembles and runs a chipvm program from the
// command line, feeding channel input from stdin and backing memory
// with an in-process map.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/circuitware/chipvm/asm"
	"github.com/circuitware/chipvm/vm"
)

// memoryHost is the vm.Observer that backs a running Processor when
// driven from the command line: memory is a plain map keyed by address,
// output channel writes are printed to stdout, and debug traces go to
// stderr.
type memoryHost struct {
	mem map[uint32]string
	out *bufio.Writer
}

func newMemoryHost(out *bufio.Writer) *memoryHost {
	return &memoryHost{mem: make(map[uint32]string), out: out}
}

func (h *memoryHost) MemoryRead(addr uint32) {
	// Nothing to do here: the pending request is resolved by the run
	// loop after Cycle returns, since a Processor must not be poked
	// again from inside its own Observer callback.
}

func (h *memoryHost) MemoryWrite(addr uint32, value string) {
	if addr == vm.DebugAddress {
		fmt.Fprintln(os.Stderr, value)
		return
	}
	h.mem[addr] = value
}

func (h *memoryHost) ChannelWrite(index int, value string) {
	fmt.Fprintf(h.out, "ou%d: %s\n", index, value)
	h.out.Flush()
}

func atExit(p *vm.Processor, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "chipvmctl: %+v\n", err)
	if p != nil {
		fmt.Fprintf(os.Stderr, "ip: %d  state: %v\n", p.IP, p.State())
	}
	os.Exit(1)
}

func main() {
	var (
		asmFile    = flag.String("asm", "", "assembly source `file` to load")
		multiplier = flag.Int("multiplier", vm.DefaultMultiplier, "sub-steps executed per Cycle, 1-16")
		step       = flag.Bool("step", false, "single-step: run one instruction, then stop")
		verbose    = flag.Bool("verbose", false, "trace every executed instruction")
		noRaw      = flag.Bool("noraw", false, "disable raw terminal IO for interactive channel input")
		dump       = flag.Bool("dump", false, "dump register/flag state on exit")
	)
	flag.Parse()

	var err error
	var p *vm.Processor
	defer func() { atExit(p, err) }()

	if *asmFile == "" {
		err = errors.New("chipvmctl: -asm is required")
		return
	}
	src, err := os.ReadFile(*asmFile)
	if err != nil {
		err = errors.Wrapf(err, "reading %s", *asmFile)
		return
	}
	prog, cerr := asm.Compile(string(src))
	if cerr != nil {
		err = errors.Wrap(cerr, "assembling "+*asmFile)
		return
	}

	stdout := bufio.NewWriter(os.Stdout)
	host := newMemoryHost(stdout)
	defer stdout.Flush()

	mode := vm.DebugNone
	switch {
	case *step:
		mode = vm.DebugStepByStep
	case *verbose:
		mode = vm.DebugVerbose
	}

	p, err = vm.New(prog,
		vm.WithMultiplier(*multiplier),
		vm.WithDebugMode(mode),
		vm.WithObserver(host),
	)
	if err != nil {
		return
	}

	var teardown func()
	if !*noRaw {
		teardown, _ = setRawIO()
	}
	if teardown != nil {
		defer teardown()
	}

	lines := make(chan string, 16)
	go feedChannelInput(os.Stdin, lines)

	for p.State() == vm.Working {
		p.Cycle()

		if p.Pending.Awaiting {
			p.Memory(host.mem[p.Pending.Address])
		}

		select {
		case line, ok := <-lines:
			if ok {
				deliverChannelLine(p, line)
			}
		default:
		}
	}

	if *dump {
		if derr := dumpState(p, os.Stdout); derr != nil {
			err = derr
			return
		}
	}
}

// feedChannelInput reads "index:value" lines from r and forwards them,
// closing lines when r is exhausted.
func feedChannelInput(r io.Reader, lines chan<- string) {
	defer close(lines)
	scan := bufio.NewScanner(r)
	for scan.Scan() {
		lines <- scan.Text()
	}
}

// deliverChannelLine parses one "index:value" line and delivers it to
// the matching input channel, ignoring malformed lines.
func deliverChannelLine(p *vm.Processor, line string) {
	idx, val, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return
	}
	p.Channel(n, val)
}
