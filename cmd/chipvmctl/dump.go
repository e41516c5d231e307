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

package main

import (
	"fmt"
	"io"

	"github.com/circuitware/chipvm/internal/chio"
	"github.com/circuitware/chipvm/vm"
)

// dumpState writes the register file, flags and latch contents of p to w,
// for post-mortem inspection when -dump is set.
func dumpState(p *vm.Processor, w io.Writer) error {
	ew := chio.NewErrWriter(w)
	fmt.Fprintf(ew, "ip: %d  state: %v  load: %v\n", p.IP, p.State(), p.LastLoad())
	fmt.Fprintf(ew, "flags: OF=%v SF=%v ZF=%v CF=%v\n",
		p.Flags.OF, p.Flags.SF, p.Flags.ZF, p.Flags.CF)
	for i := 0; i < vm.RegCount; i++ {
		fmt.Fprintf(ew, "ir%d=%d fr%d=%g sr%d=%q\n",
			i, p.Registers.IR[i], i, p.Registers.FR[i], i, p.Registers.SR[i])
	}
	for i := 0; i < vm.ChannelCount; i++ {
		fmt.Fprintf(ew, "in%d.set=%v ou%d.set=%v\n", i, p.In[i].Set, i, p.Out[i].Set)
	}
	return ew.Err
}
