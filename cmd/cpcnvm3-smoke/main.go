// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command cpcnvm3-smoke opens an NVM3 instance against a link daemon,
// writes and reads back one object, and reports object count, then
// closes and deinits again. It is a manual smoke target, not a test.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/siliconlabs/cpc-nvm3"
)

func main() {
	var (
		addr      = flag.String("addr", "", "path to the link daemon's socket, e.g. /tmp/cpcd/cpcd.sock")
		key       = flag.Uint("key", 1, "object key to write and read back")
		logLevel  = flag.Int("log-level", int(cpcnvm3.LogInfo), "log level: 0=off 1=error 2=warn 3=info 4=debug 5=trace")
		logFile   = flag.String("log-file", "", "log file path, empty for stdout")
		enableLog = flag.Bool("traces", false, "enable CPC trace logging")
	)
	flag.Parse()

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "cpcnvm3-smoke: -addr is required")
		os.Exit(2)
	}

	if code := cpcnvm3.InitLogger("cpcnvm3-smoke", cpcnvm3.LogLevel(*logLevel), *logFile, false); code != cpcnvm3.Success {
		fail("init logger", code)
	}

	h, code := cpcnvm3.Init()
	if code != cpcnvm3.Success {
		fail("init", code)
	}
	defer func() {
		if code := cpcnvm3.Deinit(h); code != cpcnvm3.Success {
			fmt.Fprintf(os.Stderr, "cpcnvm3-smoke: deinit: %v\n", code)
		}
	}()

	if code := cpcnvm3.Open(h, *addr, *enableLog); code != cpcnvm3.Success {
		fail("open", code)
	}
	defer func() {
		if code := cpcnvm3.Close(h); code != cpcnvm3.Success {
			fmt.Fprintf(os.Stderr, "cpcnvm3-smoke: close: %v\n", code)
		}
	}()

	payload := []byte("cpcnvm3-smoke")
	if code := cpcnvm3.WriteData(h, uint32(*key), payload); code != cpcnvm3.Success {
		fail("write data", code)
	}
	fmt.Printf("wrote %d bytes to key %d\n", len(payload), *key)

	readBack, code := cpcnvm3.ReadData(h, uint32(*key), uint16(len(payload)))
	if code != cpcnvm3.Success {
		fail("read data", code)
	}
	fmt.Printf("read back: %q\n", readBack)

	count, code := cpcnvm3.GetObjectCount(h)
	if code != cpcnvm3.Success {
		fail("get object count", code)
	}
	fmt.Printf("object count: %d\n", count)
}

func fail(step string, code cpcnvm3.Code) {
	fmt.Fprintf(os.Stderr, "cpcnvm3-smoke: %s: %v\n", step, code)
	os.Exit(1)
}
