// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cpcnvm3

import "time"

// durationFromSecondsMicros and secondsMicrosFromDuration convert between a
// time.Duration and the (seconds, microseconds) pair the public timeout
// accessors use, matching the granularity of the reference implementation's
// cpc_timeval_t.
func durationFromSecondsMicros(seconds, microseconds int) time.Duration {
	return time.Duration(seconds)*time.Second + time.Duration(microseconds)*time.Microsecond
}

func secondsMicrosFromDuration(d time.Duration) (seconds int, microseconds int) {
	seconds = int(d / time.Second)
	microseconds = int((d % time.Second) / time.Microsecond)
	return seconds, microseconds
}
