// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package waitstrategy provides the busy-wait contract used by
// [code.hybscloud.com/ringq]'s blocking queue to idle a producer or
// consumer between failed attempts.
//
// A Strategy is two infallible, zero-argument operations:
//
//	Reset() — called once before entering a blocking loop
//	Tick()  — called once per failed retry
//
// Concrete strategies escalate from cheap-and-noisy (Spin) to
// expensive-and-quiet (Sleep). Pick one directly, or use [Default] for
// a reasonable out-of-the-box choice.
package waitstrategy
