/*
 * Copyright © 2020, G.Ralph Kuntz, MD.
 *
 * Licensed under the Apache License, Version 2.0(the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIC
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package workpool provides a small bounded-concurrency map helper used
// by embarrassingly parallel work (the Detector's row scan; symbols are
// decoded one after another) that must still produce results in a
// stable, input order regardless of how many goroutines actually ran.
package workpool

import "sync"

// Map applies fn to every item, using at most workers goroutines at
// once, and returns results in the same order as items. workers <= 1
// runs sequentially in the calling goroutine.
func Map[T any, R any](items []T, workers int, fn func(T) R) []R {
	out := make([]R, len(items))
	if workers <= 1 || len(items) <= 1 {
		for i, item := range items {
			out[i] = fn(item)
		}
		return out
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = fn(item)
		}(i, item)
	}
	wg.Wait()
	return out
}
