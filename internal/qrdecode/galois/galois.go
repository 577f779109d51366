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

// Package galois implements the two finite fields used by QR codes:
// GF(2^8) modulo the primitive polynomial 0x11D (codeword / Reed-Solomon
// arithmetic) and GF(2^4) modulo 0x13 (format-information BCH arithmetic).
// Both fields expose log/exp tables precomputed once at package init, the
// same strategy the encoder direction uses for its Reed-Solomon divisor
// math, just generalized to division as well as multiplication.
package galois

// Elem8 is an element of GF(2^8) built over the primitive polynomial
// 0x11D (x^8 + x^4 + x^3 + x^2 + 1), using generator 0x02.
type Elem8 byte

// Elem4 is an element of GF(2^4) built over the primitive polynomial
// 0x13 (x^4 + x + 1), using generator 0x02.
type Elem4 byte

const (
	poly8 = 0x11D
	poly4 = 0x13
)

var (
	exp8 [510]Elem8 // Doubled so Mul can avoid a modulo on the exponent sum.
	log8 [256]int

	exp4 [30]Elem4
	log4 [16]int
)

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		exp8[i] = Elem8(x)
		log8[x] = i
		x <<= 1
		if x&0x100 != 0 {
			x ^= poly8
		}
	}
	for i := 255; i < 510; i++ {
		exp8[i] = exp8[i-255]
	}

	y := 1
	for i := 0; i < 15; i++ {
		exp4[i] = Elem4(y)
		log4[y] = i
		y <<= 1
		if y&0x10 != 0 {
			y ^= poly4
		}
	}
	for i := 15; i < 30; i++ {
		exp4[i] = exp4[i-15]
	}
}

// Exp8 returns α^n in GF(2^8) for any n ≥ 0 (the table wraps every 255
// entries, so exponents are not pre-reduced by callers).
func Exp8(n int) Elem8 {
	if n < 0 {
		n = n%255 + 255
	}
	return exp8[n%255]
}

// Log8 returns the discrete log of a non-zero element, base α. Log8(0)
// is undefined and panics; callers must guard the zero case themselves,
// matching the teacher's explicit-zero checks in its own RS math.
func Log8(a Elem8) int {
	if a == 0 {
		panic("galois: log of zero element")
	}
	return log8[a]
}

// Add returns a XOR b (GF(2^8) addition and subtraction coincide).
func (a Elem8) Add(b Elem8) Elem8 { return a ^ b }

// Sub returns a XOR b.
func (a Elem8) Sub(b Elem8) Elem8 { return a ^ b }

// Mul returns a*b in GF(2^8).
func (a Elem8) Mul(b Elem8) Elem8 {
	if a == 0 || b == 0 {
		return 0
	}
	return exp8[log8[a]+log8[b]]
}

// Div returns a/b in GF(2^8). Panics if b is zero.
func (a Elem8) Div(b Elem8) Elem8 {
	if b == 0 {
		panic("galois: division by zero")
	}
	if a == 0 {
		return 0
	}
	diff := log8[a] - log8[b]
	if diff < 0 {
		diff += 255
	}
	return exp8[diff]
}

// Pow returns a^n in GF(2^8) for n ≥ 0.
func (a Elem8) Pow(n int) Elem8 {
	if a == 0 {
		if n == 0 {
			return 1
		}
		return 0
	}
	e := (log8[a] * n) % 255
	if e < 0 {
		e += 255
	}
	return exp8[e]
}

// Inv returns the multiplicative inverse of a. Panics if a is zero.
func (a Elem8) Inv() Elem8 {
	if a == 0 {
		panic("galois: inverse of zero element")
	}
	return exp8[255-log8[a]]
}

// Exp4 returns α^n in GF(2^4) for any n ≥ 0.
func Exp4(n int) Elem4 {
	if n < 0 {
		n = n%15 + 15
	}
	return exp4[n%15]
}

// Log4 returns the discrete log of a non-zero element, base α. Log4(0)
// is undefined and panics; callers must guard the zero case themselves.
func Log4(a Elem4) int {
	if a == 0 {
		panic("galois: log of zero element")
	}
	return log4[a]
}

// Add returns a XOR b in GF(2^4).
func (a Elem4) Add(b Elem4) Elem4 { return a ^ b }

// Sub returns a XOR b in GF(2^4).
func (a Elem4) Sub(b Elem4) Elem4 { return a ^ b }

// Mul returns a*b in GF(2^4).
func (a Elem4) Mul(b Elem4) Elem4 {
	if a == 0 || b == 0 {
		return 0
	}
	return exp4[log4[a]+log4[b]]
}

// Div returns a/b in GF(2^4). Panics if b is zero.
func (a Elem4) Div(b Elem4) Elem4 {
	if b == 0 {
		panic("galois: division by zero")
	}
	if a == 0 {
		return 0
	}
	diff := log4[a] - log4[b]
	if diff < 0 {
		diff += 15
	}
	return exp4[diff]
}

// Pow returns a^n in GF(2^4) for n ≥ 0.
func (a Elem4) Pow(n int) Elem4 {
	if a == 0 {
		if n == 0 {
			return 1
		}
		return 0
	}
	e := (log4[a] * n) % 15
	if e < 0 {
		e += 15
	}
	return exp4[e]
}
