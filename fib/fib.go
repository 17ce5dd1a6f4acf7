// Package fib computes terms of the Fibonacci sequence.
//
// The package uses the conventional zero-based indexing: F(0)=0, F(1)=1,
// F(k)=F(k-1)+F(k-2), so Compute(10) is 55. The built-in guest program in
// package guest implements the same sequence with a 1,1 seed and agrees with
// Compute at every index it can represent.
package fib

import "errors"

// ErrNegativeIndex is returned for indexes below zero.
var ErrNegativeIndex = errors.New("fib: negative index")

// Compute returns the n-th Fibonacci number.
//
// The arithmetic is int32 and wraps with Go's native two's-complement
// semantics once the true value exceeds the representable range (first at
// n=47); no overflow checking is performed.
func Compute(n int) (int32, error) {
	if n < 0 {
		return 0, ErrNegativeIndex
	}
	if n == 0 {
		return 0, nil
	}
	var prev, cur int32 = 0, 1
	for k := 2; k <= n; k++ {
		prev, cur = cur, cur+prev
	}
	return cur, nil
}
