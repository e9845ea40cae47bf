// Package collection provides generic helpers for slices, in the spirit of
// Laravel's Collection API.
//
//	women := collection.Filter(products, func(p models.Product) bool { return p.HasTag("Women") })
//	prices := collection.Map(products, func(p models.Product) int { return p.Price })
package collection

import "slices"

// Number is any type Sum can add.
type Number interface {
	~int | ~int32 | ~int64 | ~float64
}

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Filter returns the elements of s for which fn is true, in order. The
// result is never nil so it encodes as [] rather than null.
func Filter[T any](s []T, fn func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if fn(v) {
			out = append(out, v)
		}
	}
	return out
}

// Reject is the inverse of Filter.
func Reject[T any](s []T, fn func(T) bool) []T {
	return Filter(s, func(v T) bool { return !fn(v) })
}

// First returns the first element matching fn.
func First[T any](s []T, fn func(T) bool) (T, bool) {
	for _, v := range s {
		if fn(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Contains reports whether any element satisfies fn.
func Contains[T any](s []T, fn func(T) bool) bool {
	_, ok := First(s, fn)
	return ok
}

// Unique drops repeated elements, keeping first occurrences in order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Flatten concatenates a slice of slices.
func Flatten[T any](s [][]T) []T {
	var out []T
	for _, inner := range s {
		out = append(out, inner...)
	}
	return out
}

// SortBy returns a sorted copy of s. The sort is stable: elements that
// compare equal keep their original order.
func SortBy[T any](s []T, cmp func(a, b T) int) []T {
	out := slices.Clone(s)
	slices.SortStableFunc(out, cmp)
	return out
}

// Reduce folds s into a single value.
func Reduce[T, R any](s []T, initial R, fn func(carry R, item T) R) R {
	carry := initial
	for _, v := range s {
		carry = fn(carry, v)
	}
	return carry
}

// Sum adds the values extracted by fn.
func Sum[T any, N Number](s []T, fn func(T) N) N {
	var zero N
	return Reduce(s, zero, func(acc N, v T) N { return acc + fn(v) })
}
