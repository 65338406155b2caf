// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{name: "zero", input: 0.0, want: 0},
		{name: "max positive", input: 1.0, want: math.MaxInt16},
		{name: "max negative", input: -1.0, want: math.MinInt16},
		{name: "half positive", input: 0.5, want: 16383},
		{name: "half negative", input: -0.5, want: -16384},
		{name: "small positive", input: 0.001, want: 32},
		{name: "small negative", input: -0.001, want: -32},
		{name: "clamp over max", input: 1.5, want: math.MaxInt16},
		{name: "clamp over min", input: -1.5, want: math.MinInt16},
		{name: "clamp way over max", input: 100.0, want: math.MaxInt16},
		{name: "clamp way under min", input: -100.0, want: math.MinInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Float32ToInt16(tt.input)
			if got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestIntToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    int
		bitDepth int
		want     int16
	}{
		{"16-bit passthrough", 1234, 16, 1234},
		{"16-bit min", math.MinInt16, 16, math.MinInt16},
		{"8-bit max", 127, 8, 127 << 8},
		{"8-bit min", -128, 8, math.MinInt16},
		{"24-bit max", 8388607, 24, math.MaxInt16},
		{"24-bit min", -8388608, 24, math.MinInt16},
		{"24-bit small", 256, 24, 1},
		{"32-bit max", math.MaxInt32, 32, math.MaxInt16},
		{"unknown depth clamps", 40000, 0, math.MaxInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := IntToInt16(tt.input, tt.bitDepth)
			if got != tt.want {
				t.Errorf("IntToInt16(%d, %d) = %d, want %d", tt.input, tt.bitDepth, got, tt.want)
			}
		})
	}
}

func BenchmarkFloat32ToInt16(b *testing.B) {
	for b.Loop() {
		_ = Float32ToInt16(0.5)
	}
}

func BenchmarkIntToInt16(b *testing.B) {
	for b.Loop() {
		_ = IntToInt16(8388607, 24)
	}
}
