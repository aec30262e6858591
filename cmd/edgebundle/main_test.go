package main

import (
	"errors"
	"fmt"
	"testing"

	apperr "github.com/matzehuels/edgebundle/pkg/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.ErrCodeInvalidConfig, "iterations < 0"), exitUsage},
		{fmt.Errorf("bundle: %w", apperr.New(apperr.ErrCodeInvalidCurveType, "spline")), exitUsage},
		{apperr.New(apperr.ErrCodeFileNotFound, "graph.json"), exitNotFound},
		{apperr.New(apperr.ErrCodeUnsupported, "rsvg-convert missing"), exitError},
		{errors.New("boom"), exitError},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
