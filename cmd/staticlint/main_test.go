package main

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"
)

func TestWeakRandAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), WeakRandAnalyzer, "weakrand", "strongrand")
}

func TestAnalyzersUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, a := range analyzers() {
		if seen[a.Name] {
			t.Errorf("analyzer %s registered twice", a.Name)
		}
		seen[a.Name] = true
	}

	for _, name := range []string{"weakrandlint", "SA1000", "ST1005", "QF1001"} {
		if !seen[name] {
			t.Errorf("analyzer %s missing", name)
		}
	}
}
