package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// renderer is one command's result, able to print itself as plain text.
// JSON rendering falls out of the struct tags.
type renderer interface {
	renderText(w io.Writer)
}

func (a *App) render(appConfig *Config, r renderer) error {
	if appConfig.Output == "json" {
		enc := json.NewEncoder(a.outW)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	r.renderText(a.outW)
	return nil
}

type validateResult struct {
	Valid         bool `json:"valid"`
	Tasks         int  `json:"tasks"`
	BlockingEdges int  `json:"blocking_edges"`
}

func (r *validateResult) renderText(w io.Writer) {
	fmt.Fprintf(w, "plan is valid: %d tasks, %d blocking edges\n", r.Tasks, r.BlockingEdges)
}

type orderResult struct {
	MutationID uint64   `json:"mutation_id"`
	Order      []string `json:"order"`
}

func (r *orderResult) renderText(w io.Writer) {
	for _, key := range r.Order {
		fmt.Fprintln(w, key)
	}
}

type batchesResult struct {
	MaxParallel int        `json:"max_parallel"`
	Batches     [][]string `json:"batches"`
}

func (r *batchesResult) renderText(w io.Writer) {
	for i, batch := range r.Batches {
		fmt.Fprintf(w, "batch %d: %s\n", i+1, strings.Join(batch, ", "))
	}
}

type taskDepth struct {
	Key   string  `json:"key"`
	Depth float64 `json:"depth"`
}

type criticalPathResult struct {
	Length float64     `json:"length"`
	Depths []taskDepth `json:"depths"`
}

func (r *criticalPathResult) renderText(w io.Writer) {
	for _, d := range r.Depths {
		fmt.Fprintf(w, "%s\t%g\n", d.Key, d.Depth)
	}
	fmt.Fprintf(w, "critical path length: %g\n", r.Length)
}

type readyResult struct {
	Ready []string `json:"ready"`
}

func (r *readyResult) renderText(w io.Writer) {
	for _, key := range r.Ready {
		fmt.Fprintln(w, key)
	}
}

type blockersResult struct {
	Key      string   `json:"key"`
	Blockers []string `json:"blockers"`
}

func (r *blockersResult) renderText(w io.Writer) {
	for _, key := range r.Blockers {
		fmt.Fprintln(w, key)
	}
}
