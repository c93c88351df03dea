package core

import (
	"encoding/json"
	"io"
)

type resultJSON struct {
	Dest       string `json:"dest"`
	Map        string `json:"map"`
	Target     string `json:"target"`
	Modules    int    `json:"modules"`
	Inputs     int    `json:"inputs"`
	CodeHash   string `json:"code_hash"`
	MapHash    string `json:"map_hash"`
	Warnings   int    `json:"warnings"`
	DurationMS int64  `json:"duration_ms"`
}

// MarshalResult pretty-prints a build result as JSON for pipelines.
func MarshalResult(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultJSON{
		Dest:       res.Dest,
		Map:        res.Map,
		Target:     res.Kind.String(),
		Modules:    res.Modules,
		Inputs:     res.Inputs,
		CodeHash:   res.CodeHash,
		MapHash:    res.MapHash,
		Warnings:   res.Warnings,
		DurationMS: res.Duration.Milliseconds(),
	})
}
