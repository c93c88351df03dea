// Package core provides a small, stable facade over auditpack's internal
// pipeline for programs that build bundles without going through the CLI.
//
// Example:
//
//	res, err := core.BuildWithOptions(ctx, core.Options{
//		Entry:  "core/index.js",
//		Dest:   "dist/cli.js",
//		Commit: "3f2a9c1",
//	})
//	if err != nil { /* handle */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core
