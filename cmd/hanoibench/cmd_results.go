// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/hanoibench/pkg/ux"
	"github.com/AleutianAI/hanoibench/services/evaluator/results"
)

// runResults lists exported runs, newest first.
func runResults(cmd *cobra.Command, args []string) error {
	dir := resultsDir
	if dir == "" {
		dir = app.cfg.Run.OutputDir
	}
	list, err := results.NewStore(dir).List()
	if err != nil {
		// Corrupt files are reported but do not hide the readable ones.
		ux.Warning(err.Error())
	}
	if len(list) == 0 {
		ux.Info("No results in " + dir)
		return nil
	}

	ux.Title(fmt.Sprintf("%d results in %s", len(list), dir))
	for _, s := range list {
		r := s.Results
		efficiency := "n/a"
		if r.EfficiencyPercent != nil {
			efficiency = fmt.Sprintf("%.1f%%", *r.EfficiencyPercent)
		}
		ux.Raw(fmt.Sprintf("%-20s  %2d disks  %-15s  %-16s  moves %4d/%-4d  efficiency %-6s  %s\n",
			s.Timestamp, r.NumDisks, r.Status, r.Termination, r.TotalMoves, r.OptimalMoves, efficiency, r.Player))
	}
	return nil
}
