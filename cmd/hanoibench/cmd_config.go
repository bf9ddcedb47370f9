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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/hanoibench/cmd/hanoibench/config"
	"github.com/AleutianAI/hanoibench/pkg/ux"
)

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := config.Marshal(app.cfg)
	if err != nil {
		return err
	}
	ux.Muted("# " + app.configPath)
	ux.Raw(string(data))
	ux.KeyValue("api_key_present", yesNo(app.cfg.Model.APIKey() != ""))
	return nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
