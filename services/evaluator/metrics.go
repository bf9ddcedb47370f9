// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package evaluator

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("hanoibench.evaluator")

var (
	runsTotal        metric.Int64Counter
	movesTotal       metric.Int64Counter
	retriesTotal     metric.Int64Counter
	proposalLatency  metric.Float64Histogram
	runEfficiency    metric.Float64Histogram
	metricsOnce      sync.Once
	metricsInitError error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runsTotal, err = meter.Int64Counter(
			"hanoi_runs_total",
			metric.WithDescription("Completed evaluation runs by outcome and termination"),
		)
		if err != nil {
			metricsInitError = err
			return
		}

		movesTotal, err = meter.Int64Counter(
			"hanoi_moves_total",
			metric.WithDescription("Moves proposed by players, split by validity"),
		)
		if err != nil {
			metricsInitError = err
			return
		}

		retriesTotal, err = meter.Int64Counter(
			"hanoi_proposal_retries_total",
			metric.WithDescription("Player calls retried after an error"),
		)
		if err != nil {
			metricsInitError = err
			return
		}

		proposalLatency, err = meter.Float64Histogram(
			"hanoi_proposal_duration_seconds",
			metric.WithDescription("Time taken by a player to propose one move"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsInitError = err
			return
		}

		runEfficiency, err = meter.Float64Histogram(
			"hanoi_run_efficiency_percent",
			metric.WithDescription("Efficiency of solved runs"),
		)
		if err != nil {
			metricsInitError = err
			return
		}
	})
	return metricsInitError
}

func recordProposal(ctx context.Context, player string, d time.Duration, err error) {
	if initMetrics() != nil {
		return
	}
	proposalLatency.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("player", player),
		attribute.Bool("error", err != nil),
	))
}

func recordRetry(ctx context.Context, player string) {
	if initMetrics() != nil {
		return
	}
	retriesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("player", player)))
}

func recordMove(ctx context.Context, player string, valid bool) {
	if initMetrics() != nil {
		return
	}
	movesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("player", player),
		attribute.Bool("valid", valid),
	))
}

func recordRun(ctx context.Context, res *Result) {
	if initMetrics() != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("player", res.Player),
		attribute.Int("disk_count", res.DiskCount),
		attribute.String("outcome", res.Report.Outcome.String()),
		attribute.String("termination", string(res.Termination)),
	)
	runsTotal.Add(ctx, 1, attrs)
	if res.Report.HasEfficiency {
		runEfficiency.Record(ctx, res.Report.Efficiency, metric.WithAttributes(
			attribute.String("player", res.Player),
			attribute.Int("disk_count", res.DiskCount),
		))
	}
}
