// metaPrep: filtering and co-occurrence analysis of taxonomic abundance tables.
// Copyright (c) 2023 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/metaprep/blob/master/LICENSE.txt>.

// Package filters implements the kingdom filter and the metaprep
// filtering pipeline.
package filters

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/exascience/metaprep/abundance"
	"github.com/exascience/metaprep/cooccur"
	"github.com/exascience/metaprep/taxonomy"
	"github.com/exascience/metaprep/utils"
)

// A Stage receives a table snapshot and returns the next one. Stages
// must not modify their input.
type Stage func(*abundance.Table) (*abundance.Table, error)

// ComposeStages returns a Stage that successively applies the given
// stages. Nil stages are skipped.
func ComposeStages(stages ...Stage) Stage {
	return func(t *abundance.Table) (*abundance.Table, error) {
		for _, stage := range stages {
			if stage == nil {
				continue
			}
			next, err := stage(t)
			if err != nil {
				return nil, err
			}
			t = next
		}
		return t, nil
	}
}

// NameIndexCheck is a Stage that fails with abundance.ErrDuplicateKey
// if taxon names are not unique, and otherwise passes its input on.
func NameIndexCheck(t *abundance.Table) (*abundance.Table, error) {
	if _, err := t.NameIndex(); err != nil {
		return nil, err
	}
	return t, nil
}

// Normalization returns abundance.Normalize as a Stage.
func Normalization() Stage {
	return abundance.Normalize
}

// Prevalence returns abundance.FilterPrevalence as a Stage.
func Prevalence(threshold, minFraction float64) Stage {
	return func(t *abundance.Table) (*abundance.Table, error) {
		return abundance.FilterPrevalence(t, threshold, minFraction)
	}
}

// Options configures Run.
type Options struct {
	Segregation abundance.SegregationOptions

	// Kingdoms retained by the kingdom filter.
	Kingdoms []string

	// Threshold and MinFraction of the prevalence filter.
	Threshold, MinFraction float64

	// DropEmptySamples removes samples with zero total abundance
	// before normalization. Otherwise such samples make Run fail with
	// abundance.ErrDivisionByZero.
	DropEmptySamples bool

	// Pinned is the organism for co-occurrence extraction. If Pinned
	// is empty, no co-occurrence result is computed.
	Pinned string

	// Cutoff is the co-occurrence presence cutoff.
	Cutoff float64
}

// DefaultOptions returns options with the default parameters of every
// stage, and without a pinned organism.
func DefaultOptions() Options {
	return Options{
		Segregation:      abundance.DefaultSegregationOptions,
		Kingdoms:         DefaultKingdoms,
		Threshold:        abundance.DefaultThreshold,
		MinFraction:      abundance.DefaultMinFraction,
		DropEmptySamples: true,
		Cutoff:           cooccur.DefaultCutoff,
	}
}

// A Report holds the outcome of Run, including every intermediate
// table snapshot.
type Report struct {
	RunID uuid.UUID

	// Segregation of the raw input into measurement families.
	Segregation abundance.Segregation

	// Counts is the absolute-count table.
	Counts *abundance.Table

	// Annotated holds the taxa retained by the kingdom filter,
	// annotated with their lineages.
	Annotated *abundance.Table

	// Excluded lists the taxa whose lineage could not be resolved.
	Excluded []Exclusion

	// DroppedSamples lists the samples with zero total abundance after
	// kingdom filtering.
	DroppedSamples []string

	// Normalized is the relative abundance table.
	Normalized *abundance.Table

	// Filtered holds the taxa that pass the prevalence filter, with
	// their kingdom and taxonomy id reattached.
	Filtered *abundance.FilteredTable

	// CoOccurrence is nil unless Options.Pinned is set.
	CoOccurrence *cooccur.Result
}

// Run executes the complete filtering pipeline on a raw Bracken table:
// segregation, kingdom filtering, normalization, prevalence filtering,
// taxonomy reattachment, and optionally co-occurrence extraction.
//
// Schema errors in the input are reported before any stage runs.
func Run(ctx context.Context, raw *abundance.RawTable, resolver *taxonomy.Resolver, options Options, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var err error
	report := &Report{RunID: uuid.New()}
	logger = logger.With(zap.String("run", report.RunID.String()))
	logger.Info("starting run",
		zap.String("program", utils.ProgramName),
		zap.String("version", utils.ProgramVersion),
		zap.String("url", utils.ProgramURL))

	if report.Segregation, err = abundance.Segregate(raw, options.Segregation); err != nil {
		return nil, errors.Wrap(err, "segregating input columns")
	}
	if dropped := report.Segregation.Dropped; len(dropped) > 0 {
		logger.Warn("columns are neither identifiers nor measurements and were dropped",
			zap.Strings("columns", dropped))
	}
	counts, err := report.Segregation.Counts.Table(report.Segregation.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "reading absolute counts")
	}
	report.Counts = counts
	logger.Info("segregated input",
		zap.Int("taxa", counts.Len()),
		zap.Int("samples", counts.NumSamples()))

	kingdom := NewKingdomFilter(resolver, logger, options.Kingdoms...)
	annotated, excluded, err := kingdom.Apply(ctx, counts)
	if err != nil {
		return nil, errors.Wrap(err, "kingdom filter")
	}
	if annotated, err = NameIndexCheck(annotated); err != nil {
		return nil, errors.Wrap(err, "indexing annotated taxa")
	}
	report.Annotated, report.Excluded = annotated, excluded

	input := annotated
	if options.DropEmptySamples {
		var dropped []string
		input, dropped = abundance.DropEmptySamples(annotated)
		if len(dropped) > 0 {
			logger.Warn("samples with zero total abundance were dropped before normalization",
				zap.Strings("samples", dropped))
		}
		report.DroppedSamples = dropped
	}
	if report.Normalized, err = Normalization()(input); err != nil {
		return nil, errors.Wrap(err, "normalization")
	}

	prevalent, err := Prevalence(options.Threshold, options.MinFraction)(report.Normalized)
	if err != nil {
		return nil, errors.Wrap(err, "prevalence filter")
	}
	logger.Info("prevalence filter",
		zap.Float64("threshold", options.Threshold),
		zap.Float64("min_fraction", options.MinFraction),
		zap.Int("min_samples", abundance.MinSamples(report.Normalized.NumSamples(), options.MinFraction)),
		zap.Int("retained", prevalent.Len()))

	if report.Filtered, err = abundance.Reattach(prevalent, annotated); err != nil {
		return nil, errors.Wrap(err, "reattaching taxonomy")
	}

	if options.Pinned != "" {
		if report.CoOccurrence, err = cooccur.Extract(report.Filtered.Table, options.Pinned, options.Cutoff); err != nil {
			return nil, errors.Wrapf(err, "co-occurrence of %q", options.Pinned)
		}
		logger.Info("co-occurrence",
			zap.String("pinned", options.Pinned),
			zap.Int("samples", len(report.CoOccurrence.Samples())),
			zap.Int("pairs", len(report.CoOccurrence.Pairs())))
	}
	return report, nil
}
