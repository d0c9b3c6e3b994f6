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

// Package config loads metaprep pipeline settings from TOML files.
//
// A configuration file looks like this:
//
//	[segregation]
//	identifiers = ["taxonomy_id", "taxonomy_lvl", "name"]
//	id_column = "taxonomy_id"
//	name_column = "name"
//	rank_column = "taxonomy_lvl"
//	count_suffix = "num"
//	fraction_suffix = "frac"
//
//	[kingdom]
//	retain = ["Bacteria"]
//
//	[prevalence]
//	threshold = 0.01
//	min_fraction = 0.05
//	drop_empty_samples = true
//
//	[cooccurrence]
//	pinned = "Enterobacter bugandensis"
//	cutoff = 0.01
//
//	[taxonomy]
//	database = "/home/user/.etetoolkit/taxa.sqlite"
//	cache_size = 16384
//	workers = 0
//
// Settings that are absent keep their value from Default.
package config

import (
	"io"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/exascience/metaprep/abundance"
	"github.com/exascience/metaprep/cooccur"
	"github.com/exascience/metaprep/filters"
	"github.com/exascience/metaprep/taxonomy"
)

// ErrInvalid reports a configuration that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Segregation configures the split into measurement families.
type Segregation struct {
	Identifiers    []string `toml:"identifiers"`
	IDColumn       string   `toml:"id_column"`
	NameColumn     string   `toml:"name_column"`
	RankColumn     string   `toml:"rank_column"`
	CountSuffix    string   `toml:"count_suffix"`
	FractionSuffix string   `toml:"fraction_suffix"`
}

// Kingdom configures the kingdom filter.
type Kingdom struct {
	Retain []string `toml:"retain"`
}

// Prevalence configures normalization and the prevalence filter.
type Prevalence struct {
	Threshold        float64 `toml:"threshold"`
	MinFraction      float64 `toml:"min_fraction"`
	DropEmptySamples bool    `toml:"drop_empty_samples"`
}

// CoOccurrence configures co-occurrence extraction. An empty Pinned
// name disables it.
type CoOccurrence struct {
	Pinned string  `toml:"pinned"`
	Cutoff float64 `toml:"cutoff"`
}

// Taxonomy configures access to the taxonomy database.
type Taxonomy struct {
	Database  string `toml:"database"`
	CacheSize int    `toml:"cache_size"`
	Workers   int    `toml:"workers"`
}

// Config holds all pipeline settings.
type Config struct {
	Segregation  Segregation  `toml:"segregation"`
	Kingdom      Kingdom      `toml:"kingdom"`
	Prevalence   Prevalence   `toml:"prevalence"`
	CoOccurrence CoOccurrence `toml:"cooccurrence"`
	Taxonomy     Taxonomy     `toml:"taxonomy"`
}

// Default returns the settings used for the ISS analysis: Bracken
// column layout, Bacteria only, threshold 0.01 in at least 5% of the
// samples, and a presence cutoff of 0.01.
func Default() Config {
	options := abundance.DefaultSegregationOptions
	return Config{
		Segregation: Segregation{
			Identifiers:    append([]string(nil), options.Identifiers...),
			IDColumn:       options.IDColumn,
			NameColumn:     options.NameColumn,
			RankColumn:     options.RankColumn,
			CountSuffix:    options.CountSuffix,
			FractionSuffix: options.FractionSuffix,
		},
		Kingdom: Kingdom{Retain: append([]string(nil), filters.DefaultKingdoms...)},
		Prevalence: Prevalence{
			Threshold:        abundance.DefaultThreshold,
			MinFraction:      0.05,
			DropEmptySamples: true,
		},
		CoOccurrence: CoOccurrence{Cutoff: cooccur.DefaultCutoff},
		Taxonomy:     Taxonomy{CacheSize: taxonomy.DefaultCacheSize},
	}
}

// Decode reads a TOML configuration from r on top of Default, and
// validates the result.
func Decode(r io.Reader) (Config, error) {
	config := Default()
	metadata, err := toml.NewDecoder(r).Decode(&config)
	if err != nil {
		return Config{}, errors.Mark(errors.Wrap(err, "decoding configuration"), ErrInvalid)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Wrapf(ErrInvalid, "unknown setting %v", undecoded[0].String())
	}
	return config, config.Validate()
}

// Load reads the TOML configuration file at path on top of Default,
// and validates the result.
func Load(path string) (Config, error) {
	config := Default()
	metadata, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, errors.Mark(errors.Wrapf(err, "decoding configuration file %v", path), ErrInvalid)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Wrapf(ErrInvalid, "unknown setting %v in %v", undecoded[0].String(), path)
	}
	return config, config.Validate()
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	switch {
	case c.Segregation.IDColumn == "" || c.Segregation.NameColumn == "":
		return errors.Wrap(ErrInvalid, "segregation.id_column and segregation.name_column must be set")
	case c.Segregation.IDColumn == c.Segregation.NameColumn:
		return errors.Wrap(ErrInvalid, "segregation.id_column and segregation.name_column are identical")
	case c.Segregation.CountSuffix == "":
		return errors.Wrap(ErrInvalid, "segregation.count_suffix is empty")
	case c.Segregation.CountSuffix == c.Segregation.FractionSuffix:
		return errors.Wrap(ErrInvalid, "segregation suffixes are identical")
	case len(c.Kingdom.Retain) == 0:
		return errors.Wrap(ErrInvalid, "kingdom.retain is empty")
	case math.IsNaN(c.Prevalence.Threshold) || c.Prevalence.Threshold < 0:
		return errors.Wrapf(ErrInvalid, "prevalence.threshold %v", c.Prevalence.Threshold)
	case math.IsNaN(c.Prevalence.MinFraction) || c.Prevalence.MinFraction < 0 || c.Prevalence.MinFraction > 1:
		return errors.Wrapf(ErrInvalid, "prevalence.min_fraction %v", c.Prevalence.MinFraction)
	case math.IsNaN(c.CoOccurrence.Cutoff) || c.CoOccurrence.Cutoff < 0:
		return errors.Wrapf(ErrInvalid, "cooccurrence.cutoff %v", c.CoOccurrence.Cutoff)
	case c.Taxonomy.CacheSize < 0:
		return errors.Wrapf(ErrInvalid, "taxonomy.cache_size %v", c.Taxonomy.CacheSize)
	case c.Taxonomy.Workers < 0:
		return errors.Wrapf(ErrInvalid, "taxonomy.workers %v", c.Taxonomy.Workers)
	}
	return nil
}

// Options returns the pipeline options for these settings.
func (c Config) Options() filters.Options {
	return filters.Options{
		Segregation: abundance.SegregationOptions{
			Identifiers:    append([]string(nil), c.Segregation.Identifiers...),
			IDColumn:       c.Segregation.IDColumn,
			NameColumn:     c.Segregation.NameColumn,
			RankColumn:     c.Segregation.RankColumn,
			CountSuffix:    c.Segregation.CountSuffix,
			FractionSuffix: c.Segregation.FractionSuffix,
		},
		Kingdoms:         append([]string(nil), c.Kingdom.Retain...),
		Threshold:        c.Prevalence.Threshold,
		MinFraction:      c.Prevalence.MinFraction,
		DropEmptySamples: c.Prevalence.DropEmptySamples,
		Pinned:           c.CoOccurrence.Pinned,
		Cutoff:           c.CoOccurrence.Cutoff,
	}
}

// Service opens the configured taxonomy database, wrapped in a cache
// unless CacheSize is 0. The returned close function releases the
// database.
func (c Config) Service() (taxonomy.Service, func() error, error) {
	if c.Taxonomy.Database == "" {
		return nil, nil, errors.Wrap(ErrInvalid, "taxonomy.database is not set")
	}
	db, err := taxonomy.OpenSQLite(c.Taxonomy.Database)
	if err != nil {
		return nil, nil, err
	}
	if c.Taxonomy.CacheSize == 0 {
		return db, db.Close, nil
	}
	cache, err := taxonomy.NewCachingService(db, c.Taxonomy.CacheSize)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return cache, db.Close, nil
}

// Resolver returns a resolver for service with the configured number
// of workers.
func (c Config) Resolver(service taxonomy.Service) *taxonomy.Resolver {
	resolver := taxonomy.NewResolver(service)
	resolver.Workers = c.Taxonomy.Workers
	return resolver
}
