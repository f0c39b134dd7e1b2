// Package config provides configuration management for the statistics
// pipeline.
//
// # Configuration Sources
//
// Application configuration is loaded from the following sources in order of
// precedence:
//
//	1. Environment variables (highest priority)
//	2. config.yaml / configs/config.yaml
//	3. Default values (lowest priority)
//
// Environment variables follow the pattern LABSTATS_*:
//
//	LABSTATS_LOGGING_LEVEL=debug
//	LABSTATS_PATHS_DOWNLOADS_DIR=data/downloads
//	LABSTATS_DOWNLOAD_URL=https://...
//
// # Exam Lookup Tables
//
// The exam lookup tables (quantity multipliers, category maps, category
// order) are deliberately kept out of the YAML config: they live in a
// standalone JSON file (config_examenes.json by default) that laboratory
// staff edit by hand. Loading is lenient: a missing or corrupt file falls
// back to the embedded defaults with a warning, but a file that decodes to
// invalid values is an error.
package config
