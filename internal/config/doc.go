// Package config provides configuration loading for the sprint dashboard.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. sprintdash.yaml or configs/sprintdash.yaml (or SPRINTDASH_CONFIG)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SPRINTDASH_<SECTION>_<KEY>:
//
//	SPRINTDASH_SERVER_PORT=8050
//	SPRINTDASH_SERVER_DEBUG=true
//	SPRINTDASH_DATA_FILE_NAME=sprint_points.xlsx
//	SPRINTDASH_DATA_LOCAL_PATH=/srv/data/points.xlsx
//	SPRINTDASH_LOGGING_LEVEL=debug
//
// The data file itself may also be pointed at by the variable named in
// Data.EnvVar (DATA_FILE_PATH by default), which is read verbatim with no prefix.
package config
