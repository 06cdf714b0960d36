// Package config loads the cstruct command's YAML configuration.
//
//	defaults:
//	  byte_order: little
//	  width: standard
//	store:
//	  dir: ./cstruct-data
//	logging:
//	  level: info
//	output:
//	  color: never
package config
