// Package application wires the CLI commands to the configuration loader.
// It reads the defaults and schema files, assembles the merged configuration,
// and executes the render/env/get commands against an output writer, keeping
// the main package focused on flag parsing.
package application
