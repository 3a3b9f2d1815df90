// Package service is the top-level entry point for loading a
// configuration file into a running object graph.
//
// Load parses the text, assembles the entry pipeline (pipeline:main by
// default) against a factory registry, and exposes every remaining
// section as named subsystem settings. Loading is all or nothing: any
// parse, resolution, or assembly failure aborts the whole load with no
// partial runtime.
//
// The Manager runs SubsystemRunner implementations against the loaded
// subsystem settings under a shared errgroup, so background processes
// configured alongside the pipeline share a lifecycle with it.
package service
