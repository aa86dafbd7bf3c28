// Package files catalogs the report artifacts written into the reports
// directory. Artifact names are fixed per mode and format, so the catalog
// only ever exposes those names and never an arbitrary path.
package files
