// Package state persists the results of the setup sequence for the request sequence.
//
// State is a struct of optional fields. On disk it is a flat YAML mapping of strings, produced
// and consumed through mapstructure, so unset fields are absent from the file and a missing
// file restores as an empty State. ExportOutputs mirrors the mapping into the GitHub Actions
// output file together with a JSON list of its keys.
package state
