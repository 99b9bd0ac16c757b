// Package schemas embeds the JSON Schema files used to validate static lookup data.
package schemas

import _ "embed"

// JurisdictionMap is the schema for the province -> city jurisdiction map.
//
//go:embed jurisdiction_map.schema.json
var JurisdictionMap string
