// Package api embeds the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// SwaggerJSON is the OpenAPI 2.0 document for the users API.
//
//go:embed users.swagger.json
var SwaggerJSON []byte
