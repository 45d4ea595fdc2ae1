// Package api embeds the Control API's OpenAPI document so the daemon can
// serve it directly, with no file alongside the binary at runtime.
package api

import _ "embed"

//go:embed openapi.yaml
var OpenAPISpec []byte
