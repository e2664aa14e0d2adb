package assets

import _ "embed"

// ProvidersData holds the raw JSON catalog of AI providers and the
// built-in model list for the in-process runtime.
//
//go:embed providers.json
var ProvidersData []byte
