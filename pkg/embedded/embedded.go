package embedded

import (
	_ "embed"
)

// CatalogYAML is the default prompt fragment catalog
//
//go:embed data/catalog.yaml
var CatalogYAML []byte
