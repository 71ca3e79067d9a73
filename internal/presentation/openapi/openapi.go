package openapi

import _ "embed"

// Spec 埋め込みOpenAPI仕様ドキュメント
//
//go:embed openapi.yaml
var Spec []byte
