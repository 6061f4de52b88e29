package templates

import _ "embed"

// Stylesheet is served at /static/app.css and inlined into static exports.
//
//go:embed app.css
var Stylesheet string
