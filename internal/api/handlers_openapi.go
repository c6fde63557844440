package api

import (
	_ "embed"
	"net/http"
)

// The contract ships inside the binary, so /openapi.yaml needs no files on
// disk at runtime.
//
//go:embed openapi/openapi.yaml
var openAPISpec []byte

// Documentation only changes on deploy; an hour of client caching is safe.
func writeDoc(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ServeOpenAPISpec hands out the embedded OpenAPI 3.0.3 document. Generators
// and the Swagger UI page both read from this endpoint.
func (h *Handlers) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	writeDoc(w, "application/yaml", openAPISpec)
}

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Customer Service API</title>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
  window.onload = () => {
    SwaggerUIBundle({
      url: "/openapi.yaml",
      dom_id: "#swagger-ui",
      deepLinking: true,
      displayRequestDuration: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
    });
  };
</script>
</body>
</html>`

// ServeSwaggerUI serves a small HTML shell that loads Swagger UI from the
// unpkg CDN and points it at /openapi.yaml.
func (h *Handlers) ServeSwaggerUI(w http.ResponseWriter, r *http.Request) {
	writeDoc(w, "text/html; charset=utf-8", []byte(swaggerUIHTML))
}
