package http

import (
	"os"

	"github.com/gofiber/fiber/v2"
)

// openapiCandidates lists where the OpenAPI document may live relative to
// the working directory: repo root in containers, a parent dir when run
// from cmd/api during development.
var openapiCandidates = []string{
	"api/openapi.yaml",
	"../api/openapi.yaml",
	"../../api/openapi.yaml",
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GravelPass API docs</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
<style>body{margin:0;background:#fafafa}</style>
</head>
<body>
<div id="ui"></div>
<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
<script>
SwaggerUIBundle({
  url: "/docs/openapi.yaml",
  dom_id: "#ui",
  deepLinking: true,
  presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
  layout: "BaseLayout"
});
</script>
</body>
</html>`

// SetupDocs serves Swagger UI at /docs and the OpenAPI document it renders.
func SetupDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(docsPage)
	})

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		for _, path := range openapiCandidates {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			c.Set(fiber.HeaderContentType, "application/yaml")
			return c.Send(data)
		}
		return errNotFound(c, "openapi document not found")
	})
}
