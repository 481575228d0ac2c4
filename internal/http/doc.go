// Package http exposes the blog as a JSON API on a net/http ServeMux.
//
// Routes mount under /api by default:
//   - Posts: /posts (q, category, page), /posts/{slug}
//   - Categories: /categories, /categories/{category}
//   - Home page sections: /home
//   - Forms: POST /contact, POST /subscribe
//   - API description: /openapi.json
//
// Host applications can register handlers on their own mux/router as needed.
package http
