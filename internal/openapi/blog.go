package openapi

import "strings"

// Version of the blog API document.
const Version = "1.0.0"

// BlogAPI documents the public JSON API mounted under basePath. frontMatter,
// when set, is published as the FrontMatter component.
func BlogAPI(basePath string, frontMatter map[string]any) *Document {
	base := "/" + strings.Trim(basePath, "/")
	if base == "/" {
		base = ""
	}

	doc := NewDocument("Blog API", Version)
	doc.AddSchema("Post", postSchema())
	doc.AddSchema("PostList", object(map[string]any{
		"posts":         arrayOf("Post"),
		"totalMatching": integer(),
		"totalPages":    integer(),
		"page":          integer(),
		"pageSize":      integer(),
		"q":             str(),
		"category":      str(),
	}))
	doc.AddSchema("Category", object(map[string]any{
		"name":  str(),
		"count": integer(),
		"url":   str(),
	}))
	doc.AddSchema("CategoryList", map[string]any{"type": "array", "items": ref("Category")})
	doc.AddSchema("CategoryPosts", object(map[string]any{
		"category": str(),
		"posts":    arrayOf("Post"),
	}))
	doc.AddSchema("Home", object(map[string]any{
		"latest":        arrayOf("Post"),
		"topCategories": arrayOf("Category"),
		"featured":      arrayOf("Post"),
	}))
	doc.AddSchema("SubscribeRequest", object(map[string]any{
		"email":     str(),
		"firstName": str(),
	}, "email"))
	doc.AddSchema("SubscribeResult", object(map[string]any{
		"message":           str(),
		"alreadySubscribed": map[string]any{"type": "boolean"},
		"subscriber":        map[string]any{"type": "object"},
	}))
	doc.AddSchema("ContactRequest", object(map[string]any{
		"firstName": str(),
		"lastName":  str(),
		"email":     str(),
		"subject":   str(),
		"message":   str(),
	}, "email", "message"))
	doc.AddSchema("ContactResult", object(map[string]any{
		"success": map[string]any{"type": "boolean"},
		"message": str(),
	}))
	doc.AddSchema("Error", object(map[string]any{
		"error":   str(),
		"message": str(),
	}))
	if frontMatter != nil {
		doc.AddSchema("FrontMatter", frontMatter)
	}

	listParams := []Parameter{
		{Name: "q", In: "query", Type: "string"},
		{Name: "category", In: "query", Type: "string"},
		{Name: "page", In: "query", Type: "integer"},
		{Name: "plain", In: "query", Type: "boolean"},
	}
	doc.AddOperation("GET", base+"/posts", Operation{
		Summary:    "List posts newest first, filtered and paginated",
		Parameters: listParams,
		Responses:  map[string]string{"200": "PostList"},
	})
	doc.AddOperation("GET", base+"/posts/{slug}", Operation{
		Summary:    "Get one post",
		Parameters: []Parameter{{Name: "slug", In: "path", Type: "string"}},
		Responses:  map[string]string{"200": "Post", "404": "Error"},
	})
	doc.AddOperation("GET", base+"/categories", Operation{
		Summary:   "List categories by post count",
		Responses: map[string]string{"200": "CategoryList"},
	})
	doc.AddOperation("GET", base+"/categories/{category}", Operation{
		Summary:    "List the posts of a category",
		Parameters: []Parameter{{Name: "category", In: "path", Type: "string"}},
		Responses:  map[string]string{"200": "CategoryPosts", "404": "Error"},
	})
	doc.AddOperation("GET", base+"/home", Operation{
		Summary:   "Latest posts, top categories and featured posts",
		Responses: map[string]string{"200": "Home"},
	})
	doc.AddOperation("POST", base+"/subscribe", Operation{
		Summary:     "Subscribe to the newsletter",
		RequestBody: "SubscribeRequest",
		Responses:   map[string]string{"200": "SubscribeResult", "400": "Error", "500": "Error", "503": "Error"},
	})
	doc.AddOperation("POST", base+"/contact", Operation{
		Summary:     "Send a contact message",
		RequestBody: "ContactRequest",
		Responses:   map[string]string{"200": "ContactResult", "400": "Error", "500": "Error", "503": "Error"},
	})
	return doc
}

func postSchema() map[string]any {
	return object(map[string]any{
		"slug":        str(),
		"title":       str(),
		"date":        str(),
		"description": str(),
		"content":     map[string]any{"type": "string", "description": "rendered HTML"},
		"categories":  map[string]any{"type": "array", "items": str()},
		"image":       str(),
		"author":      str(),
		"readingTime": integer(),
		"url":         str(),
	}, "slug", "title", "date", "description", "content", "categories")
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{"type": "object", "properties": properties}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func arrayOf(name string) map[string]any {
	return map[string]any{"type": "array", "items": ref(name)}
}

func ref(name string) map[string]any {
	return map[string]any{"$ref": "#/components/schemas/" + name}
}

func str() map[string]any {
	return map[string]any{"type": "string"}
}

func integer() map[string]any {
	return map[string]any{"type": "integer"}
}
