// Package substack provides read-only tools over public Substack
// publications: recent post listings, full post content, multi-publication
// batch listings, recommendations and the platform's topic categories.
//
// Publications are addressed by handle, the subdomain part of
// <handle>.substack.com. [NormalizeHandle] accepts loose user input such as
// full URLs and reduces it to that handle. Every tool returns a single
// string, either Markdown-flavoured text or indented JSON; failures are
// classified by [Classify] and rendered as a line starting with "Error:".
//
// The tools depend on a [Fetcher] for remote access. The HTTP client in
// providers/substack satisfies it; tests use an in-memory fake.
//
// Example:
//
//	client := api.NewClient()
//	catalog := tool.NewCatalogWithTools(substack.NewTools(client)...)
//	out, _ := catalog.Get("substack_get_posts").Call(ctx, `{"publication_subdomain":"lenny","limit":5}`)
package substack
