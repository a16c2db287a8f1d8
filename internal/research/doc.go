// Package research finds recent sold listings for a product by searching the
// web and extracting prices from the results.
//
// The client issues a Tavily-style search scoped to ebay.com, then extracts
// sold comps from the result snippets. When an OpenAI key is configured the
// extraction goes through a chat-completion call that returns structured
// JSON; otherwise a regex pass pulls prices directly from snippets that
// mention a sale.
//
// Extracted listings older than the configured lookback window are dropped.
package research
