// Package browse provides the eBay Browse API client used to analyze active
// Buy It Now competition.
//
// Endpoints:
//   - Production: https://api.ebay.com/buy/browse/v1
//   - Sandbox: https://api.sandbox.ebay.com/buy/browse/v1
//
// Authentication is OAuth2 client credentials; tokens are cached and renewed
// 60 seconds before expiry.
package browse
