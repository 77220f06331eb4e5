// Package oauth2 manages the single HubSpot OAuth2 session held by the proxy.
//
// # Overview
//
// The package has two layers. TokenStore keeps the current access token,
// refresh token and expiry in a Repository and answers whether the access
// token is still usable. Gateway talks to the HubSpot token endpoint through
// golang.org/x/oauth2: it builds the consent URL, exchanges authorization
// codes, refreshes access tokens and hands a valid access token to callers.
//
// # Expiry
//
// A token is treated as expired 300 seconds before the instant HubSpot
// reports. ExpiresAt is computed once, when tokens are stored, from the
// clock configured with WithClock.
//
// # Storage backends
//
//   - MemoryRepository: process-local, lost on restart
//   - RedisRepository: shared between instances, key hubspot:oauth2:token
//   - SettingsRepository: any key/value settings table (SQLite or PostgreSQL)
//
// Persistent backends accept an Encryptor so the stored blob is AES-GCM
// ciphertext rather than plain JSON.
//
// # Concurrent refresh
//
// Concurrent callers of Gateway.ValidAccessToken that find the access token
// expired share one refresh request. With a Locker configured the refresh is
// also serialized across instances, and the store is re-read after the lock
// is taken so an instance that lost the race reuses the winner's token.
//
// # Usage
//
//	store := oauth2.NewTokenStore(oauth2.NewMemoryRepository())
//	gateway := oauth2.NewGateway(oauth2.Config{
//	    ClientID:     os.Getenv("HUBSPOT_CLIENT_ID"),
//	    ClientSecret: os.Getenv("HUBSPOT_CLIENT_SECRET"),
//	    RedirectURL:  os.Getenv("HUBSPOT_REDIRECT_URI"),
//	}, store)
//
//	http.Redirect(w, r, gateway.AuthorizationURL(), http.StatusFound)
//
//	token, err := gateway.ValidAccessToken(ctx)
package oauth2
