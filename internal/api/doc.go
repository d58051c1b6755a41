// Package api provides the authenticated HTTP client shared by all clipo
// service clients. Requests pass through two stages: one attaches the bearer
// token and client identifier from the session store, the other reacts to a
// 401 by refreshing tokens once and replaying the request. When refresh is
// impossible or fails the session is cleared and ErrSessionExpired surfaces.
package api
