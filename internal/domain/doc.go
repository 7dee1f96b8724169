// Package domain holds the core types of the dashboard: the authenticated
// identity, guild memberships, and the per-request guild authorization rules.
package domain
