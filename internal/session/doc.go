// Package session tracks which world the local player is in.
package session
