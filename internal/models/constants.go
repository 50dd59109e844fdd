// Package models contains data types and constants for the EAC assistant backend API.
package models

// Backend endpoint paths, relative to the configured API URL
const (
	EndpointRefresh = "/refresh"
	EndpointChat    = "/chat"
)

// DefaultAPIURL is used when neither the config file nor the environment sets one
const DefaultAPIURL = "http://localhost:8000"

// DefaultUserAgent identifies the client to the backend
const DefaultUserAgent = "eacassist/0.1"

// DefaultHeaders returns the default headers for JSON backend requests
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}
