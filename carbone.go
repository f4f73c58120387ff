// Package carbone exposes the client builder for the Carbone render API.
package carbone

import (
	"github.com/adamwoolhether/carbone/client"
)

// NewClient instantiates a new *Client authenticating with apiKey.
// If not specified, the public endpoint, API version 4 and a single
// retry on connection reset are used.
func NewClient(apiKey string, opts ...client.Option) (*client.Client, error) {
	return client.Build(apiKey, opts...)
}
