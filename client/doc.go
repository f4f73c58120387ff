// Package client implements the template operations of the Carbone
// render API on top of [net/http].
//
// # Building a Client
//
// Use [Build] with an API key and functional options:
//
//	c, err := client.Build(apiKey,
//		client.WithTimeout(10 * time.Second),
//		client.WithHeaders(map[string]string{"X-Team": "billing"}),
//	)
//
// Every request carries "Authorization: Bearer <apiKey>" and the
// Carbone-Version header. The resulting [Config] is fixed once Build
// returns, so a Client may be shared between goroutines.
//
// # Templates
//
//	id, err := c.AddTemplate(ctx, "/srv/templates/invoice.odt", client.WithPayload("v2"))
//	content, err := c.FetchTemplate(ctx, id)
//	err = c.DeleteTemplate(ctx, id)
//
// Template content can be consumed incrementally with [Client.OpenTemplate],
// which returns before the request is sent:
//
//	s := c.OpenTemplate(ctx, id)
//	defer s.Close()
//	_, err := io.Copy(dst, s)
//
// or written straight to a file with [Client.SaveTemplate]:
//
//	err = c.SaveTemplate(ctx, id, "/tmp/invoice.odt",
//		client.WithChecksum(sha256.New(), expectedHex),
//	)
//
// # Errors and Retries
//
// Arguments are checked before any network call and rejected with a
// [*ValidationError]. A request that fails because the connection was
// reset is sent one more time; any other failure is returned as is:
// [*TransportError] for network failures, [*RemoteError] for non-2xx
// statuses and [*ParseError] for malformed answers. Each matches its
// sentinel with [errors.Is].
package client
