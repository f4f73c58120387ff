package client_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adamwoolhether/carbone/carbonetest"
	"github.com/adamwoolhether/carbone/client"
)

func ExampleBuild() {
	c, err := client.Build("my-api-key",
		client.WithTimeout(10*time.Second),
		client.WithUserAgent("example/1.0"),
		client.WithRetry(2, 100*time.Millisecond),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	cfg := c.Config()
	fmt.Println(cfg.BaseURL, cfg.APIVersion, cfg.MaxAttempts)
	// Output: https://render.carbone.io/ 4 2
}

func ExampleBuild_validation() {
	_, err := client.Build("")

	var verr *client.ValidationError
	if errors.As(err, &verr) {
		fmt.Println(verr.Fields.Fields()["apiKey"])
	}
	// Output: This field is required
}

func ExampleClient_AddTemplate() {
	srv := carbonetest.NewServer("my-api-key")
	defer srv.Close()

	dir, err := os.MkdirTemp("", "carbone-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	tpl := filepath.Join(dir, "invoice.odt")
	if err := os.WriteFile(tpl, []byte("PK invoice"), 0o644); err != nil {
		fmt.Println("error:", err)
		return
	}

	c, err := client.Build("my-api-key", client.WithBaseURL(srv.BaseURL()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	id, err := c.AddTemplate(context.Background(), tpl, client.WithPayload("customer-42"))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(id == carbonetest.TemplateID([]byte("PK invoice"), "customer-42"))
	// Output: true
}

func ExampleClient_OpenTemplate() {
	srv := carbonetest.NewServer("my-api-key")
	defer srv.Close()

	id := srv.Put([]byte("PK streamed"), "")

	c, err := client.Build("my-api-key", client.WithBaseURL(srv.BaseURL()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	s := c.OpenTemplate(context.Background(), id)
	defer s.Close()

	header, err := s.Header()
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	content, err := io.ReadAll(s)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println(header.Get("Content-Type"))
	fmt.Println(string(content))
	// Output:
	// application/octet-stream
	// PK streamed
}

func ExampleClient_SaveTemplate() {
	srv := carbonetest.NewServer("my-api-key")
	defer srv.Close()

	content := []byte("PK saved")
	id := srv.Put(content, "")

	sum := sha256.Sum256(content)

	dir, err := os.MkdirTemp("", "carbone-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	c, err := client.Build("my-api-key", client.WithBaseURL(srv.BaseURL()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	dest := filepath.Join(dir, "invoice.odt")
	err = c.SaveTemplate(context.Background(), id, dest,
		client.WithChecksum(sha256.New(), hex.EncodeToString(sum[:])),
	)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	saved, _ := os.ReadFile(dest)
	fmt.Println(string(saved))
	// Output: PK saved
}

func ExampleRemoteError() {
	srv := carbonetest.NewServer("my-api-key")
	defer srv.Close()

	c, err := client.Build("my-api-key", client.WithBaseURL(srv.BaseURL()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	err = c.DeleteTemplate(context.Background(), "unknown")

	var remote *client.RemoteError
	if errors.As(err, &remote) {
		fmt.Println(remote.StatusCode, remote.Message)
	}
	// Output: 404 Template not found
}
