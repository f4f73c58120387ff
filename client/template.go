package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"

	"github.com/adamwoolhether/carbone/client/download"
)

const (
	templatePath    = "template"
	templateIDField = "templateId"
)

// AddTemplate uploads the file at localPath and returns the identifier the
// service assigned to it. localPath must be absolute; anything else fails
// with a *ValidationError before the network is touched.
func (c *Client) AddTemplate(ctx context.Context, localPath string, optFns ...TemplateOption) (templateID string, err error) {
	opts, err := applyTemplateOpts(optFns)
	if err != nil {
		return "", err
	}

	if err := check(uploadInput{LocalPath: localPath}); err != nil {
		return "", err
	}

	ctx, op := c.begin(ctx, "AddTemplate", attribute.String("carbone.template.path", localPath))
	defer func() { c.end(op, err) }()

	target := c.endpoint(templatePath)
	build := func(ctx context.Context) (*http.Request, error) {
		body, contentType, err := c.uploadBody(localPath, opts.payload)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
		if err != nil {
			_ = body.Close()
			return nil, fmt.Errorf("instantiating request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)

		return req, nil
	}

	err = c.exec(ctx, op, build, func(resp *http.Response) error {
		body, err := c.readBody(op, resp)
		if err != nil {
			return err
		}

		templateID, err = extractField(resp.StatusCode, body, templateIDField)
		return err
	})
	if err != nil {
		return "", err
	}

	return templateID, nil
}

// DeleteTemplate removes the template from the service.
func (c *Client) DeleteTemplate(ctx context.Context, templateID string) (err error) {
	if err := check(templateRef{TemplateID: templateID}); err != nil {
		return err
	}

	ctx, op := c.begin(ctx, "DeleteTemplate", attribute.String("carbone.template.id", templateID))
	defer func() { c.end(op, err) }()

	build := c.templateRequest(http.MethodDelete, templateID)

	return c.exec(ctx, op, build, func(resp *http.Response) error {
		body, err := c.readBody(op, resp)
		if err != nil {
			return err
		}

		return checkEnvelope(resp.StatusCode, body)
	})
}

// FetchTemplate returns the content of a previously uploaded template.
// The body is returned byte for byte; use [Client.OpenTemplate] to
// consume it incrementally instead.
func (c *Client) FetchTemplate(ctx context.Context, templateID string) (content []byte, err error) {
	if err := check(templateRef{TemplateID: templateID}); err != nil {
		return nil, err
	}

	ctx, op := c.begin(ctx, "FetchTemplate", attribute.String("carbone.template.id", templateID))
	defer func() { c.end(op, err) }()

	build := c.templateRequest(http.MethodGet, templateID)

	err = c.exec(ctx, op, build, func(resp *http.Response) error {
		content, err = c.readBody(op, resp)
		return err
	})
	if err != nil {
		return nil, err
	}

	return content, nil
}

// SaveTemplate streams the content of a template to destPath. Data is
// written to a temp file in the same directory, which is renamed to
// destPath on success or removed on failure.
func (c *Client) SaveTemplate(ctx context.Context, templateID, destPath string, opts ...DownloadOption) (err error) {
	if err := check(saveInput{TemplateID: templateID, DestPath: destPath}); err != nil {
		return err
	}

	ctx, op := c.begin(ctx, "SaveTemplate",
		attribute.String("carbone.template.id", templateID),
		attribute.String("carbone.template.dest", destPath),
	)
	defer func() { c.end(op, err) }()

	build := c.templateRequest(http.MethodGet, templateID)

	return c.exec(ctx, op, build, func(resp *http.Response) error {
		body := &bodyErrReader{r: resp.Body}
		if err := download.Handle(ctx, c.fs, body, resp.ContentLength, destPath, c.logger, opts...); err != nil {
			if body.err != nil && ctx.Err() == nil {
				return &TransportError{Op: op.name, Attempts: op.attempts, Err: fmt.Errorf("reading body: %w", body.err)}
			}
			return fmt.Errorf("download: %w", err)
		}
		return nil
	})
}

func (c *Client) templateRequest(method, templateID string) requestFn {
	target := c.endpoint(templatePath, templateID)

	return func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, emptyBody{})
		if err != nil {
			return nil, fmt.Errorf("instantiating request: %w", err)
		}
		return req, nil
	}
}

// uploadBody streams a multipart form holding the payload field followed
// by the template file. The file is opened up front so a missing file
// fails the attempt before any request is sent.
func (c *Client) uploadBody(localPath, payload string) (io.ReadCloser, string, error) {
	f, err := c.fs.Open(localPath)
	if err != nil {
		return nil, "", fmt.Errorf("opening template: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer func() {
			if err := f.Close(); err != nil {
				c.logger.Error("failed to close template file", "path", localPath, "error", err)
			}
		}()

		pw.CloseWithError(writeForm(mw, f, filepath.Base(localPath), payload))
	}()

	return pr, mw.FormDataContentType(), nil
}

func writeForm(mw *multipart.Writer, file io.Reader, filename, payload string) error {
	if err := mw.WriteField("payload", payload); err != nil {
		return fmt.Errorf("writing payload field: %w", err)
	}

	part, err := mw.CreateFormFile("template", filename)
	if err != nil {
		return fmt.Errorf("creating template part: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copying template: %w", err)
	}

	return mw.Close()
}
