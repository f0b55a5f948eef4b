package directory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/textproto"

	"github.com/alfredfullstack2024/tiendasappfrontend/internal/domain"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/slug"
)

// Register posts a new business as multipart/form-data with its photos under
// the "fotos" field. The returned business is nil when the server accepted
// the form without echoing a usable record.
func (c *Client) Register(ctx context.Context, reg domain.Registration, photos []domain.Upload) (*domain.Business, error) {
	body, contentType, err := encodeRegistration(reg, photos)
	if err != nil {
		return nil, fmt.Errorf("encode registration: %w", err)
	}

	rep, err := c.send(ctx, "register", c.targets([]string{"tiendas"}), contentType, body, c.contract.uploadTimeout())
	if err != nil {
		return nil, &SubmissionError{Op: "register", Message: MsgRegistrationFailed, Err: err}
	}
	if rep.status < 200 || rep.status > 299 {
		return nil, submissionError("register", rep, MsgRegistrationFailed)
	}

	b, outcome := decodeBusiness(rep.body, c.contract.IDFields)
	c.log(ctx).InfoContext(ctx, "business registered",
		slog.String("business_id", b.ID),
		slog.String("category", reg.Category),
		slog.Int("photos", len(photos)),
	)
	if outcome != OutcomeOK {
		return nil, nil
	}
	return &b, nil
}

func encodeRegistration(reg domain.Registration, photos []domain.Upload) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range reg.Fields() {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for i, p := range photos {
		h := make(textproto.MIMEHeader)
		name := slug.Filename(p.Filename, fmt.Sprintf("foto-%d", i+1))
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="fotos"; filename="%s"`, name))
		ct := p.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, p.Content); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", p.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
